// Package sanitize provides functions for sanitizing names for safe filesystem use.
package sanitize

import (
	"strings"
	"unicode"
)

// Name converts an arbitrary label (a user name, an archive member) into a single
// path component. Path separators, characters reserved on Windows, control characters
// and whitespace become "_". An empty result is returned as "unknown".
func Name(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsSpace(r), unicode.IsControl(r):
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))

	if mapped == "" || mapped == "." || mapped == ".." {
		return "unknown"
	}
	return mapped
}
