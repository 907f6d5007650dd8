package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultFallbackEncoding is used for archive members that are not valid UTF-8.
const DefaultFallbackEncoding = "windows-1252"

// LookupEncoding resolves a WHATWG encoding label such as "windows-1252", "latin1" or "utf-8".
// An empty name resolves to DefaultFallbackEncoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultFallbackEncoding
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown encoding %q: %v", Err, name, err)
	}
	return enc, nil
}
