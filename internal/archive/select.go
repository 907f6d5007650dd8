package archive

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SelectAll is the wildcard value that selects every member.
const SelectAll = "all"

// Selector chooses members. Names are exact member names, kept in the order given.
// Wildcards are regular expressions matched case-insensitively at the start of the
// member name. Globs use doublestar syntax ("**/*.log"). Pattern matches keep archive
// order and follow any named members.
type Selector struct {
	Names     []string
	Wildcards []string
	Globs     []string
}

// Empty reports whether the selector names nothing.
func (s Selector) Empty() bool {
	return len(s.Names) == 0 && len(s.Wildcards) == 0 && len(s.Globs) == 0
}

// Select resolves sel against the archive members.
func (a *Archive) Select(sel Selector) ([]Member, error) {
	if sel.Empty() {
		return nil, a.fail("", fmt.Errorf("%w: no file, wildcard or glob given", ErrNoMatch))
	}

	matchers, err := compilePatterns(sel)
	if err != nil {
		return nil, a.fail("", err)
	}

	byName := make(map[string]int, len(a.members))
	for i, m := range a.members {
		byName[m.Name] = i
	}

	selected := make([]Member, 0, len(sel.Names))
	seen := make(map[string]bool)

	for _, name := range sel.Names {
		name = cleanEntry(name)
		if seen[name] {
			continue
		}
		i, ok := byName[name]
		if !ok {
			return nil, a.fail(name, ErrMemberNotFound)
		}
		selected = append(selected, a.members[i])
		seen[name] = true
	}

	if len(matchers) > 0 {
		matched := 0
		for _, m := range a.members {
			if !anyMatch(matchers, m.Name) {
				continue
			}
			matched++
			if !seen[m.Name] {
				selected = append(selected, m)
				seen[m.Name] = true
			}
		}
		if matched == 0 {
			return nil, a.fail("", fmt.Errorf("%w: %s", ErrNoMatch, describe(sel)))
		}
	}

	return selected, nil
}

func compilePatterns(sel Selector) ([]func(string) bool, error) {
	matchers := make([]func(string) bool, 0, len(sel.Wildcards)+len(sel.Globs))

	for _, w := range sel.Wildcards {
		if strings.EqualFold(strings.TrimSpace(w), SelectAll) {
			matchers = append(matchers, func(string) bool { return true })
			continue
		}
		re, err := regexp.Compile("(?i)^(?:" + w + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid wildcard %q: %w", w, err)
		}
		matchers = append(matchers, re.MatchString)
	}

	for _, g := range sel.Globs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid glob %q", g)
		}
		pattern := g
		matchers = append(matchers, func(name string) bool {
			ok, _ := doublestar.Match(pattern, name) //nolint:errcheck // pattern validated above
			return ok
		})
	}

	return matchers, nil
}

func anyMatch(matchers []func(string) bool, name string) bool {
	for _, match := range matchers {
		if match(name) {
			return true
		}
	}
	return false
}

func describe(sel Selector) string {
	var parts []string
	if len(sel.Wildcards) > 0 {
		parts = append(parts, "wildcards "+strings.Join(sel.Wildcards, ", "))
	}
	if len(sel.Globs) > 0 {
		parts = append(parts, "globs "+strings.Join(sel.Globs, ", "))
	}
	return strings.Join(parts, "; ")
}
