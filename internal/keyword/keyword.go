// Package keyword implements substring matching of log lines against an AND-set and an
// OR-set of keywords.
package keyword

import (
	"strings"

	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"golang.org/x/text/cases"
)

// Matcher evaluates lines against two keyword groups. A Matcher is immutable and safe
// for concurrent use.
type Matcher struct {
	all             []string
	anyOf           []string
	caseInsensitive bool
}

// NewMatcher builds a Matcher. Empty keywords are dropped. With caseInsensitive set,
// keywords are case folded once here and lines are folded per evaluation.
func NewMatcher(all, anyOf []string, caseInsensitive bool) *Matcher {
	return &Matcher{
		all:             normalize(all, caseInsensitive),
		anyOf:           normalize(anyOf, caseInsensitive),
		caseInsensitive: caseInsensitive,
	}
}

func normalize(keywords []string, fold bool) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if fold {
			k = foldCase(k)
		}
		out = append(out, k)
	}
	return out
}

// foldCase builds a fresh Caser per call; a Caser is stateful and not goroutine safe.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Active reports whether any keyword is configured.
func (m *Matcher) Active() bool {
	return len(m.all) > 0 || len(m.anyOf) > 0
}

// Matches reports whether line contains every keyword of the AND-set and at least one
// keyword of the OR-set. An empty group is vacuously satisfied.
func (m *Matcher) Matches(line string) bool {
	if !m.Active() {
		return true
	}

	if m.caseInsensitive {
		line = foldCase(line)
	}

	for _, k := range m.all {
		if !strings.Contains(line, k) {
			return false
		}
	}

	if len(m.anyOf) == 0 {
		return true
	}
	for _, k := range m.anyOf {
		if strings.Contains(line, k) {
			return true
		}
	}
	return false
}

// ParseExpression splits a keyword expression written with "and" or "or" operators,
// e.g. "fpc and pic" or "link down or link up". A single keyword or phrase yields an
// OR-set of one. Operators are whole words matched case-insensitively and may not be
// mixed within one expression.
func ParseExpression(expr string) (all, anyOf []string, err error) {
	words := strings.Fields(expr)
	if len(words) == 0 {
		return nil, nil, &apperrors.InvalidKeywordExpressionError{Expression: expr, Reason: "no keyword given"}
	}

	var (
		operator string
		terms    []string
		current  []string
	)

	flush := func() error {
		if len(current) == 0 {
			return &apperrors.InvalidKeywordExpressionError{Expression: expr, Reason: "operator without keyword"}
		}
		terms = append(terms, strings.Join(current, " "))
		current = nil
		return nil
	}

	for _, w := range words {
		lw := strings.ToLower(w)
		if lw != "and" && lw != "or" {
			current = append(current, w)
			continue
		}

		if operator != "" && operator != lw {
			return nil, nil, &apperrors.InvalidKeywordExpressionError{
				Expression: expr,
				Reason:     `"and" and "or" cannot be combined in one expression`,
			}
		}
		operator = lw
		if err := flush(); err != nil {
			return nil, nil, err
		}
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}

	if operator == "and" {
		return terms, nil, nil
	}
	return nil, terms, nil
}
