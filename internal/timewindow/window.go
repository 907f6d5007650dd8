package timewindow

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
)

// rangeSeparator splits "A to B". Whitespace is collapsed before splitting.
var rangeSeparator = regexp.MustCompile(`(?i) to `)

// Window is an inclusive [Start, End] time range. Start <= End always holds for windows
// returned by Parse.
type Window struct {
	Start time.Time
	End   time.Time
}

// String renders the window for console output.
func (w Window) String() string {
	return w.Start.Format(time.DateTime) + " → " + w.End.Format(time.DateTime)
}

// point is one resolved side of an expression.
type point struct {
	start     time.Time
	end       time.Time
	precision Precision
	yearKnown bool
}

// Parse turns a user expression into a Window. now supplies the year for expressions that
// omit it.
//
// A single point is widened to the unit its precision implies ("Oct 6" is the whole day,
// "2025-01-01T00" the whole hour). A range "A to B" spans from the start of A to the end
// of B, each side resolved independently. When neither side names a year and B falls
// before A (e.g. "Dec 30 to Jan 2"), A is moved back one year.
func Parse(expression string, now time.Time) (Window, error) {
	normalized := strings.Join(strings.Fields(expression), " ")
	if normalized == "" {
		return Window{}, invalid(expression, "empty expression", nil)
	}

	sides := rangeSeparator.Split(normalized, -1)
	year := now.Year()

	switch len(sides) {
	case 1:
		p, err := resolve(sides[0], year)
		if err != nil {
			return Window{}, invalid(expression, "", err)
		}
		return Window{Start: p.start, End: p.end}, nil

	case 2:
		lower, err := resolve(sides[0], year)
		if err != nil {
			return Window{}, invalid(expression, "lower bound", err)
		}
		upper, err := resolve(sides[1], year)
		if err != nil {
			return Window{}, invalid(expression, "upper bound", err)
		}

		wraps := upper.start.Month() < lower.start.Month()
		if upper.end.Before(lower.start) && wraps && !lower.yearKnown && !upper.yearKnown {
			lower, err = resolve(sides[0], year-1)
			if err != nil {
				return Window{}, invalid(expression, "lower bound", err)
			}
		}
		if upper.end.Before(lower.start) {
			return Window{}, invalid(expression, "range end precedes start", nil)
		}

		return Window{Start: lower.start, End: upper.end}, nil

	default:
		return Window{}, invalid(expression, `more than one "to" separator`, nil)
	}
}

// resolve matches s against the expression grammars.
func resolve(s string, year int) (point, error) {
	for _, g := range expressionGrammars {
		f, ok, err := g.match(s, year)
		if !ok {
			continue
		}
		if err != nil {
			return point{}, fmt.Errorf("%q: %w", s, err)
		}
		return point{
			start:     f.time,
			end:       f.precision.last(f.time),
			precision: f.precision,
			yearKnown: f.yearKnown,
		}, nil
	}
	return point{}, fmt.Errorf("%q matches no supported timestamp shape", s)
}

func invalid(expression, reason string, err error) error {
	return &apperrors.InvalidTimestampFormatError{Expression: expression, Reason: reason, Err: err}
}

// Contains reports whether the stamp falls inside the window. Comparison is at second
// granularity. A stamp without a year matches when any year covered by the window
// places it inside.
func (w Window) Contains(s Stamp) bool {
	t := s.Time.Truncate(time.Second)
	if s.YearKnown {
		return w.containsTime(t)
	}

	first, last := w.Start.Year(), w.End.Year()
	// Eight whole years lie strictly inside the window, one of them a leap year, so
	// every month, day and time of day occurs.
	if last-first > 8 {
		return true
	}

	for y := first; y <= last; y++ {
		candidate := time.Date(y, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
		if candidate.Day() != t.Day() {
			continue // Feb 29 outside a leap year
		}
		if w.containsTime(candidate) {
			return true
		}
	}
	return false
}

func (w Window) containsTime(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
