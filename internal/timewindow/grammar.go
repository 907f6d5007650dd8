// Package timewindow parses user supplied time expressions into inclusive windows and
// extracts leading timestamps from device log lines.
//
// Both directions share one representation: a Grammar is a named regular expression whose
// named capture groups (year, month, mon, day, hour, min, sec, frac, zone) describe the
// fields it carries. Grammars are tried in a fixed order and the first match wins.
package timewindow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Precision is the finest field present in a parsed timestamp.
type Precision int

// Precisions from coarsest to finest.
const (
	PrecisionDay Precision = iota
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
)

// String implements fmt.Stringer.
func (p Precision) String() string {
	switch p {
	case PrecisionDay:
		return "day"
	case PrecisionHour:
		return "hour"
	case PrecisionMinute:
		return "minute"
	default:
		return "second"
	}
}

// last returns the final second of the unit starting at t.
func (p Precision) last(t time.Time) time.Time {
	switch p {
	case PrecisionDay:
		return t.AddDate(0, 0, 1).Add(-time.Second)
	case PrecisionHour:
		return t.Add(time.Hour - time.Second)
	case PrecisionMinute:
		return t.Add(time.Minute - time.Second)
	default:
		return t
	}
}

// monthPattern accepts abbreviated and full English month names.
const monthPattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// Grammar is one supported timestamp shape.
type Grammar struct {
	Name    string
	Pattern *regexp.Regexp
}

// NewGrammar compiles pattern into a Grammar. The pattern must name a day group and
// either a month or a mon group; all other groups are optional.
func NewGrammar(name, pattern string) (Grammar, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Grammar{}, fmt.Errorf("invalid timestamp grammar %s: %w", name, err)
	}

	groups := make(map[string]bool)
	for _, g := range re.SubexpNames() {
		groups[g] = true
	}
	if !groups["day"] || (!groups["month"] && !groups["mon"]) {
		return Grammar{}, fmt.Errorf("invalid timestamp grammar %s: needs day and month (or mon) groups", name)
	}

	return Grammar{Name: name, Pattern: re}, nil
}

func mustGrammar(name, pattern string) Grammar {
	g, err := NewGrammar(name, pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// fields is the decoded content of one grammar match.
type fields struct {
	time      time.Time
	precision Precision
	yearKnown bool
}

// match applies the grammar to s. ok reports whether the pattern matched; err reports a
// match whose values do not form a real calendar time (e.g. Feb 30).
func (g Grammar) match(s string, defaultYear int) (f fields, ok bool, err error) {
	m := g.Pattern.FindStringSubmatch(s)
	if m == nil {
		return fields{}, false, nil
	}

	get := func(name string) string {
		if i := g.Pattern.SubexpIndex(name); i >= 0 {
			return m[i]
		}
		return ""
	}

	year := defaultYear
	if v := get("year"); v != "" {
		year, _ = strconv.Atoi(v) //nolint:errcheck // digits only
		f.yearKnown = true
	}

	var month time.Month
	if v := get("mon"); v != "" {
		month = months[strings.ToLower(v[:3])]
	} else {
		n, _ := strconv.Atoi(get("month")) //nolint:errcheck // digits only
		month = time.Month(n)
	}

	day, _ := strconv.Atoi(get("day")) //nolint:errcheck // digits only

	clock := [3]int{}
	f.precision = PrecisionDay
	for i, name := range []string{"hour", "min", "sec"} {
		v := get(name)
		if v == "" {
			break
		}
		clock[i], _ = strconv.Atoi(v) //nolint:errcheck // digits only
		f.precision = Precision(i + 1)
	}

	nanos := 0
	if v := get("frac"); v != "" {
		nanos, _ = strconv.Atoi((v + "000000000")[:9]) //nolint:errcheck // digits only
	}

	loc, err := parseZone(get("zone"))
	if err != nil {
		return fields{}, true, err
	}

	if month < time.January || month > time.December {
		return fields{}, true, fmt.Errorf("month %d out of range", month)
	}
	if clock[0] > 23 || clock[1] > 59 || clock[2] > 59 {
		return fields{}, true, fmt.Errorf("time of day %02d:%02d:%02d out of range", clock[0], clock[1], clock[2])
	}

	t := time.Date(year, month, day, clock[0], clock[1], clock[2], nanos, loc)
	if t.Day() != day || t.Month() != month {
		return fields{}, true, fmt.Errorf("%s %d is not a valid date in %d", month, day, year)
	}

	f.time = t
	return f, true, nil
}

// parseZone decodes "", "Z", "+hh:mm" and "+hhmm". An absent zone means UTC so that
// wall-clock values compare literally.
func parseZone(z string) (*time.Location, error) {
	switch {
	case z == "" || strings.EqualFold(z, "z"):
		return time.UTC, nil
	case len(z) >= 5 && (z[0] == '+' || z[0] == '-'):
		digits := strings.ReplaceAll(z[1:], ":", "")
		if len(digits) != 4 {
			return nil, fmt.Errorf("bad zone offset %q", z)
		}
		h, errH := strconv.Atoi(digits[:2])
		m, errM := strconv.Atoi(digits[2:])
		if errH != nil || errM != nil || h > 23 || m > 59 {
			return nil, fmt.Errorf("bad zone offset %q", z)
		}
		offset := h*3600 + m*60
		if z[0] == '-' {
			offset = -offset
		}
		return time.FixedZone(z, offset), nil
	default:
		return nil, fmt.Errorf("bad zone offset %q", z)
	}
}

const clockPattern = `(?:(?P<hour>\d{1,2})(?::(?P<min>\d{2})(?::(?P<sec>\d{2}))?)?)`

// expressionGrammars match a single side of a user expression after whitespace has been
// collapsed. Order matters: the BSD form with a year must be tried before the yearless one.
var expressionGrammars = []Grammar{
	mustGrammar("iso", `(?i)^(?P<year>\d{4})-(?P<month>\d{1,2})-(?P<day>\d{1,2})(?:[t ]`+clockPattern+`)?$`),
	mustGrammar("bsd-year", `(?i)^(?P<mon>`+monthPattern+`) (?P<day>\d{1,2}),? (?P<year>\d{4})(?: `+clockPattern+`)?$`),
	mustGrammar("bsd", `(?i)^(?P<mon>`+monthPattern+`) (?P<day>\d{1,2})(?: `+clockPattern+`)?$`),
}

const (
	lineClock = `(?P<hour>\d{2}):(?P<min>\d{2}):(?P<sec>\d{2})(?:[.,](?P<frac>\d{1,9}))?`
	lineZone  = `(?P<zone>Z|[+-]\d{2}:?\d{2})?`
	lineISO   = `(?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})[T ]` + lineClock + lineZone
)

// lineGrammars match timestamps at the start of a log line.
var lineGrammars = []Grammar{
	mustGrammar("rfc5424", `^<\d{1,3}>\d{1,2} `+lineISO),
	mustGrammar("iso8601", `^`+lineISO),
	mustGrammar("bsd-year", `(?i)^(?P<mon>`+monthPattern+`)\s+(?P<day>\d{1,2})\s+(?P<year>\d{4})\s+`+lineClock+`(?:\s|$)`),
	mustGrammar("bsd", `(?i)^(?P<mon>`+monthPattern+`)\s+(?P<day>\d{1,2})\s+`+lineClock+`(?:\s|$)`),
}
