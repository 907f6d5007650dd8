package timewindow

import "time"

// Stamp is a timestamp found at the start of a log line.
// YearKnown is false for BSD syslog stamps, which carry no year.
type Stamp struct {
	Time      time.Time
	YearKnown bool
}

// Extractor finds leading timestamps using an ordered list of grammars.
type Extractor struct {
	grammars []Grammar
}

// NewExtractor returns an Extractor trying the built-in line grammars first and extra
// grammars after them, in the order given.
func NewExtractor(extra ...Grammar) *Extractor {
	grammars := make([]Grammar, 0, len(lineGrammars)+len(extra))
	grammars = append(grammars, lineGrammars...)
	grammars = append(grammars, extra...)
	return &Extractor{grammars: grammars}
}

var defaultExtractor = NewExtractor()

// Extract uses the built-in grammars. See Extractor.Extract.
func Extract(line string, year int) (Stamp, bool) {
	return defaultExtractor.Extract(line, year)
}

// Extract returns the first timestamp any grammar recognizes at the start of line.
// year fills in stamps that carry none. A match with impossible values (e.g. month 13)
// is treated as no timestamp; ok is false when nothing matched.
func (e *Extractor) Extract(line string, year int) (Stamp, bool) {
	for _, g := range e.grammars {
		f, ok, err := g.match(line, year)
		if !ok {
			continue
		}
		if err != nil {
			return Stamp{}, false
		}
		return Stamp{Time: f.time, YearKnown: f.yearKnown}, true
	}
	return Stamp{}, false
}

// Names lists the grammar names in the order they are tried.
func (e *Extractor) Names() []string {
	names := make([]string, len(e.grammars))
	for i, g := range e.grammars {
		names[i] = g.Name
	}
	return names
}
