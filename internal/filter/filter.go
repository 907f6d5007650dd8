// Package filter decides which log lines to keep by combining a time window and
// keyword groups.
package filter

import (
	"fmt"

	"github.com/rust-it-cr/log-collector/internal/keyword"
	"github.com/rust-it-cr/log-collector/internal/timewindow"
)

// yearlessReference is the year given to stamps that carry none. It is a leap year so
// that "Feb 29" lines parse; Window.Contains re-places them in the window's own years.
const yearlessReference = 2000

// Spec is the immutable description of one filtering run. A zero Spec keeps every line.
type Spec struct {
	Window          *timewindow.Window
	MustContainAll  []string
	MustContainAny  []string
	CaseInsensitive bool
}

// Active reports whether any criterion is configured.
func (s Spec) Active() bool {
	return s.Window != nil || len(s.MustContainAll) > 0 || len(s.MustContainAny) > 0
}

// Stats tracks statistics about the filtering operation.
type Stats struct {
	LinesTotal       int // Total number of input lines
	LinesKept        int // Number of lines written to the output
	LinesNoTimestamp int // Lines rejected because a window is active and no timestamp was found
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.LinesTotal += other.LinesTotal
	s.LinesKept += other.LinesKept
	s.LinesNoTimestamp += other.LinesNoTimestamp
}

// Engine evaluates lines against a Spec. It holds no mutable state and can be shared
// by concurrent workers.
type Engine struct {
	spec      Spec
	matcher   *keyword.Matcher
	extractor *timewindow.Extractor
	workers   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many files are filtered concurrently. Values below 1 are rejected
// by NewEngine.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithExtractor replaces the default line timestamp extractor.
func WithExtractor(x *timewindow.Extractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

// NewEngine creates an Engine for spec.
func NewEngine(spec Spec, opts ...Option) (*Engine, error) {
	e := &Engine{
		spec:      spec,
		matcher:   keyword.NewMatcher(spec.MustContainAll, spec.MustContainAny, spec.CaseInsensitive),
		extractor: timewindow.NewExtractor(),
		workers:   1,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.workers < 1 {
		return nil, fmt.Errorf("invalid worker count %d: must be at least 1", e.workers)
	}
	if e.extractor == nil {
		return nil, fmt.Errorf("timestamp extractor must not be nil")
	}

	return e, nil
}

// Spec returns the spec the engine was built with.
func (e *Engine) Spec() Spec {
	return e.spec
}

// Workers returns the configured concurrency.
func (e *Engine) Workers() int {
	return e.workers
}

// Evaluate reports whether line is kept. Every configured criterion must accept it;
// with no criteria configured every line is kept.
func (e *Engine) Evaluate(line string) bool {
	kept, _ := e.decide(line)
	return kept
}

// decide also reports whether the line was rejected for lacking a timestamp.
func (e *Engine) decide(line string) (kept, noTimestamp bool) {
	if e.spec.Window != nil {
		stamp, ok := e.extractor.Extract(line, yearlessReference)
		if !ok {
			return false, true
		}
		if !e.spec.Window.Contains(stamp) {
			return false, false
		}
	}

	return e.matcher.Matches(line), false
}
