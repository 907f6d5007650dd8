package filter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/rust-it-cr/log-collector/internal/output"
	"golang.org/x/sync/errgroup"
)

// MaxLineSize is the longest line the scanner accepts.
const MaxLineSize = 1 << 20

// cancelCheckInterval is how many lines are processed between context checks.
const cancelCheckInterval = 512

// Source is one readable log file. Open may be called once per run.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// Result is the outcome of filtering one Source.
type Result struct {
	Group output.Group
	Stats Stats
}

// FilterFile runs a single left-to-right pass over src and returns the kept lines in
// their original order.
func (e *Engine) FilterFile(ctx context.Context, src Source) (Result, error) {
	res := Result{Group: output.Group{FileName: src.Name()}}

	rc, err := src.Open()
	if err != nil {
		return res, &apperrors.ExtractionError{Source: src.Name(), Err: err}
	}
	defer func() { _ = rc.Close() }()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	for scanner.Scan() {
		if res.Stats.LinesTotal%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")
		res.Stats.LinesTotal++

		kept, noTimestamp := e.decide(line)
		if noTimestamp {
			res.Stats.LinesNoTimestamp++
		}
		if kept {
			res.Group.Lines = append(res.Group.Lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return res, &apperrors.ExtractionError{
			Source: src.Name(),
			Err:    fmt.Errorf("failed to read line %d: %w", res.Stats.LinesTotal+1, err),
		}
	}

	res.Stats.LinesKept = len(res.Group.Lines)
	return res, nil
}

// Run filters every source and returns one Result per source, in the order the sources
// were given. With more than one worker, files are filtered concurrently; each result
// lands in its own slot so ordering does not depend on completion order. The first
// error cancels the remaining work and is returned.
func (e *Engine) Run(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, len(sources))
	if len(sources) == 0 {
		return results, nil
	}

	if e.workers == 1 {
		for i, src := range sources {
			res, err := e.FilterFile(ctx, src)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, src := range sources {
		g.Go(func() error {
			res, err := e.FilterFile(gctx, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Total sums the statistics of all results.
func Total(results []Result) Stats {
	var total Stats
	for _, r := range results {
		total.Add(r.Stats)
	}
	return total
}
