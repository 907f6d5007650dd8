package cmd

import (
	"strings"
	"time"

	"github.com/rust-it-cr/log-collector/internal/archive"
	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/rust-it-cr/log-collector/internal/filter"
	"github.com/rust-it-cr/log-collector/internal/keyword"
	"github.com/rust-it-cr/log-collector/internal/timewindow"
	"github.com/spf13/cobra"
)

// extractConfig holds all extract-specific flags.
// It is built once per invocation and passed down explicitly.
type extractConfig struct {
	// source is the diagnostic bundle to read (.tgz, .tar.gz or .tar).
	source string

	// destination is the file the filtered sections are written to.
	destination string

	// files, wildcards and globs select archive members. At least one is required.
	files     []string
	wildcards []string
	globs     []string

	// timeExpr is the time window expression, e.g. "Oct 6 to Oct 8". Empty disables
	// the time filter.
	timeExpr string

	// keywordExprs are "-k" expressions joined with "and" or "or".
	keywordExprs []string

	// allKeywords and anyKeywords are added to the AND-set and OR-set as given.
	allKeywords []string
	anyKeywords []string

	// ignoreCase makes keyword matching case-insensitive.
	ignoreCase bool

	// workers overrides engine.workers when positive.
	workers int

	// notify sends a summary through the configured Shoutrrr URL.
	notify bool

	// verbose enables per-file statistics.
	// Inherited from root command but included here for explicit dependency tracking.
	verbose bool
}

// newExtractConfigFromCmd creates an extractConfig from Cobra command flags.
func newExtractConfigFromCmd(cmd *cobra.Command) *extractConfig {
	// Get* never return errors when flags are properly defined
	source, _ := cmd.Flags().GetString("source")
	destination, _ := cmd.Flags().GetString("destination")
	files, _ := cmd.Flags().GetStringArray("file")
	wildcards, _ := cmd.Flags().GetStringArray("wildcard")
	globs, _ := cmd.Flags().GetStringArray("glob")
	timeExpr, _ := cmd.Flags().GetString("time")
	keywordExprs, _ := cmd.Flags().GetStringArray("keyword")
	allKeywords, _ := cmd.Flags().GetStringArray("all")
	anyKeywords, _ := cmd.Flags().GetStringArray("any")
	ignoreCase, _ := cmd.Flags().GetBool("ignore-case")
	workers, _ := cmd.Flags().GetInt("workers")
	notify, _ := cmd.Flags().GetBool("notify")

	return &extractConfig{
		source:       source,
		destination:  destination,
		files:        files,
		wildcards:    wildcards,
		globs:        globs,
		timeExpr:     timeExpr,
		keywordExprs: keywordExprs,
		allKeywords:  allKeywords,
		anyKeywords:  anyKeywords,
		ignoreCase:   ignoreCase,
		workers:      workers,
		notify:       notify,
		verbose:      IsVerbose(),
	}
}

// validate checks the flags that are required regardless of configuration.
func (ec *extractConfig) validate() error {
	if strings.TrimSpace(ec.source) == "" {
		return newUsageError("a source archive is required (--source)")
	}
	if strings.TrimSpace(ec.destination) == "" {
		return newUsageError("a destination file is required (--destination)")
	}
	if ec.selector().Empty() {
		return newUsageError("select files with --file, --wildcard or --glob (use --wildcard all for every file)")
	}
	if ec.workers < 0 {
		return newUsageError("--workers must not be negative, got %d", ec.workers)
	}
	return nil
}

// selector returns the member selection described by the flags.
func (ec *extractConfig) selector() archive.Selector {
	return archive.Selector{
		Names:     ec.files,
		Wildcards: ec.wildcards,
		Globs:     ec.globs,
	}
}

// buildSpec parses the time and keyword expressions into the immutable filter spec.
// It runs before the archive is opened so that typos fail fast.
func (ec *extractConfig) buildSpec(now time.Time) (filter.Spec, error) {
	spec := filter.Spec{CaseInsensitive: ec.ignoreCase}

	if strings.TrimSpace(ec.timeExpr) != "" {
		w, err := timewindow.Parse(ec.timeExpr, now)
		if err != nil {
			return filter.Spec{}, err
		}
		spec.Window = &w
	}

	orExprs := 0
	for _, expr := range ec.keywordExprs {
		all, anyOf, err := keyword.ParseExpression(expr)
		if err != nil {
			return filter.Spec{}, err
		}
		if len(anyOf) > 1 {
			orExprs++
		}
		// Two "or" expressions would silently merge into one any-of group.
		if orExprs > 1 {
			return filter.Spec{}, &apperrors.InvalidKeywordExpressionError{
				Expression: expr,
				Reason:     `only one "or" expression is allowed; add alternatives with --any`,
			}
		}
		spec.MustContainAll = append(spec.MustContainAll, all...)
		spec.MustContainAny = append(spec.MustContainAny, anyOf...)
	}

	spec.MustContainAll = append(spec.MustContainAll, ec.allKeywords...)
	spec.MustContainAny = append(spec.MustContainAny, ec.anyKeywords...)

	return spec, nil
}
