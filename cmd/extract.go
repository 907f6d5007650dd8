package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rust-it-cr/log-collector/internal/archive"
	"github.com/rust-it-cr/log-collector/internal/config"
	"github.com/rust-it-cr/log-collector/internal/filter"
	"github.com/rust-it-cr/log-collector/internal/output"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract filtered log lines from a diagnostic bundle",
	Long: `Extract unpacks the selected log files of a diagnostic bundle and writes the
lines that match the filters to a single destination file, one section per file.

Filters:
  --time      keep lines whose timestamp lies in the window
  --keyword   keyword expression, "a and b" (all of) or "a or b" (any of)
  --all/--any add single keywords to the "all of" or "any of" group

Repeated --keyword expressions are merged: their "and" keywords join the "all of"
group and their "or" keywords the "any of" group. Only one expression may use "or";
add further alternatives with --any. Quote every expression, -k "fpc and pic".

Every configured filter must accept a line for it to be kept. Lines without a
recognizable timestamp are dropped while a time window is active. Without any filter
the selected files are concatenated.`,
	Example: `  # Everything chassisd and messages logged between Oct 6 and Oct 8
  logc extract -s rsi.tgz -d out.log -f messages -f chassisd -t "Oct 6 to Oct 8"

  # All rotated messages files mentioning an interface, any case
  logc extract -s rsi.tgz -d out.log -w "messages" -k "ge-0/0/0 or xe-0/0/1" -i

  # Lines with both keywords during one hour, from every log
  logc extract -s rsi.tgz -d out.log -w all -t "Oct 7 10" -k "fpc and offline"

  # Glob selection, four files in parallel
  logc extract -s rsi.tgz -d out.log -g "**/*.log" --workers 4`,
	Args: noPositionalArgs,
	RunE: runExtractCmd,
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(extractCmd)
	defineExtractFlags(extractCmd)
}

// defineExtractFlags registers the extract flags on cmd.
// Selection flags are string arrays: globs and regular expressions may contain commas.
func defineExtractFlags(cmd *cobra.Command) {
	// Define flags without global variables - values are stored internally by Cobra
	cmd.Flags().StringP("source", "s", "", "diagnostic bundle to read (.tgz, .tar.gz, .tar)")
	cmd.Flags().StringP("destination", "d", "", "file to write the filtered sections to")
	cmd.Flags().StringArrayP("file", "f", nil, "exact log file name relative to the log root (repeatable)")
	cmd.Flags().StringArrayP("wildcard", "w", nil, `regular expression matched at the start of file names, "all" for every file (repeatable)`)
	cmd.Flags().StringArrayP("glob", "g", nil, `glob over file names, e.g. "**/*.log" or "{messages,chassisd}" (repeatable)`)
	cmd.Flags().StringP("time", "t", "", `time window, e.g. "Oct 6", "Jan 1 12 to Jan 1 14", "2025-01-01T00"`)
	cmd.Flags().StringArrayP("keyword", "k", nil, `quoted keyword expression joined with "and" or "or"; repeated expressions share one "and" group and one "or" group`)
	cmd.Flags().StringArray("all", nil, "keyword every kept line must contain (repeatable)")
	cmd.Flags().StringArray("any", nil, "keyword of which at least one must occur (repeatable)")
	cmd.Flags().BoolP("ignore-case", "i", false, "case-insensitive keyword matching")
	cmd.Flags().Int("workers", 0, fmt.Sprintf("files filtered in parallel, 1-%d (default: engine.workers)", config.MaxWorkers))
	cmd.Flags().Bool("notify", false, "send a summary via the configured Shoutrrr URL")
}

func runExtractCmd(cmd *cobra.Command, _ []string) error {
	ec := newExtractConfigFromCmd(cmd)
	if err := ec.validate(); err != nil {
		return err
	}

	c := GetConfig()
	if err := validateConfigOrExit(c); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runExtract(ctx, cmd.OutOrStdout(), c, ec, time.Now())
	if err != nil {
		return err
	}

	sendNotificationIfNeeded(cmd.OutOrStdout(), c, ec, summary)
	return nil
}

// runExtract performs one extraction: parse filters, open and select, filter, write.
func runExtract(ctx context.Context, out io.Writer, c *config.Config, ec *extractConfig, now time.Time) (*extractSummary, error) {
	started := time.Now()

	spec, err := ec.buildSpec(now)
	if err != nil {
		return nil, err
	}

	workers := c.Engine.Workers
	if ec.workers > 0 {
		workers = ec.workers
	}
	if workers > config.MaxWorkers {
		return nil, newUsageError("--workers must be between 1 and %d, got %d", config.MaxWorkers, workers)
	}

	engine, err := filter.NewEngine(spec, filter.WithWorkers(workers))
	if err != nil {
		return nil, err
	}

	enc, err := config.LookupEncoding(c.Archive.FallbackEncoding)
	if err != nil {
		return nil, err
	}

	displayExtractHeader(out, ec, spec, workers)

	bundle, err := archive.Open(ec.source, archive.Options{
		LogRoot:          c.Archive.LogRoot,
		FallbackEncoding: enc,
		Logger:           slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := bundle.Close(); err != nil {
			slog.Warn("failed to remove working directory", "error", err)
		}
	}()

	members, err := bundle.Select(ec.selector())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "📦 Selected %d file(s) from %s\n", len(members), ec.source)

	files, err := bundle.Extract(members)
	if err != nil {
		return nil, err
	}
	if skipped := len(members) - len(files); skipped > 0 {
		fmt.Fprintf(out, "⚠️  Skipped %d unreadable compressed file(s)\n", skipped)
	}

	sources := make([]filter.Source, len(files))
	for i, f := range files {
		sources[i] = f
	}

	results, err := engine.Run(ctx, sources)
	if err != nil {
		return nil, err
	}

	agg := output.NewAggregator()
	for _, r := range results {
		agg.Add(r.Group)
	}

	if err := output.WriteFile(ec.destination, agg.Groups()); err != nil {
		return nil, err
	}

	summary := &extractSummary{
		source:      ec.source,
		destination: ec.destination,
		spec:        spec,
		results:     results,
		total:       filter.Total(results),
		duration:    time.Since(started),
	}
	displayExtractSummary(out, summary, ec.verbose)
	return summary, nil
}
