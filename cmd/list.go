package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/rust-it-cr/log-collector/internal/archive"
	"github.com/rust-it-cr/log-collector/internal/config"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the log files inside a diagnostic bundle",
	Long: `List shows the regular files below the log root of a diagnostic bundle, the
names --file, --wildcard and --glob of the extract command select from.

Without a selection every file is listed.`,
	Example: `  # Every log in the bundle
  logc list -s rsi.tgz

  # Only rotated messages files
  logc list -s rsi.tgz -w "messages\.[0-9]"`,
	Args: noPositionalArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		source, _ := cmd.Flags().GetString("source")
		wildcards, _ := cmd.Flags().GetStringArray("wildcard")
		globs, _ := cmd.Flags().GetStringArray("glob")

		if source == "" {
			return newUsageError("a source archive is required (--source)")
		}

		c := GetConfig()
		if err := validateConfigOrExit(c); err != nil {
			return err
		}

		return listMembers(cmd.OutOrStdout(), c, source, archive.Selector{Wildcards: wildcards, Globs: globs})
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(listCmd)
	defineListFlags(listCmd)
}

func defineListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "diagnostic bundle to read (.tgz, .tar.gz, .tar)")
	cmd.Flags().StringArrayP("wildcard", "w", nil, "regular expression matched at the start of file names (repeatable)")
	cmd.Flags().StringArrayP("glob", "g", nil, `glob over file names, e.g. "**/*.log" (repeatable)`)
}

func listMembers(out io.Writer, c *config.Config, source string, sel archive.Selector) error {
	bundle, err := archive.Open(source, archive.Options{
		LogRoot: c.Archive.LogRoot,
		Logger:  slog.Default(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := bundle.Close(); err != nil {
			slog.Warn("failed to remove working directory", "error", err)
		}
	}()

	members := bundle.Members()
	if !sel.Empty() {
		members, err = bundle.Select(sel)
		if err != nil {
			return err
		}
	}

	if len(members) == 0 {
		fmt.Fprintf(out, "No log files below %s in %s\n", c.Archive.LogRoot, source)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "Name\tSize\tModified")
	_, _ = fmt.Fprintln(w, "----\t----\t--------")

	for _, m := range members {
		modified := m.ModTime.Format(time.DateTime)
		if m.ModTime.IsZero() {
			modified = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, units.HumanSize(float64(m.Size)), modified)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write file list: %w", err)
	}

	fmt.Fprintf(out, "\n%d file(s)\n", len(members))
	return nil
}
