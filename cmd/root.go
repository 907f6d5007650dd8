// Package cmd implements the CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rust-it-cr/log-collector/internal/config"
	"github.com/rust-it-cr/log-collector/internal/crashreport"
	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/rust-it-cr/log-collector/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	verbose        bool
	cfg            *config.Config
	errConfigLoad  error
	commandStarted bool
)

var rootCmd = &cobra.Command{
	Use:   "logc",
	Short: "Log collector for device diagnostic bundles",
	Long: `logc unpacks the compressed diagnostic bundles produced by network devices
and extracts only the log lines relevant to a troubleshooting window.

It features:
  - Time windows from partial expressions ("Oct 6", "Oct 6 10 to Oct 8", "2025-01-01T00")
  - Keyword filters with "all of" and "any of" groups, optionally case-insensitive
  - File selection by name, regular expression or glob
  - One destination file with a section per source log
  - Crash reports and Shoutrrr notifications`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		commandStarted = true
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))

		skipConfig := cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version"
		if skipConfig {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			// Commands that need the config fail with it from validateConfigOrExit.
			errConfigLoad = err
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not load config: %v\n", err)
			}
		}

		if verbose && cfg != nil && cfg.ConfigFilePath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded configuration from: %s\n", cfg.ConfigFilePath)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	os.Exit(handleError(rootCmd.ErrOrStderr(), err, os.Args))
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// GetConfig returns the loaded configuration or nil if not loaded.
// Must be called after rootCmd.PersistentPreRunE has executed.
func GetConfig() *config.Config {
	return cfg
}

// GetConfigLoadError returns any error encountered during config loading.
// Returns nil if configuration loaded successfully or was not attempted.
func GetConfigLoadError() error {
	return errConfigLoad
}

// IsVerbose returns whether verbose mode is enabled via the -v flag.
func IsVerbose() bool {
	return verbose
}

// usageError marks mistakes in how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func newUsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// noPositionalArgs rejects stray words, usually an unquoted multi-word flag value.
func noPositionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return newUsageError("unexpected argument(s) %q for %q: quote values with spaces, e.g. -k \"fpc and pic\"",
		args, cmd.CommandPath())
}

// newLogger builds the diagnostics logger. Progress goes to stdout; slog is reserved
// for warnings and, with --verbose, debug details.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// handleError prints err and returns the process exit code. Classified errors get a
// hint; anything else is written to the crash report sink.
func handleError(w io.Writer, err error, args []string) int {
	if err == nil {
		return 0
	}

	var uErr *usageError
	if !commandStarted || errors.As(err, &uErr) {
		fmt.Fprintf(w, "❌ %v\n", err)
		fmt.Fprintln(w, "   Run 'logc --help' for usage.")
		return 1
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "❌ Interrupted, the destination file was not written.")
		return 1
	}

	kind := apperrors.KindOf(err)
	if kind != apperrors.KindUnexpected {
		fmt.Fprintf(w, "❌ %v\n", err)
		if hint := apperrors.Guidance(kind); hint != "" {
			fmt.Fprintf(w, "💡 %s\n", hint)
		}
		return 1
	}

	reportCrash(w, crashreport.NewRecord(err, args))
	return 1
}

// ReportPanic forwards a recovered panic to the crash report sink.
func ReportPanic(recovered any, stack []byte) {
	record := crashreport.NewRecord(fmt.Errorf("panic: %v", recovered), os.Args)
	record.Stack = string(stack)
	reportCrash(os.Stderr, record)
}

func reportCrash(w io.Writer, record crashreport.Record) {
	path, err := crashSink(GetConfig()).Report(record)

	fmt.Fprintln(w, "❌ logc stopped because of an unexpected error.")
	switch {
	case err != nil:
		fmt.Fprintf(w, "   %s\n", record.Message)
		fmt.Fprintf(w, "⚠️  The crash report could not be saved: %v\n", err)
	case path == "":
		fmt.Fprintf(w, "   %s\n", record.Message)
	default:
		fmt.Fprintf(w, "📝 Details were saved to %s (incident %s).\n", path, record.IncidentID)
		fmt.Fprintln(w, "   Please attach this file when reporting the problem.")
	}
}

// crashSink selects where crash records go. Without a loaded configuration the
// defaults apply, so even configuration failures leave a record.
func crashSink(c *config.Config) crashreport.Sink {
	if c == nil {
		c = config.Default()
	}
	if !c.Crash.Enabled {
		return crashreport.NopSink{}
	}

	dir, err := c.CrashDir()
	if err != nil {
		slog.Warn("crash reports disabled", "error", err)
		return crashreport.NopSink{}
	}
	return crashreport.NewFileSink(dir)
}
