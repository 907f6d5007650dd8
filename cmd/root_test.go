package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rust-it-cr/log-collector/internal/config"
	"github.com/rust-it-cr/log-collector/internal/crashreport"
	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFalseValue = "false"
	testInitCmd    = "init"
)

// withCLIState resets the package state touched by PersistentPreRunE and handleError.
func withCLIState(t *testing.T, c *config.Config, started bool) {
	t.Helper()

	prevCfg, prevErr, prevStarted := cfg, errConfigLoad, commandStarted
	cfg, errConfigLoad, commandStarted = c, nil, started
	t.Cleanup(func() {
		cfg, errConfigLoad, commandStarted = prevCfg, prevErr, prevStarted
	})
}

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	cmd := rootCmd

	if cmd.Use != "logc" {
		t.Errorf("Expected command use 'logc', got '%s'", cmd.Use)
	}

	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	flags := rootCmd.PersistentFlags()

	configFlag := flags.Lookup("config")
	require.NotNil(t, configFlag, "Expected 'config' flag to be defined")
	assert.Empty(t, configFlag.DefValue)

	verboseFlag := flags.Lookup("verbose")
	require.NotNil(t, verboseFlag, "Expected 'verbose' flag to be defined")
	assert.Equal(t, testFalseValue, verboseFlag.DefValue)
	assert.Equal(t, "v", verboseFlag.Shorthand)
}

func TestRootCmd_HelpOutput(t *testing.T) {
	var buf bytes.Buffer

	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	output := buf.String()
	for _, expected := range []string{"logc", "diagnostic bundles", "extract", "list", "--config", "--verbose", "-v"} {
		if !containsString(output, expected) {
			t.Errorf("Expected help output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestRootCmd_VersionOutput(t *testing.T) {
	var buf bytes.Buffer

	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "logc")
}

func TestRootCmd_SubcommandsList(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, expected := range []string{"extract", "list", testInitCmd, "config"} {
		assert.True(t, names[expected], "Expected subcommand %q to be registered", expected)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var quiet bytes.Buffer
	logger := newLogger(&quiet, false)
	logger.Debug("hidden detail")
	logger.Warn("member skipped", "member", "broken.gz")
	assert.NotContains(t, quiet.String(), "hidden detail")
	assert.Contains(t, quiet.String(), "member=broken.gz")
	assert.False(t, logger.Handler().Enabled(ctx, slog.LevelDebug))

	var loud bytes.Buffer
	logger = newLogger(&loud, true)
	logger.Debug("shown detail")
	assert.Contains(t, loud.String(), "shown detail")
}

func TestHandleError_Success(t *testing.T) {
	withCLIState(t, nil, true)

	var buf bytes.Buffer
	assert.Equal(t, 0, handleError(&buf, nil, nil))
	assert.Empty(t, buf.String())
}

func TestHandleError_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		started bool
	}{
		{name: "usage error from a command", err: newUsageError("a source archive is required (--source)"), started: true},
		{name: "cobra error before any command ran", err: errors.New(`unknown command "extrakt" for "logc"`), started: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			withCLIState(t, &config.Config{Crash: config.CrashConfig{Enabled: true, Dir: dir}}, tt.started)

			var buf bytes.Buffer
			assert.Equal(t, 1, handleError(&buf, tt.err, nil))
			assert.Contains(t, buf.String(), tt.err.Error())
			assert.Contains(t, buf.String(), "logc --help")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "usage errors must not produce crash reports")
		})
	}
}

func TestHandleError_ClassifiedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{
			name: "invalid time",
			err:  &apperrors.InvalidTimestampFormatError{Expression: "Oct 32", Reason: "day out of range"},
			hint: "<month> <day>",
		},
		{
			name: "invalid keywords",
			err:  &apperrors.InvalidKeywordExpressionError{Expression: "a and b or c", Reason: "mixes and/or"},
			hint: "--all and --any",
		},
		{
			name: "destination",
			err:  &apperrors.DestinationWriteError{Path: "/nope/out.log", Op: "create", Err: os.ErrNotExist},
			hint: "writable",
		},
		{
			name: "extraction",
			err:  &apperrors.ExtractionError{Source: "rsi.tgz", Member: "messages", Err: errors.New("not found")},
			hint: "corrupted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			withCLIState(t, &config.Config{Crash: config.CrashConfig{Enabled: true, Dir: dir}}, true)

			var buf bytes.Buffer
			assert.Equal(t, 1, handleError(&buf, tt.err, nil))
			assert.Contains(t, buf.String(), "❌ "+tt.err.Error())
			assert.Contains(t, buf.String(), tt.hint)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestHandleError_UnexpectedWritesCrashReport(t *testing.T) {
	dir := t.TempDir()
	withCLIState(t, &config.Config{Crash: config.CrashConfig{Enabled: true, Dir: dir}}, true)

	var buf bytes.Buffer
	code := handleError(&buf, errors.New("nil pointer somewhere"), []string{"logc", "extract", "-s", "rsi.tgz"})
	assert.Equal(t, 1, code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_logc_error.log"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "nil pointer somewhere")
	assert.Contains(t, string(data), "rsi.tgz")

	assert.Contains(t, buf.String(), "unexpected error")
	assert.Contains(t, buf.String(), entries[0].Name())
}

func TestHandleError_CrashReportsDisabled(t *testing.T) {
	withCLIState(t, &config.Config{Crash: config.CrashConfig{Enabled: false}}, true)

	var buf bytes.Buffer
	assert.Equal(t, 1, handleError(&buf, errors.New("boom"), nil))
	assert.Contains(t, buf.String(), "boom")
	assert.NotContains(t, buf.String(), "saved")
}

func TestHandleError_Interrupted(t *testing.T) {
	dir := t.TempDir()
	withCLIState(t, &config.Config{Crash: config.CrashConfig{Enabled: true, Dir: dir}}, true)

	var buf bytes.Buffer
	assert.Equal(t, 1, handleError(&buf, context.Canceled, nil))
	assert.Contains(t, buf.String(), "Interrupted")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCrashSink(t *testing.T) {
	t.Parallel()

	assert.IsType(t, crashreport.NopSink{}, crashSink(&config.Config{Crash: config.CrashConfig{Enabled: false}}))

	sink := crashSink(&config.Config{Crash: config.CrashConfig{Enabled: true, Dir: "/var/tmp/reports"}})
	fileSink, ok := sink.(*crashreport.FileSink)
	require.True(t, ok, "expected a file sink, got %T", sink)
	assert.Equal(t, "/var/tmp/reports", fileSink.Dir)
}

func TestUsageError_Unwrap(t *testing.T) {
	t.Parallel()

	err := newUsageError("--workers must not be negative, got %d", -1)
	var uErr *usageError
	require.ErrorAs(t, err, &uErr)
	assert.Equal(t, "--workers must not be negative, got -1", err.Error())
	assert.NotNil(t, errors.Unwrap(err))
}

// containsString checks if a string contains a substring
func containsString(s, substr string) bool {
	return strings.Contains(s, substr)
}
