package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rust-it-cr/log-collector/internal/config"
	"github.com/spf13/cobra"
)

// validateConfigOrExit returns the load error when no configuration is available.
// A missing config file is fine: defaults and LOGC_* variables still produce one.
func validateConfigOrExit(c *config.Config) error {
	if c != nil {
		return nil
	}
	if err := GetConfigLoadError(); err != nil {
		return err
	}
	return fmt.Errorf("configuration not loaded\n\nRun 'logc init' to create config.yaml in the current directory")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration that logc will use at runtime.

This shows the merged configuration from:
  1. Default values
  2. Configuration file (config.yaml)
  3. Environment variables (LOGC_*, highest priority)

The notification URL is masked because it usually carries credentials.`,
	Example: `  # Show current configuration
  logc config

  # Show with custom config file
  logc config --config /etc/logc/config.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := GetConfig()
		if err := validateConfigOrExit(c); err != nil {
			return err
		}
		displayConfig(cmd.OutOrStdout(), c)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(configCmd)
}

func displayConfig(w io.Writer, c *config.Config) {
	fmt.Fprintln(w, "=== logc Effective Configuration ===")
	fmt.Fprintln(w)

	source := c.ConfigFilePath
	if source == "" {
		source = "(defaults/environment)"
	}
	fmt.Fprintf(w, "📄 Config File:    %s\n", source)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📦 Archive Configuration:")
	fmt.Fprintf(w, "   Log Root:       %s\n", c.Archive.LogRoot)
	fmt.Fprintf(w, "   Fallback Enc.:  %s\n", c.Archive.FallbackEncoding)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "⚙️  Engine Configuration:")
	fmt.Fprintf(w, "   Workers:        %d\n", c.Engine.Workers)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📝 Crash Reports:")
	fmt.Fprintf(w, "   Enabled:        %v\n", c.Crash.Enabled)
	if dir, err := c.CrashDir(); err != nil {
		fmt.Fprintf(w, "   Directory:      ⚠️  %v\n", err)
	} else {
		fmt.Fprintf(w, "   Directory:      %s\n", dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🔔 Notification Configuration:")
	fmt.Fprintf(w, "   Enabled:        %v\n", c.Notification.Enabled)
	fmt.Fprintf(w, "   Shoutrrr URL:   %s\n", maskShoutrrrURL(c.Notification.ShoutrrURL))
	fmt.Fprintln(w)
}

// maskShoutrrrURL masks sensitive parts of Shoutrrr URL
func maskShoutrrrURL(url string) string {
	if url == "" {
		return "❌ Not configured"
	}

	// Extract service type (e.g., discord://, slack://, smtp://)
	parts := strings.SplitN(url, "://", 2)
	if len(parts) != 2 {
		return "✅ Configured (invalid format)"
	}

	service := parts[0]
	// Mask the credentials/tokens
	return fmt.Sprintf("✅ Configured (%s://***)", service)
}
