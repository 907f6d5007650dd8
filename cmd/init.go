package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rust-it-cr/log-collector/internal/templates"
	"github.com/spf13/cobra"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration",
	Long: `Init writes the starter configuration files for logc.

This command will create:
  - config.yaml (commented sample configuration)
  - .env (environment variable template, owner-only permissions)

Both files are optional: logc runs with built-in defaults when they are missing.
Existing files are kept unless --force is given.`,
	Example: `  # Initialize in current directory
  logc init

  # Force overwrite existing files
  logc init --force`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeStarterFiles(cmd.OutOrStdout(), ".", force)
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration files")
}

func writeStarterFiles(out io.Writer, dir string, overwrite bool) error {
	fmt.Fprintln(out, "🔧 Initializing logc...")

	for _, f := range templates.Files() {
		path := filepath.Join(dir, f.Name)

		if _, err := os.Stat(path); err == nil && !overwrite {
			fmt.Fprintf(out, "⚠️  Skipping %s (already exists, use --force to overwrite)\n", f.Name)
			continue
		}

		if err := os.WriteFile(path, f.Content, os.FileMode(f.Mode)); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(path, os.FileMode(f.Mode)); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", f.Name, err)
		}

		fmt.Fprintf(out, "✅ Created %s\n", f.Name)
	}

	fmt.Fprintln(out, "\n🎉 Initialization complete!")
	fmt.Fprintln(out, "\n📝 Next steps:")
	fmt.Fprintln(out, "   1. Edit config.yaml to adjust the log root or worker count")
	fmt.Fprintln(out, "   2. Edit .env to add a Shoutrrr URL if you want notifications")
	fmt.Fprintln(out, "   3. Run 'logc list -s <bundle.tgz>' to see the available logs")
	fmt.Fprintln(out, "   4. Run 'logc extract -s <bundle.tgz> -d out.log -w all -t \"Oct 6\"'")

	return nil
}
