// Package cli implements the mta command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mta-tools/mta/internal/config"
	"github.com/mta-tools/mta/internal/output"
	"github.com/mta-tools/mta/internal/tui/components"
	"github.com/mta-tools/mta/internal/tui/theme"
)

var (
	cfgFile  string
	cfg      *config.Config
	closeLog func() error

	// Global JSON output flag - inherited by all subcommands
	jsonOutput bool

	// Global color control flag - inherited by all subcommands
	noColor bool

	// Build information - set via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mta",
		Short: "Music timeline analysis - annotate a recording on layered timelines",
		Long: `mta lets a student annotate a piece of music on seven analytical layers
(form, melody, accompaniment, connectors, secondary melody, instrumentation,
other) while the recording plays, then export the analysis.

Quick Start:
  mta edit --name Ana --surname García --url https://youtu.be/ID
  mta export --format text
  mta view analysis-ana-garcía.json --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				os.Setenv("NO_COLOR", "1")
			}
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			if cmd.Name() == "edit" {
				// the editor owns the terminal and logs to a file
				return nil
			}
			closeLog, err = setupLogging(cfg, "")
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog == nil {
				return nil
			}
			err := closeLog()
			closeLog = nil
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/mta/config.toml)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON where supported")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newEditCmd(),
		newExportCmd(),
		newImportCmd(),
		newViewCmd(),
		newCatalogCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// IsJSONOutput returns true if JSON output is enabled
func IsJSONOutput() bool {
	return jsonOutput
}

// formatter writes to cmd's output in the mode chosen by --json.
func formatter(cmd *cobra.Command) *output.Formatter {
	return output.New(cmd.OutOrStdout(), IsJSONOutput())
}

func loadConfig() (*config.Config, error) {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if errs := config.Validate(loaded); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return loaded, nil
}

// styler returns a Styler that is plain when color is off or out is not a
// terminal.
func styler(tty bool) components.Styler {
	if !tty || noColor || theme.Plain() {
		return components.Styler{Theme: theme.Mocha, Plain: true}
	}
	return components.Styler{Theme: theme.Current()}
}
