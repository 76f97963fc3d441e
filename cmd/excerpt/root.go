package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/excerpt/internal/config"
	"github.com/dusk-indust/excerpt/internal/logging"
)

// cli holds state shared by every subcommand. cfg and logger are set in
// PersistentPreRunE.
type cli struct {
	configDir string
	verbose   bool

	stdin  io.Reader
	cfg    *config.ProjectConfig
	logger *zap.Logger
}

func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "excerpt",
		Short: "Extract regions of files with declarative selectors",
		Long: `excerpt pulls the parts of a file you ask for: line ranges, Python
functions, classes and methods, Markdown sections, regex matches and
JSON/YAML values. Python selections can be reduced to an interface view
of signatures and docstrings.

Examples:
  excerpt select app.py def:main class:Server.start
  excerpt select README.md "section:Install"
  excerpt select config.yaml path:services[0].ports
  excerpt interface app.py
  excerpt batch excerpts.yml --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&app.configDir, "config-dir", ".", "directory holding excerpt.yml and .env")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newSelectCmd(app),
		newInterfaceCmd(app),
		newBatchCmd(app),
		newServeMCPCmd(app),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger. Tests may preset both.
func (app *cli) setup() error {
	if app.cfg == nil {
		cfg, err := config.Load(app.configDir)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		app.cfg = cfg
	}

	if app.logger == nil {
		level := app.cfg.LogLevel
		if app.verbose {
			level = "debug"
		}
		logger, err := logging.New(logging.Options{Level: level, Development: app.verbose})
		if err != nil {
			return err
		}
		app.logger = logger
	}
	return nil
}
