// Package cli implements the ctcdecode command-line interface.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version string
	verbose bool
	rootCmd *cobra.Command
	logger  *zap.SugaredLogger
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version}
	c.setupCommands()
	return c
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:     "ctcdecode",
		Short:   "CTC beam-search decoding for per-frame score matrices",
		Version: c.version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.initLogger()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug output")

	c.rootCmd.AddCommand(c.newDecodeCommand())
	c.rootCmd.AddCommand(c.newLMBuildCommand())
}

func (c *CLI) initLogger() {
	if c.logger != nil {
		return
	}
	cfg := zap.NewDevelopmentConfig()
	if !c.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	c.logger = logger.Sugar()
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	defer func() {
		if c.logger != nil {
			_ = c.logger.Sync()
		}
	}()
	return c.rootCmd.Execute()
}
