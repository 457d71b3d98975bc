// Package commands implements the CLI commands for the forge build tool.
package commands

import (
	"context"
	"io"

	"github.com/farm-framework/forge/internal/build"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/spf13/cobra"
)

// BuildRunner is the application surface the CLI drives.
type BuildRunner interface {
	RunBuild(ctx context.Context, targetNames []string, opts domain.BuildOptions) *domain.BuildResult
	CleanCache(opts domain.BuildOptions) error
}

// CLI represents the command line interface for forge.
type CLI struct {
	app     BuildRunner
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a BuildRunner) *CLI {
	rootCmd := &cobra.Command{
		Use:           "forge",
		Short:         "Build orchestrator for full-stack projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().String("cache-dir", "", "Build cache directory (default \".forge-cache\")")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and error streams.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}
