// Package commands implements the CLI commands for the recall tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/recall/internal/app"
)

// CLI represents the command line interface for recall.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "recall",
		Short:         "A configuration-state cache for build automation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "recall.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Directory holding the configuration file")
	rootCmd.PersistentFlags().String("cache-dir", "", "Override the configured cache directory")
	rootCmd.PersistentFlags().Bool("fail-on-problems", false, "Treat reported problems as build failures")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetConfigHook sets up a PersistentPreRun function that retrieves the config
// flag and calls the provided callback with the config path.
func (c *CLI) SetConfigHook(fn func(string)) {
	c.rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		fn(configPath)
		return nil
	}
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut sets the destination for command output. Used for testing.
func (c *CLI) SetOut(w io.Writer) {
	c.rootCmd.SetOut(w)
}

// runOptions assembles the per-invocation options shared by all subcommands.
func runOptions(cmd *cobra.Command) app.RunOptions {
	dir, _ := cmd.Flags().GetString("dir")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	failOnProblems, _ := cmd.Flags().GetBool("fail-on-problems")
	return app.RunOptions{
		Dir:            dir,
		CacheDir:       cacheDir,
		FailOnProblems: failOnProblems,
	}
}
