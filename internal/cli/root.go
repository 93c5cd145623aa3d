package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute builds the command tree, runs it with args and returns the first
// command error.
//
// Logging:
//   - Default: info level (logs to the writer given to New)
//   - With --verbose (-v): debug level
func (c *CLI) Execute(ctx context.Context, args []string) error {
	var verbose bool

	root := c.RootCommand()
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	setup := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return setup(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
