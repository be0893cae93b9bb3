// Package cli implements the usercount command: the batch host that analyses
// occupancy logs from the command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/usercount/internal/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	logLevel  string
	logFormat string
	noColor   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "usercount",
		Short: "Count distinct users per day and location in occupancy logs",
		Long: `usercount reads occupancy logs (CSV or Excel) and counts the distinct users
seen per day at each location, filtered by SSID and location type.

Example usage:
  usercount dims week1.csv                          # Show the filter choices
  usercount analyze week1.csv --location HQ --ssid corp
  usercount analyze a.csv b.xlsx --common -o merged.xlsx`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat))
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newDimsCmd(opts))
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		p := newPrinter(root.OutOrStdout(), root.ErrOrStderr(), false)
		p.Error("%v", err)
		return 1
	}
	return 0
}
