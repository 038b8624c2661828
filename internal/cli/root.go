package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "taskloop",
	Short: "Sequential async-loop runner for shell commands",
	Long: `Taskloop repeatedly runs a command, waiting for each run to finish
before deciding whether to start the next one. Runs are paced by a
configurable delay (never applied before the first run), capped by an
optional run limit, and gated by a stop policy on the command's exit
status.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("taskloop version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
