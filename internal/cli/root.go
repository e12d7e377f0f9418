// Package cli wires the detection engine into a cobra command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "lossguard",
	Short: "Pre-execution guard against irreversible data loss",
	Long: `lossguard inspects a shell command before an autonomous coding agent
runs it and flags operations that would destroy data irreversibly:
removals of protected or large trees, wildcard deletions, piped
deletions, forced git cleans, truncations, and raw device writes.

It ships a one-shot checker (lossguard check) and an IDE hook
(lossguard hook) for agent runtimes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: ~/.lossguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
