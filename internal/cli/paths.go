package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the effective protected-path registry",
	Long: `Prints every protected path after merging the built-in defaults, the
config file, and the guard file, with the source of each entry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine("")
		if err != nil {
			return err
		}
		for _, e := range eng.registry.Entries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", e.Source, e.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
