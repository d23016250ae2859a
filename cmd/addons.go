package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devrelay/addons"
)

var addonsCmd = &cobra.Command{
	Use:   "addons",
	Short: "Lists the available addons and their aliases",
	Run: func(cmd *cobra.Command, args []string) {
		aliases := addons.Aliases()
		for i, name := range addons.CanonicalNames() {
			fmt.Printf("%-30s %-10s %s\n", name, aliases[i], addons.Summary(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(addonsCmd)
}
