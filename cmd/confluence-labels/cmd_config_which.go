/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which",
	Short: "Tell me the resolved config path",
	Long: `
Print the config file confluence-labels reads, and whether it exists.  Without --config or
CONFLUENCE_LABELS_CONFIG this is ` + defaultConfig + `, and running without it is fine.
`,
	Args: cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		state := "found"
		if !configFound {
			state = "not found, using flags only"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config path: %s (%s)\n", ConfigActual, state)
	},
}

func init() {
	configCmd.AddCommand(whichCmd)
}
