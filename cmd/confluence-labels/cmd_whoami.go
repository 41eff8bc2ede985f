/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check your credentials",
	Long: `
Ask Confluence who you are.  If this works, your token and instance settings are fine.
`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		api, stop, err := newAPI()
		if err != nil {
			return fmt.Errorf("whoami: %w", err)
		}
		defer stop()

		user, err := api.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("whoami: %w", err)
		}

		return render(os.Stdout, user, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "Name:\t%s\n", user.DisplayName)
			fmt.Fprintf(tw, "Email:\t%s\n", user.Email)
			fmt.Fprintf(tw, "Account ID:\t%s\n", user.AccountID)
			fmt.Fprintf(tw, "Instance:\t%s\n", api.BaseURI)
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
