/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to work with the app config",
	Long: `
Find out what confluence-labels thinks its settings are, or where it read them from.

Settings come from flags first, then from ` + defaultConfig + ` (or the file named by --config
or CONFLUENCE_LABELS_CONFIG).  Every long flag name is also a config key, e.g.

  confluence-instance: acme
  auth-username: someone@acme.com
  auth-token-cmd: [pass, show, atlassian]
  space: DEV
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
