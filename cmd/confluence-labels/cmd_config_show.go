/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.
`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Note, you can only talk about persistent flags here.  Command-specific ones won't be
		// visible.
		fmt.Printf("Config file: %s\n\n", ConfigActual)

		parsed, err := yaml.Marshal(ParsedConfig)
		if err != nil {
			return fmt.Errorf("config show: couldn't render parsed config: %w", err)
		}
		fmt.Printf("Parsed YAML:\n%s\n", parsed)

		fmt.Printf("Effective settings:\n")
		fmt.Printf("  debug: %v\n", Debug)
		fmt.Printf("  log-json: %v\n", LogJSON)
		fmt.Printf("  confluence-instance: %s\n", ConfluenceInstance)
		fmt.Printf("  base-url: %s\n", BaseURL)
		fmt.Printf("  auth-username: %s\n", AuthUsername)
		fmt.Printf("  auth-token-cmd: %v\n", AuthTokenCmd)
		fmt.Printf("  space: %s\n", Space)
		fmt.Printf("  fallback-space: %s\n", FallbackSpace)
		fmt.Printf("  page-size: %d\n", PageSize)
		fmt.Printf("  timeout: %s\n", Timeout)
		fmt.Printf("  output: %s\n", Output)
		fmt.Printf("  with-vcr: %v\n", WithVCR)
		return nil
	},
}

func init() {
	configCmd.AddCommand(showCmd)
}
