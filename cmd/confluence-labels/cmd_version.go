/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.ExactArgs(0),
	RunE:  versionRun,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Version is the module version when built with "go install url/tool@version", "(devel)" when
// built from a checkout.  It can also be set with -ldflags.
var Version = "unknown"

type buildVersion struct {
	Version    string    `json:"version" yaml:"version"`
	Revision   string    `json:"revision,omitempty" yaml:"revision,omitempty"`
	LastCommit time.Time `json:"lastCommit,omitempty" yaml:"lastCommit,omitempty"`
	Dirty      bool      `json:"dirty" yaml:"dirty"`
	GoVersion  string    `json:"goVersion" yaml:"goVersion"`
}

func readBuildVersion() (buildVersion, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildVersion{}, fmt.Errorf("version: could not read build info")
	}

	v := buildVersion{Version: Version, GoVersion: info.GoVersion}
	if v.Version == "unknown" {
		v.Version = info.Main.Version
	}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			v.Revision = kv.Value
		case "vcs.time":
			v.LastCommit, _ = time.Parse(time.RFC3339, kv.Value)
		case "vcs.modified":
			v.Dirty = kv.Value == "true"
		}
	}
	return v, nil
}

// Short renders e.g. "v1.2.0-rev-abc123-dirty", or "devel" when there's nothing to go on.
func (v buildVersion) Short() string {
	parts := make([]string, 0, 4)
	if v.Version != "" && v.Version != "unknown" && v.Version != "(devel)" {
		parts = append(parts, v.Version)
	}
	if v.Revision != "" {
		parts = append(parts, "rev", v.Revision)
		if v.Dirty {
			parts = append(parts, "dirty")
		}
	}
	if len(parts) == 0 {
		return "devel"
	}
	return strings.Join(parts, "-")
}

func versionRun(cmd *cobra.Command, args []string) error {
	v, err := readBuildVersion()
	if err != nil {
		return err
	}

	return render(os.Stdout, v, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "confluence-labels version %s (%s)\n", v.Short(), v.GoVersion)
	})
}
