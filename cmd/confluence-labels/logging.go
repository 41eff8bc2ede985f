package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

func newLogger() hclog.Logger {
	level := hclog.Info
	if Debug {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "confluence-labels",
		Level:      level,
		Output:     os.Stderr,
		JSONFormat: LogJSON,
		Color:      hclog.AutoColor,
	})
}
