/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-labels/confluence"
	"github.com/toothbrush/confluence-labels/labels"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
	"gopkg.in/yaml.v2"
)

const defaultConfig = "~/.config/confluence-labels.yaml"

var (
	// Store the result of binding cobra flags
	Config       string
	ConfigActual string
	Debug        bool
	LogJSON      bool

	// Command to run to retrieve API Personal Access Token
	AuthTokenCmd []string

	AuthUsername       string
	ConfluenceInstance string
	BaseURL            string

	Space         string
	FallbackSpace string
	PageSize      int
	Timeout       time.Duration
	Output        string

	WithVCR     bool
	VCRCassette string

	ParsedConfig YamlConfig
	configFound  bool

	logger hclog.Logger = hclog.NewNullLogger()
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "confluence-labels",
	Short: "Tidy up the labels in a Confluence space",
	Long: `
Labels in a Confluence space tend to sprawl: typos, near-duplicates, labels nobody uses any more.
This tool lists every label in use with how often it appears on pages and blog posts, and lets you
add, delete, or merge labels in bulk.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("confluence-labels: failed to initialise config: %w", err)
		}

		logger = newLogger()
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: "+defaultConfig+", respects CONFLUENCE_LABELS_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().BoolVar(&LogJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command to retrieve Atlassian auth token")
	rootCmd.PersistentFlags().StringVar(&AuthUsername, "auth-username", "", "your Atlassian username (leave empty to send the token as a bearer token)")
	rootCmd.PersistentFlags().StringVar(&ConfluenceInstance, "confluence-instance", "", "your Atlassian ORG name, e.g. ORG in ORG.atlassian.net")
	rootCmd.PersistentFlags().StringVar(&BaseURL, "base-url", "", "Confluence base URL, overrides --confluence-instance (e.g. https://wiki.example.com)")
	rootCmd.PersistentFlags().StringVar(&Space, "space", "", "space key to work on (default: first space Confluence lists)")
	rootCmd.PersistentFlags().StringVar(&FallbackSpace, "fallback-space", labels.DefaultFallbackSpace, "space key to use when no space is given and none can be listed")
	rootCmd.PersistentFlags().IntVar(&PageSize, "page-size", labels.DefaultPageSize, "items per Confluence request")
	rootCmd.PersistentFlags().DurationVar(&Timeout, "timeout", 0, "give up after this long (0 means never)")
	rootCmd.PersistentFlags().StringVarP(&Output, "output", "o", "table", "output format: table, yaml or json")
	rootCmd.PersistentFlags().BoolVar(&WithVCR, "with-vcr", false, "use go-vcr to record and replay Confluence responses")
	rootCmd.PersistentFlags().StringVar(&VCRCassette, "vcr-cassette", "fixtures/confluence-labels", "where --with-vcr keeps its recordings")
}

func initializeConfig(cmd *cobra.Command) error {
	explicit := true
	configFound = false
	if Config == "" {
		// Did the user provide an ENV?
		envConfig := os.Getenv("CONFLUENCE_LABELS_CONFIG")
		if envConfig != "" {
			Config = envConfig
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = defaultConfig
			explicit = false
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("confluence-labels: unable to expand homedir: %w", err)
	}
	ConfigActual = config

	if _, err := os.Stat(ConfigActual); errors.Is(err, os.ErrNotExist) {
		if !explicit {
			// flags only, then.
			return nil
		}
		fmt.Fprintf(os.Stderr, "Couldn't read config file %s, does it exist?  Override with --config.\n", ConfigActual)
		return fmt.Errorf("confluence-labels: specified config file does not exist: %w", err)
	}

	yamlFile, err := os.ReadFile(ConfigActual)
	if err != nil {
		return fmt.Errorf("confluence-labels: error reading config file: %w", err)
	}
	configFound = true

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("confluence-labels: issue parsing config file: %w", err)
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("confluence-labels: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	Debug      *bool `yaml:"debug"`
	LogJSON    *bool `yaml:"log-json"`
	WithVCR    *bool `yaml:"with-vcr"`
	KeepGoing  *bool `yaml:"keep-going"`
	NoProgress *bool `yaml:"no-progress"`
	Workers    *int  `yaml:"workers"`
	PageSize   *int  `yaml:"page-size"`

	ConfluenceInstance string   `yaml:"confluence-instance"`
	BaseURL            string   `yaml:"base-url"`
	AuthUsername       string   `yaml:"auth-username"`
	AuthTokenCmd       []string `yaml:"auth-token-cmd"`
	Space              string   `yaml:"space"`
	FallbackSpace      string   `yaml:"fallback-space"`
	Output             string   `yaml:"output"`
	Timeout            string   `yaml:"timeout"`
	VCRCassette        string   `yaml:"vcr-cassette"`
	Listen             string   `yaml:"listen"`
	RequestTimeout     string   `yaml:"request-timeout"`
}

// Fill in each flag the user didn't set on the command line from the config file.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("confluence-labels: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// the flag is unknown to this command, e.g. `list spaces` has no `keep-going`.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			// YamlConfig uses pointers for bools and ints, so we can tell unset from zero.
			p := reflect.ValueOf(field.Value())
			if p.IsNil() {
				continue
			}
			if err := cmd.Flags().Set(key, fmt.Sprintf("%v", p.Elem().Interface())); err != nil {
				return fmt.Errorf("confluence-labels: bad value for %s: %w", key, err)
			}

		case reflect.String:
			s, ok := field.Value().(string)
			if !ok {
				return fmt.Errorf("confluence-labels: found unrecognised field: %+v", field.Name())
			}
			if s != "" {
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("confluence-labels: bad value for %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("confluence-labels: found unrecognised field: %+v", field.Name())
			}
			for _, s := range ss {
				// yes, repeatedly calling Set() appends to the slice...
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("confluence-labels: bad value for %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("confluence-labels: found unrecognised field: %+v", field.Name())
		}
	}

	return nil
}

// commandContext applies --timeout to the command's context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if Timeout > 0 {
		return context.WithTimeout(cmd.Context(), Timeout)
	}
	return context.WithCancel(cmd.Context())
}

func authToken() (string, error) {
	if len(AuthTokenCmd) < 1 {
		return "", fmt.Errorf("please provide --auth-token-cmd")
	}

	tokenCmdOutput, err := exec.Command(AuthTokenCmd[0], AuthTokenCmd[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("couldn't execute auth-token-cmd '%v': %w", AuthTokenCmd, err)
	}

	return strings.Split(string(tokenCmdOutput), "\n")[0], nil
}

// newAPI builds a Confluence client from the flags.  Call the returned func when done with it.
func newAPI() (*confluence.API, func(), error) {
	token, err := authToken()
	if err != nil {
		return nil, nil, err
	}

	var api *confluence.API
	if BaseURL != "" {
		api, err = confluence.NewAPIForURL(BaseURL, AuthUsername, token)
	} else {
		api, err = confluence.NewAPI(ConfluenceInstance, AuthUsername, token)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't instantiate Confluence API: %w", err)
	}

	if !WithVCR {
		return api, func() {}, nil
	}

	cassettePath, err := homedir.Expand(VCRCassette)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't expand homedir: %w", err)
	}

	// set up VCR recordings.
	opts := &recorder.Options{
		CassetteName:       cassettePath,
		Mode:               recorder.ModeReplayWithNewEpisodes,
		SkipRequestLatency: true,
		RealTransport:      http.DefaultTransport,
	}
	r, err := recorder.NewWithOptions(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't set up go-vcr recording: %w", err)
	}

	// Add a hook which removes Authorization headers from all requests
	hook := func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	}
	r.AddHook(hook, recorder.AfterCaptureHook)
	r.SetReplayableInteractions(true)

	api.Client = r.GetDefaultClient()
	logger.Debug("recording Confluence traffic", "cassette", cassettePath)

	return api, func() {
		if err := r.Stop(); err != nil {
			logger.Warn("couldn't save go-vcr cassette", "error", err)
		}
	}, nil
}

func newOrganizer(api labels.ContentAPI, opts labels.Options) *labels.Organizer {
	opts.FallbackSpace = FallbackSpace
	opts.PageSize = PageSize
	opts.Logger = logger
	return labels.NewOrganizer(api, opts)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("confluence-labels: execution error: %w", err)
	}

	return nil
}
