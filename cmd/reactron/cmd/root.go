// Package cmd implements the reactron CLI commands.
//
// Settings are layered with clear precedence:
//  1. Command-line flags (--budget, --addr, ...) - highest priority
//  2. REACTRON_<SECTION>_<OPTION> environment variables
//  3. reactron.yaml (or the file named by --config / REACTRON_CONFIG_FILE)
//  4. Built-in defaults - lowest priority
package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-drift/reactron/cmd/reactron/internal/config"
	"github.com/go-drift/reactron/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REACTRON"

type cli struct {
	v       *viper.Viper
	cfgFile string
	dir     string

	settings *config.Resolved
	logger   *slog.Logger
}

// NewRootCommand builds the command tree. Each call has its own settings
// state.
func NewRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "reactron",
		Short: "Reactron - a fiber reconciliation engine with a DOM host",
		Long: `Reactron renders component trees through an incremental fiber
reconciler into an HTML document, one time-budgeted frame at a time.

The bundled demo is a todo list that exercises every prop and listener
kind the DOM host supports.

Quick Start:
  reactron run                  Play the scripted demo and print each frame
  reactron serve                Serve the demo live over a websocket
  reactron tree --play          Print the committed fiber tree as JSON
  reactron config               Print the resolved settings`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is reactron.yaml in the project root, can also use REACTRON_CONFIG_FILE)")
	flags.StringVar(&c.dir, "dir", "", "project directory (default: nearest directory with a go.mod)")
	flags.StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (text, json)")
	flags.Duration("budget", config.DefaultBudget, "time budget for units of work per frame (0 = unbounded)")
	flags.Int("max-steps", 0, "units of work per frame (0 = unbounded)")
	flags.Int("trace-samples", config.DefaultTraceSamples, "frames kept in the frame trace")
	flags.Duration("slow-frame", 0, "frames longer than this count as slow (0 = 16ms)")
	flags.String("name", "", "app name shown as the demo title")
	c.bind(flags, map[string]string{
		config.KeyLogLevel:     "log-level",
		config.KeyLogFormat:    "log-format",
		config.KeyBudget:       "budget",
		config.KeyMaxSteps:     "max-steps",
		config.KeyTraceSamples: "trace-samples",
		config.KeySlowFrame:    "slow-frame",
		config.KeyAppName:      "name",
	})

	root.AddCommand(
		c.runCommand(),
		c.serveCommand(),
		c.treeCommand(),
		c.configCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func (c *cli) bind(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		// Lookup only fails for undefined flags, which is a programming error.
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// setup resolves settings and installs logging before any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	dir := c.dir
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return err
		}
		dir = root
	}

	cfgFile := c.cfgFile
	if cfgFile == "" {
		cfgFile = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	var (
		file *config.Config
		err  error
	)
	if cfgFile != "" {
		file, err = config.LoadFile(cfgFile)
	} else {
		file, err = config.LoadOptional(dir)
	}
	if err != nil {
		return err
	}

	settings, err := config.ResolveConfig(dir, file)
	if err != nil {
		return err
	}
	for key, value := range settings.Settings() {
		c.v.SetDefault(key, value)
	}
	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()
	if err := settings.Apply(c.v.GetString); err != nil {
		return err
	}

	c.settings = settings
	c.logger = newLogger(cmd.ErrOrStderr(), settings.LogLevel, settings.LogFormat)
	errors.SetHandler(&errors.LogHandler{Logger: c.logger, Verbose: settings.LogLevel == "debug"})
	c.logger.Debug("settings resolved", slog.String("root", settings.Root), slog.String("app", settings.AppName))
	return nil
}
