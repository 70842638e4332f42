package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/websteps/internal/config"
	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/output"
	"github.com/mj1618/websteps/internal/version"
	"github.com/spf13/cobra"

	// Drivers register themselves with platform.Open.
	_ "github.com/mj1618/websteps/internal/platform/chrome"
	_ "github.com/mj1618/websteps/internal/platform/static"
)

// settings is the resolved configuration for the running command.
var settings *config.Config

var rootCmd = &cobra.Command{
	Use:   "websteps",
	Short: "Drive a web browser with plain-English steps",
	Long: `websteps runs sentences like 'I fill in "Email" with "a@b.c"' against a
browser session, from YAML scenario files or as MCP tools for agents.

Settings are read from --config (or websteps.yaml in the working directory),
then WEBSTEPS_* environment variables, then flags.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default: ./"+config.DefaultFile+" if present)")
	pf.String("format", "yaml", "Output format: yaml, json")
	pf.String("driver", "", "Browser driver: chrome, static")
	pf.String("base-url", "", "Base URL for 'site page' steps")
	pf.Bool("headless", true, "Run the browser without a window")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text, json")
	rootCmd.PersistentPreRunE = loadSettings
}

// loadSettings resolves the config file and environment, then applies flags
// the user set explicitly.
func loadSettings(cmd *cobra.Command, args []string) error {
	// Use the root persistent flags directly to avoid conflicts with
	// subcommand local flags (e.g. screenshot --format png/jpg).
	pf := rootCmd.PersistentFlags()

	path, _ := pf.GetString("config")
	cfg, err := config.Resolve(path)
	if err != nil {
		return err
	}

	strFlags := map[string]*string{
		"driver":     &cfg.Driver,
		"base-url":   &cfg.BaseURL,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	for name, field := range strFlags {
		if pf.Changed(name) {
			*field, _ = pf.GetString(name)
		}
	}
	if pf.Changed("headless") {
		cfg.Headless, _ = pf.GetBool("headless")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	format, _ := pf.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.Stdout = cmd.OutOrStdout()
	if prettyFlag := cmd.Flags().Lookup("pretty"); prettyFlag != nil {
		if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}
	}

	settings = cfg
	return nil
}
