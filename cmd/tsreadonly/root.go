package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frroossst/readonlylint/config"
	"github.com/frroossst/readonlylint/internal/logging"
)

// These will be set by ldflags during build
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitViolations = 1
	exitFailure    = 2
)

// exitError ends the process with code. err, when set, is printed first.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// app is the state shared by the subcommands of one invocation.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("READONLYLINT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "tsreadonly",
		Short: "Check TypeScript declarations for mutable types",
		Long: `tsreadonly classifies the declared types of parameters, return types,
variables and properties in TypeScript files and reports those less immutable
than the configured level.

Configuration is read from --config, READONLYLINT_CONFIG, or the nearest
.readonlylint.{yaml,yml,toml,json} above the working directory.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
				return &exitError{code: exitFailure, err: fmt.Errorf("--log-level: %w", err)}
			}
			logging.SetLevel(level)
			logging.SetDestination(a.v.GetString("log"))
			return nil
		},
	}
	root.SetVersionTemplate("tsreadonly {{.Version}}\n")
	root.PersistentFlags().String("config", "", "configuration file (yaml, toml or json)")
	root.PersistentFlags().String("log", "", `diagnostic log: "stderr" or a file path`)
	root.PersistentFlags().String("log-level", "info", "minimum level logged: debug, info, warn or error")
	for _, name := range []string{"config", "log", "log-level"} {
		_ = a.v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}

	root.AddCommand(a.checkCmd(), a.configCmd(), a.classifyCmd())
	return root
}

// loadConfig returns the effective configuration and the file it came
// from, "" for the defaults.
func (a *app) loadConfig() (*config.File, string, error) {
	path := a.v.GetString("config")
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		path = config.Discover(wd)
	}
	if path == "" {
		return config.Default(), "", nil
	}
	f, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

func buildVersion() string {
	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if commit != "unknown" {
		v += " (" + commit + ")"
	}
	return v
}
