// Package cli implements the blockfall command-line interface.
//
// # Commands
//
//   - play: interactive terminal board (bubbletea)
//   - simulate: run a scripted action string headless and print the result
//
// All commands accept --config (-c) for a TOML settings file and --verbose
// (-v) for debug logging. Loggers travel through the command context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/plus3/blockfall/config"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	verbose    bool
	configPath string
}

// loadConfig returns the configured settings, or the defaults when no file was given.
func (o *globalOptions) loadConfig() (config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

func (o *globalOptions) level(cfg config.Config) charmlog.Level {
	if o.verbose {
		return charmlog.DebugLevel
	}
	return cfg.Level()
}

// Execute runs the blockfall CLI and returns an error if any command fails.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "blockfall",
		Short:        "A falling-block board with strict rotation rules",
		Long:         `blockfall runs a falling-block puzzle board in the terminal. Rotations and moves are validated against the grid and refused, without side effects, when they would leave the board or overlap settled cells.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("blockfall %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newSimulateCmd(opts))

	return root
}
