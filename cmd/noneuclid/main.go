// noneuclid - walk through non-Euclidean spaces in your terminal.
//
// Tunnels that are longer inside than out, rooms that loop around a pillar
// and doors that change your size, rendered by recursing through portals.
//
// Controls:
//
//	W/A/S/D     - Walk
//	Mouse       - Look around
//	Arrow keys  - Turn
//	1-6         - Switch level
//	R           - Restart level
//	?           - Toggle HUD overlay (FPS, level, scale, render passes)
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/levels"
	"github.com/taigrr/noneuclid/pkg/world"
)

var version = "dev"

// options are the flags shared by every command.
type options struct {
	level       string
	fps         int
	configPath  string
	recursion   int
	noOcclusion bool
	assetsDir   string
	logFile     string
	logLevel    string
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version), fang.WithNotifySignal(os.Interrupt)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "noneuclid",
		Short: "Walk through non-Euclidean spaces in your terminal",
		Long: "noneuclid renders small worlds joined by portals. Walking through a portal\n" +
			"carries you to its partner, possibly rotated or resized.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), o)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&o.level, "level", "l", "tunnels", "level to load ("+strings.Join(levels.Names(), ", ")+")")
	f.IntVar(&o.fps, "fps", 60, "target frames per second")
	f.StringVarP(&o.configPath, "config", "c", "", "JSON file with engine settings")
	f.IntVar(&o.recursion, "recursion", -1, "portal recursion depth (default from config)")
	f.BoolVar(&o.noOcclusion, "no-occlusion", false, "draw every portal, even hidden ones")
	f.StringVar(&o.assetsDir, "assets", "", "directory searched for meshes and textures before the built-ins")
	f.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newPlayCmd(o), newSnapshotCmd(o), newLevelsCmd())
	return root
}

func newPlayCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd.Context(), o)
		},
	}
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the built-in levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printLevels(cmd.OutOrStdout())
		},
	}
}

// newLogger opens the log destination. fallback is used when no log file
// is given.
func (o *options) newLogger(fallback io.Writer) (*log.Logger, func() error, error) {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	w, closeFn := fallback, func() error { return nil }
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "noneuclid",
		ReportTimestamp: o.logFile != "",
	})
	return logger, closeFn, nil
}

// config reads the config file, if any, and applies flag overrides.
func (o *options) config() (world.Config, error) {
	cfg := world.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = world.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.recursion >= 0 {
		cfg.MaxRecursion = o.recursion
	}
	if o.noOcclusion {
		cfg.Occlusion = false
	}
	return cfg, cfg.Validate()
}

// newEngine builds an engine with the requested level loaded.
func (o *options) newEngine(logger *log.Logger) (*world.Engine, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	scene, ok := levels.ByName(o.level)
	if !ok {
		return nil, fmt.Errorf("unknown level %q (have %s)", o.level, strings.Join(levels.Names(), ", "))
	}
	lib := assets.NewLibrary(assets.EvictOnRelease, assets.WithDir(o.assetsDir), assets.WithLogger(logger))
	engine, err := world.NewEngine(cfg, lib, world.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := engine.Load(scene); err != nil {
		return nil, err
	}
	return engine, nil
}
