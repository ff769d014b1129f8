//go:build linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/prabalesh/proctop/internal/collector"
	"github.com/prabalesh/proctop/internal/config"
	"github.com/prabalesh/proctop/internal/control"
	"github.com/prabalesh/proctop/internal/crash"
	"github.com/prabalesh/proctop/internal/engine"
	"github.com/prabalesh/proctop/internal/ui"
	"github.com/prabalesh/proctop/internal/view"
)

type opts struct {
	configPath   string
	sort         string
	rows         int
	logFile      string
	debug        bool
	crashCommand string
	procRoot     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o opts

	root := &cobra.Command{
		Use:   "proctop",
		Short: "Interactive terminal process monitor",
		Long: `proctop refreshes a table of running processes every second together with
load averages, memory usage and uptime. It can follow segfault and out-of-memory
reports from the kernel log, draw the process tree around a selected process and
terminate, suspend or resume the selected process.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o)
		},
	}

	defaultPath, err := config.Path()
	if err != nil {
		defaultPath = ""
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", defaultPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&o.sort, "sort", "", "initial sort: cpu, mem, pid or priority")
	root.PersistentFlags().StringVar(&o.procRoot, "proc", collector.DefaultProcRoot, "procfs mount point")
	root.PersistentFlags().StringVar(&o.logFile, "log-file", "", "write logs to this file")
	root.PersistentFlags().BoolVar(&o.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().IntVar(&o.rows, "rows", 0, "visible table rows before the first resize")
	root.PersistentFlags().StringVar(&o.crashCommand, "crash-command", "", "command that prints the kernel log")

	root.AddCommand(newSnapshotCmd(&o))
	root.AddCommand(newWriteConfigCmd(&o))
	return root
}

// load merges the config file with the flags that were set explicitly.
func load(cmd *cobra.Command, o opts) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("sort") {
		cfg.Sort = o.sort
	}
	if flags.Changed("rows") {
		cfg.Rows = o.rows
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("crash-command") {
		cfg.CrashCommand = o.crashCommand
	}
	return cfg, cfg.Validate()
}

// newLogger opens the log file. The terminal belongs to the UI, so nothing is
// written to stderr while it runs.
func newLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func newEngine(o opts, cfg config.Config, log *slog.Logger) (*engine.Engine, error) {
	source := collector.NewStatsCollector(
		collector.WithProcRoot(o.procRoot),
		collector.WithLogger(log),
	)
	engineOpts := []engine.Option{
		engine.WithLogger(log),
		engine.WithSignaler(control.NewUnix()),
	}
	if cfg.CrashCommand != "" {
		engineOpts = append(engineOpts, engine.WithCrashFeed(&crash.Feed{
			Source:  crash.NewCommandSource(cfg.CrashCommand),
			Markers: cfg.CrashMarkers,
		}))
	}
	return engine.New(source, engineOpts...)
}

func run(cmd *cobra.Command, o opts) error {
	cfg, err := load(cmd, o)
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	eng, err := newEngine(o, cfg, log)
	if err != nil {
		return err
	}
	log.Info("starting", "boot", eng.TimeBase().BootTime(), "sort", cfg.Sort, "rows", cfg.Rows)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app := ui.NewApp(ctx, eng, view.New(cfg.Rows, cfg.Criterion()), log)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	log.Info("exiting")
	return nil
}
