//go:build linux

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prabalesh/proctop/internal/engine"
	"github.com/prabalesh/proctop/internal/view"
)

func newSnapshotCmd(o *opts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print load average, memory, uptime and the process table once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd, *o)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			// Signal delivery and the kernel log are interactive features.
			cfg.CrashCommand = ""
			eng, err := newEngine(*o, cfg, log)
			if err != nil {
				return err
			}
			frame, err := eng.Refresh(cmd.Context(), view.New(cfg.Rows, cfg.Criterion()))
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), cmd.ErrOrStderr(), frame, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most this many processes (0 = all)")
	return cmd
}

// printSnapshot writes the report to w. A failed load or memory reading is
// reported on errW, since the zero values printed in its place are not real.
func printSnapshot(w, errW io.Writer, f *engine.Frame, limit int) error {
	if f.SystemErr != nil {
		fmt.Fprintf(errW, "warning: load and memory unavailable: %v\n", f.SystemErr)
	}
	sys := f.System
	fmt.Fprintf(w, "Load Average: 1 min: %.2f, 5 min: %.2f, 15 min: %.2f\n",
		sys.Load.One, sys.Load.Five, sys.Load.Fifteen)
	fmt.Fprintf(w, "Memory Usage: %d kB total, %d kB free, %d kB used\n",
		sys.Memory.TotalKB, sys.Memory.FreeKB, sys.Memory.UsedKB())
	fmt.Fprintf(w, "System Uptime: %d seconds\n", int64(sys.Uptime.Seconds()))
	fmt.Fprintf(w, "Tasks: %d total, %d running, %d sleeping, %d stopped, %d zombie\n\n",
		f.Counts.Total, f.Counts.Running, f.Counts.Sleeping, f.Counts.Stopped, f.Counts.Zombie)

	rows := f.Rows
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tUSER\tS\tPRI\tNI\tCPU%\tMEM%\tTIME\tCOMMAND")
	for _, p := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.2f\t%.2f\t%s\t%s\n",
			p.PID, p.User, p.State, p.Priority, p.Nice, p.CPUPercent, p.MemPercent, p.CPUTime, p.Command)
	}
	return tw.Flush()
}
