// Package engine runs one refresh cycle of the monitor: it samples the OS,
// derives metrics, links the process tree, orders the table and applies
// keyboard events to the view state.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prabalesh/proctop/internal/control"
	"github.com/prabalesh/proctop/internal/crash"
	"github.com/prabalesh/proctop/internal/metrics"
	"github.com/prabalesh/proctop/internal/models"
	"github.com/prabalesh/proctop/internal/sorter"
	"github.com/prabalesh/proctop/internal/tree"
	"github.com/prabalesh/proctop/internal/view"
)

// Source is the OS information provider.
type Source interface {
	BootTime() (uint64, error)
	TickRate() int64
	PageSize() int64
	System(ctx context.Context) (models.SystemSnapshot, error)
	Processes(ctx context.Context) (models.ProcessList, error)
}

// Frame is everything computed in one cycle. It is not modified after Refresh
// returns it.
type Frame struct {
	System    models.SystemSnapshot
	SystemErr error
	Counts    models.ProcessList
	// Rows is the process table. It is sorted by the state's criterion in the
	// Processes view and ordered by pid otherwise.
	Rows     []*models.Process
	Tree     *tree.Tree
	Crashes  []string
	CrashErr error
}

// PIDs returns the pids of Rows in order.
func (f *Frame) PIDs() []int {
	if f == nil {
		return nil
	}
	pids := make([]int, len(f.Rows))
	for i, p := range f.Rows {
		pids[i] = p.PID
	}
	return pids
}

type Engine struct {
	source   Source
	timeBase *metrics.TimeBase
	feed     *crash.Feed
	signaler control.Signaler
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func WithCrashFeed(feed *crash.Feed) Option {
	return func(e *Engine) { e.feed = feed }
}

func WithSignaler(s control.Signaler) Option {
	return func(e *Engine) { e.signaler = s }
}

// New reads the boot time once; failing to do so is fatal.
func New(source Source, opts ...Option) (*Engine, error) {
	boot, err := source.BootTime()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{
		source:   source,
		timeBase: metrics.NewTimeBase(boot),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// TimeBase returns the engine's boot-time reference.
func (e *Engine) TimeBase() *metrics.TimeBase {
	return e.timeBase
}

// Refresh samples the OS and computes the frame for st. Only a failure to
// enumerate processes at all is returned as an error; load, memory and log
// failures are carried in the frame.
func (e *Engine) Refresh(ctx context.Context, st view.State) (*Frame, error) {
	uptime := e.timeBase.Uptime()

	sys, sysErr := e.source.System(ctx)
	if sysErr != nil {
		e.log.Warn("system snapshot failed", "err", sysErr)
	}
	sys.Uptime = e.timeBase.UptimeDuration()

	list, err := e.source.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: processes: %w", err)
	}

	calc := metrics.Calculator{
		TickRate:   e.source.TickRate(),
		PageSize:   e.source.PageSize(),
		TotalMemKB: sys.Memory.TotalKB,
		Uptime:     uptime,
	}
	byPID := make(map[int]*models.Process, len(list.Processes))
	for _, p := range list.Processes {
		calc.Apply(p)
		byPID[p.PID] = p
	}

	f := &Frame{
		System:    sys,
		SystemErr: sysErr,
		Counts:    list,
		Tree:      tree.Build(byPID),
		Rows:      list.Processes,
	}
	if st.Mode == view.Processes {
		sorter.Sort(f.Rows, st.Sort)
	} else {
		sorter.Sort(f.Rows, sorter.ByPID)
	}

	if st.Mode == view.CrashTracking {
		f.Crashes, f.CrashErr = e.readCrashes(ctx)
	}
	return f, nil
}

func (e *Engine) readCrashes(ctx context.Context) ([]string, error) {
	if e.feed == nil {
		return nil, nil
	}
	lines, err := e.feed.Read(ctx)
	if err != nil {
		e.log.Warn("kernel log unavailable", "err", err)
		return nil, err
	}
	return lines, nil
}

// Cycle refreshes and clamps the selection to the new table.
func (e *Engine) Cycle(ctx context.Context, st view.State) (view.State, *Frame, error) {
	f, err := e.Refresh(ctx, st)
	if err != nil {
		return st, nil, err
	}
	return st.Reconcile(len(f.Rows)), f, nil
}

// Outcome is the result of Step.
type Outcome struct {
	State view.State
	// Frame is nil when the refresh failed or the event was Quit.
	Frame   *Frame
	Quit    bool
	Message string
	Err     error
}

// Step applies ev against the table in prev, delivers a requested signal and
// runs the next cycle. Signal results are reported in Message and never alter
// the state.
func (e *Engine) Step(ctx context.Context, st view.State, prev *Frame, ev view.Event) Outcome {
	next, eff := st.Apply(ev, prev.PIDs())
	if eff.Quit {
		return Outcome{State: next, Quit: true}
	}

	var out Outcome
	if eff.Signal != nil {
		out.Message = e.deliver(*eff.Signal)
	}

	out.State, out.Frame, out.Err = e.Cycle(ctx, next)
	return out
}

func (e *Engine) deliver(req view.SignalRequest) string {
	if e.signaler == nil {
		return fmt.Sprintf("cannot %s %d: process control unavailable", req.Kind, req.PID)
	}
	if err := e.signaler.Send(req.PID, req.Kind); err != nil {
		e.log.Info("signal failed", "pid", req.PID, "kind", req.Kind.String(), "err", err)
		return fmt.Sprintf("%s %d failed: %v", req.Kind, req.PID, err)
	}
	e.log.Info("signal sent", "pid", req.PID, "kind", req.Kind.String())
	return fmt.Sprintf("sent %s to %d", req.Kind, req.PID)
}
