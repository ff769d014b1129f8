//go:build linux

package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shirou/gopsutil/v3/common"

	"github.com/prabalesh/proctop/internal/models"
)

// DefaultProcRoot is where procfs is normally mounted.
const DefaultProcRoot = "/proc"

// StatsCollector reads host and process state from procfs and the system
// libraries. It is the OS information source of the monitor.
type StatsCollector struct {
	procRoot string
	tickRate int64
	pageSize int64
	users    *UserCache
	log      *slog.Logger

	loadAvg func(ctx context.Context) (models.LoadAverage, error)
	memInfo func(ctx context.Context) (models.MemoryStats, error)
}

// Option configures a StatsCollector.
type Option func(*StatsCollector)

// WithProcRoot reads process records from root instead of /proc.
func WithProcRoot(root string) Option {
	return func(s *StatsCollector) { s.procRoot = root }
}

// WithLogger sets the logger for dropped records and degraded readings.
func WithLogger(log *slog.Logger) Option {
	return func(s *StatsCollector) { s.log = log }
}

// WithUserCache replaces the uid lookup cache.
func WithUserCache(c *UserCache) Option {
	return func(s *StatsCollector) { s.users = c }
}

func NewStatsCollector(opts ...Option) *StatsCollector {
	s := &StatsCollector{
		procRoot: DefaultProcRoot,
		tickRate: ClockTicks(),
		pageSize: PageSize(),
		users:    NewUserCache(UserCacheDuration),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		loadAvg:  hostLoadAverage,
		memInfo:  hostMemory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StatsCollector) TickRate() int64 { return s.tickRate }
func (s *StatsCollector) PageSize() int64 { return s.pageSize }

// System returns load averages and memory counters. Uptime is left for the
// caller, which owns the time base.
func (s *StatsCollector) System(ctx context.Context) (models.SystemSnapshot, error) {
	ctx = s.hostContext(ctx)
	load, err := s.loadAvg(ctx)
	if err != nil {
		return models.SystemSnapshot{}, fmt.Errorf("collector: load average: %w", err)
	}
	mem, err := s.memInfo(ctx)
	if err != nil {
		return models.SystemSnapshot{}, fmt.Errorf("collector: memory: %w", err)
	}
	return models.SystemSnapshot{Load: load, Memory: mem}, nil
}

// hostContext points gopsutil at procRoot so load and memory come from the
// same procfs as the process records.
func (s *StatsCollector) hostContext(ctx context.Context) context.Context {
	if s.procRoot == DefaultProcRoot {
		return ctx
	}
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: s.procRoot})
}
