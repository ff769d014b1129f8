//go:build linux

package collector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/sys/unix"

	"github.com/prabalesh/proctop/internal/metrics"
	"github.com/prabalesh/proctop/internal/models"
)

// BootTime returns the boot time in seconds since the epoch from the btime
// line of <procRoot>/stat.
func (s *StatsCollector) BootTime() (uint64, error) {
	return readBootTime(filepath.Join(s.procRoot, "stat"))
}

func readBootTime(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("collector: boot time: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "btime ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		bootTime, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil || bootTime == 0 {
			break
		}
		return bootTime, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("collector: boot time: %w", err)
	}
	return 0, ErrNoBootTime
}

// ClockTicks returns the scheduler tick rate, falling back to 100 when
// sysconf cannot report it.
func ClockTicks() int64 {
	hz, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || hz <= 0 {
		return metrics.DefaultTickRate
	}
	return hz
}

// PageSize returns the memory page size in bytes.
func PageSize() int64 {
	return int64(unix.Getpagesize())
}

func hostLoadAverage(ctx context.Context) (models.LoadAverage, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return models.LoadAverage{}, err
	}
	return models.LoadAverage{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}, nil
}

func hostMemory(ctx context.Context) (models.MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MemoryStats{}, err
	}
	// gopsutil reports bytes; keep the meminfo unit.
	return models.MemoryStats{
		TotalKB:   vm.Total / 1024,
		FreeKB:    vm.Free / 1024,
		BuffersKB: vm.Buffers / 1024,
		CachedKB:  vm.Cached / 1024,
	}, nil
}
