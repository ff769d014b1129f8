package models

import "time"

// LoadAverage holds the 1, 5 and 15 minute run-queue averages.
type LoadAverage struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

// MemoryStats is kept in KiB, the unit /proc/meminfo reports.
type MemoryStats struct {
	TotalKB   uint64 `json:"total_kb"`
	FreeKB    uint64 `json:"free_kb"`
	BuffersKB uint64 `json:"buffers_kb"`
	CachedKB  uint64 `json:"cached_kb"`
}

// RawUsedKB is total - free - buffers - cached. It goes negative when the
// counters were read inconsistently.
func (m MemoryStats) RawUsedKB() int64 {
	return int64(m.TotalKB) - int64(m.FreeKB) - int64(m.BuffersKB) - int64(m.CachedKB)
}

// UsedKB is RawUsedKB clamped at zero.
func (m MemoryStats) UsedKB() uint64 {
	used := m.RawUsedKB()
	if used < 0 {
		return 0
	}
	return uint64(used)
}

// UsagePercent is used memory relative to total, 0 when total is unknown.
func (m MemoryStats) UsagePercent() float64 {
	if m.TotalKB == 0 {
		return 0
	}
	return float64(m.UsedKB()) / float64(m.TotalKB) * 100
}

func (m MemoryStats) TotalMiB() float64 { return float64(m.TotalKB) / 1024 }
func (m MemoryStats) FreeMiB() float64  { return float64(m.FreeKB) / 1024 }
func (m MemoryStats) UsedMiB() float64  { return float64(m.UsedKB()) / 1024 }

// SystemSnapshot is the host-wide part of a refresh cycle.
type SystemSnapshot struct {
	Load   LoadAverage   `json:"load"`
	Memory MemoryStats   `json:"memory"`
	Uptime time.Duration `json:"uptime"`
}
