package metrics

import (
	"fmt"
	"math"

	"github.com/prabalesh/proctop/internal/models"
)

// DefaultTickRate is used when the OS does not report its clock tick rate.
const DefaultTickRate = 100

// Calculator derives the per-process metrics of one refresh cycle. It holds no
// state between processes; every field is an input of the cycle.
type Calculator struct {
	TickRate   int64
	PageSize   int64
	TotalMemKB uint64
	Uptime     float64
}

func (c Calculator) tickRate() float64 {
	if c.TickRate <= 0 {
		return DefaultTickRate
	}
	return float64(c.TickRate)
}

// Elapsed returns the seconds a process has existed.
func (c Calculator) Elapsed(startTick uint64) float64 {
	return c.Uptime - float64(startTick)/c.tickRate()
}

// CPUPercent is the average CPU share over the process lifetime. It is 0 when
// the elapsed time is not positive.
func (c Calculator) CPUPercent(cpuTicks, startTick uint64) float64 {
	elapsed := c.Elapsed(startTick)
	if elapsed <= 0 {
		return 0
	}
	return finite(float64(cpuTicks) / c.tickRate() / elapsed * 100)
}

// MemPercent is the resident size relative to total system memory.
func (c Calculator) MemPercent(rssPages uint64) float64 {
	if c.TotalMemKB == 0 || c.PageSize <= 0 {
		return 0
	}
	pageKB := float64(c.PageSize) / 1024
	return finite(float64(rssPages) * pageKB / float64(c.TotalMemKB) * 100)
}

// CPUTime formats accumulated ticks at the calculator's tick rate.
func (c Calculator) CPUTime(cpuTicks uint64) string {
	return FormatCPUTime(cpuTicks, int64(c.tickRate()))
}

// Apply fills the derived fields of p.
func (c Calculator) Apply(p *models.Process) {
	p.CPUPercent = c.CPUPercent(p.CPUTicks, p.StartTick)
	p.MemPercent = c.MemPercent(p.RSSPages)
	p.CPUTime = c.CPUTime(p.CPUTicks)
}

// FormatCPUTime renders ticks as HH:MM:SS. Hours are not wrapped.
func FormatCPUTime(ticks uint64, tickRate int64) string {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	total := ticks / uint64(tickRate)
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}
