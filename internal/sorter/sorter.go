package sorter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prabalesh/proctop/internal/models"
)

// Criterion selects the ordering of the process table.
type Criterion int

const (
	ByCPU Criterion = iota
	ByMemory
	ByPID
	ByPriority
)

var names = [...]string{"CPU", "Memory", "PID", "Priority"}

// ErrUnknownCriterion is returned by ParseCriterion.
var ErrUnknownCriterion = errors.New("sorter: unknown criterion")

func (c Criterion) String() string {
	if c < 0 || int(c) >= len(names) {
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
	return names[c]
}

// ParseCriterion accepts the criterion names case-insensitively, plus "mem".
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return ByCPU, nil
	case "memory", "mem":
		return ByMemory, nil
	case "pid":
		return ByPID, nil
	case "priority", "prio":
		return ByPriority, nil
	}
	return ByCPU, fmt.Errorf("%w: %q", ErrUnknownCriterion, s)
}

// Compare returns the comparator for c. Percentages are finite by
// construction, so cmp.Compare gives a total order.
func (c Criterion) Compare(a, b *models.Process) int {
	switch c {
	case ByMemory:
		return cmp.Compare(b.MemPercent, a.MemPercent)
	case ByPID:
		return cmp.Compare(a.PID, b.PID)
	case ByPriority:
		return cmp.Compare(b.Priority, a.Priority)
	default:
		return cmp.Compare(b.CPUPercent, a.CPUPercent)
	}
}

// Sort orders procs in place. Equal elements keep their relative order.
func Sort(procs []*models.Process, c Criterion) {
	slices.SortStableFunc(procs, c.Compare)
}
