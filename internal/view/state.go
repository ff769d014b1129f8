// Package view holds the interactive state that survives refresh cycles and
// the transition function that applies keyboard events to it.
package view

import (
	"fmt"

	"github.com/prabalesh/proctop/internal/control"
	"github.com/prabalesh/proctop/internal/sorter"
)

// Mode is one display perspective. Modes form a cycle in declaration order.
type Mode int

const (
	Processes Mode = iota
	CrashTracking
	ProcessTree
	modeCount
)

var modeNames = [...]string{"Processes", "Crash Tracking", "Process Tree"}

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Modes lists every mode in cycle order.
func Modes() []Mode {
	return []Mode{Processes, CrashTracking, ProcessTree}
}

// Next returns the mode to the right, wrapping around.
func (m Mode) Next() Mode { return (m + 1) % modeCount }

// Prev returns the mode to the left, wrapping around.
func (m Mode) Prev() Mode { return (m + modeCount - 1) % modeCount }

// DefaultWindow is the number of table rows shown when none is configured.
const DefaultWindow = 20

// State is the long-lived view state. It is a value: Apply returns the next
// state and leaves the receiver untouched.
type State struct {
	Mode     Mode
	Sort     sorter.Criterion
	Selected int
	Offset   int
	// FocusPID is the process whose ancestry and descendants the tree view
	// shows; 0 means the whole forest.
	FocusPID int
	// WindowRows is the number of table rows visible at once.
	WindowRows int
}

// New returns the initial state.
func New(window int, sort sorter.Criterion) State {
	if window <= 0 {
		window = DefaultWindow
	}
	return State{Mode: Processes, Sort: sort, WindowRows: window}
}

// HasFocus reports whether a tree focus is set.
func (s State) HasFocus() bool {
	return s.FocusPID > 0
}

// BelowWindow reports whether the selection is past the last visible row.
func (s State) BelowWindow() bool {
	return s.Selected >= s.Offset+s.window()
}

// AboveWindow reports whether the selection is before the first visible row.
func (s State) AboveWindow() bool {
	return s.Selected < s.Offset
}

// Window returns the half-open row range [start, end) visible for n rows.
func (s State) Window(n int) (start, end int) {
	start = min(s.Offset, max(n-1, 0))
	end = min(start+s.window(), n)
	return start, end
}

// SelectedPID resolves the selection against the rows of the current table.
func (s State) SelectedPID(rows []int) (int, bool) {
	if s.Selected < 0 || s.Selected >= len(rows) {
		return 0, false
	}
	return rows[s.Selected], true
}

// Reconcile clamps selection and offset after the row count changed.
func (s State) Reconcile(n int) State {
	s.Selected = clamp(s.Selected, 0, n-1)
	s.Offset = min(s.Offset, max(n-s.window(), 0))
	return s.scrollToSelection()
}

// Resize changes the visible window size and keeps the selection in view.
func (s State) Resize(rows int) State {
	if rows <= 0 {
		rows = 1
	}
	s.WindowRows = rows
	return s.scrollToSelection()
}

func (s State) window() int {
	if s.WindowRows <= 0 {
		return DefaultWindow
	}
	return s.WindowRows
}

func (s State) scrollToSelection() State {
	switch {
	case s.AboveWindow():
		s.Offset = s.Selected
	case s.BelowWindow():
		s.Offset = s.Selected - s.window() + 1
	}
	s.Offset = max(s.Offset, 0)
	return s
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// SignalRequest asks the host to deliver a lifecycle signal.
type SignalRequest struct {
	PID  int
	Kind control.Kind
}

// Effect is what a transition asks of the host besides the new state.
type Effect struct {
	Quit   bool
	Signal *SignalRequest
}
