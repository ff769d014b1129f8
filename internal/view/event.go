package view

import (
	"github.com/prabalesh/proctop/internal/control"
	"github.com/prabalesh/proctop/internal/sorter"
)

// Event is a recognised key press.
type Event int

const (
	None Event = iota
	Quit
	Up
	Down
	Left
	Right
	SortCPU
	SortMemory
	SortPID
	SortPriority
	Terminate
	Suspend
	Resume
	FocusTree
)

var sortEvents = map[Event]sorter.Criterion{
	SortCPU:      sorter.ByCPU,
	SortMemory:   sorter.ByMemory,
	SortPID:      sorter.ByPID,
	SortPriority: sorter.ByPriority,
}

var signalEvents = map[Event]control.Kind{
	Terminate: control.Terminate,
	Suspend:   control.Suspend,
	Resume:    control.Resume,
}

// Apply feeds ev to the state machine. rows are the pids of the process table
// in display order; they resolve the selection for focus and signal events.
func (s State) Apply(ev Event, rows []int) (State, Effect) {
	switch ev {
	case Quit:
		return s, Effect{Quit: true}

	case Left:
		return s.switchMode(s.Mode.Prev()), Effect{}

	case Right:
		return s.switchMode(s.Mode.Next()), Effect{}

	case Up, Down:
		if s.Mode != Processes {
			return s, Effect{}
		}
		step := 1
		if ev == Up {
			step = -1
		}
		s.Selected = clamp(s.Selected+step, 0, len(rows)-1)
		return s.scrollToSelection(), Effect{}

	case SortCPU, SortMemory, SortPID, SortPriority:
		s.Sort = sortEvents[ev]
		return s, Effect{}

	case FocusTree:
		if s.Mode != Processes {
			return s, Effect{}
		}
		pid, ok := s.SelectedPID(rows)
		if !ok {
			return s, Effect{}
		}
		s.FocusPID = pid
		s.Mode = ProcessTree
		return s, Effect{}

	case Terminate, Suspend, Resume:
		if s.Mode != Processes {
			return s, Effect{}
		}
		pid, ok := s.SelectedPID(rows)
		if !ok {
			return s, Effect{}
		}
		return s, Effect{Signal: &SignalRequest{PID: pid, Kind: signalEvents[ev]}}
	}
	return s, Effect{}
}

func (s State) switchMode(m Mode) State {
	s.Mode = m
	if m != ProcessTree {
		s.FocusPID = 0
	}
	return s
}
