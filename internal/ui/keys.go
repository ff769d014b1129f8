package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prabalesh/proctop/internal/view"
)

type keyMap struct {
	Quit         key.Binding
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	SortCPU      key.Binding
	SortMemory   key.Binding
	SortPID      key.Binding
	SortPriority key.Binding
	Terminate    key.Binding
	Suspend      key.Binding
	Resume       key.Binding
	FocusTree    key.Binding

	// Display-only scrolling of the tree and crash views.
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Help     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev view")),
		Right:        key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next view")),
		SortCPU:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sort cpu")),
		SortMemory:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sort mem")),
		SortPID:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "sort pid")),
		SortPriority: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "sort priority")),
		Terminate:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "terminate")),
		Suspend:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suspend")),
		Resume:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		FocusTree:    key.NewBinding(key.WithKeys("t", "enter"), key.WithHelp("t/enter", "tree")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:          key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "top")),
		Bottom:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "bottom")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

// event translates a key press into a state machine event.
func (k keyMap) event(msg tea.KeyMsg) view.Event {
	switch {
	case key.Matches(msg, k.Quit):
		return view.Quit
	case key.Matches(msg, k.Up):
		return view.Up
	case key.Matches(msg, k.Down):
		return view.Down
	case key.Matches(msg, k.Left):
		return view.Left
	case key.Matches(msg, k.Right):
		return view.Right
	case key.Matches(msg, k.SortCPU):
		return view.SortCPU
	case key.Matches(msg, k.SortMemory):
		return view.SortMemory
	case key.Matches(msg, k.SortPID):
		return view.SortPID
	case key.Matches(msg, k.SortPriority):
		return view.SortPriority
	case key.Matches(msg, k.Terminate):
		return view.Terminate
	case key.Matches(msg, k.Suspend):
		return view.Suspend
	case key.Matches(msg, k.Resume):
		return view.Resume
	case key.Matches(msg, k.FocusTree):
		return view.FocusTree
	}
	return view.None
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.FocusTree, k.Terminate, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.SortCPU, k.SortMemory, k.SortPID, k.SortPriority},
		{k.Terminate, k.Suspend, k.Resume, k.FocusTree},
		{k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Help, k.Quit},
	}
}
