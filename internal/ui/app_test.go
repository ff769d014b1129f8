package ui

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabalesh/proctop/internal/control"
	"github.com/prabalesh/proctop/internal/engine"
	"github.com/prabalesh/proctop/internal/models"
	"github.com/prabalesh/proctop/internal/sorter"
	"github.com/prabalesh/proctop/internal/view"
)

type fakeSource struct{}

func (fakeSource) BootTime() (uint64, error) { return uint64(time.Now().Unix() - 1000), nil }
func (fakeSource) TickRate() int64            { return 100 }
func (fakeSource) PageSize() int64            { return 4096 }

func (fakeSource) System(context.Context) (models.SystemSnapshot, error) {
	return models.SystemSnapshot{
		Load:   models.LoadAverage{One: 0.5, Five: 0.25, Fifteen: 0.1},
		Memory: models.MemoryStats{TotalKB: 2048000, FreeKB: 1024000},
	}, nil
}

func (fakeSource) Processes(context.Context) (models.ProcessList, error) {
	var list models.ProcessList
	for _, p := range []*models.Process{
		{PID: 1, PPID: 0, User: "root", State: "S", Threads: 1, CPUTicks: 100, Command: "init"},
		{PID: 42, PPID: 1, User: "alice", State: "R", Threads: 4, CPUTicks: 50000, Command: "compiler"},
	} {
		list.Processes = append(list.Processes, p)
		list.Count(p.State)
	}
	return list, nil
}

type recordingSignaler struct{ pids []int }

func (r *recordingSignaler) Send(pid int, _ control.Kind) error {
	r.pids = append(r.pids, pid)
	return nil
}

func newTestApp(t *testing.T, opts ...engine.Option) *App {
	t.Helper()
	eng, err := engine.New(fakeSource{}, opts...)
	require.NoError(t, err)
	app := NewApp(context.Background(), eng, view.New(10, sorter.ByCPU), nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.Update(refreshMsg{})
	return app
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyEvents(t *testing.T) {
	keys := defaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want view.Event
	}{
		{runes("q"), view.Quit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, view.Quit},
		{tea.KeyMsg{Type: tea.KeyUp}, view.Up},
		{runes("j"), view.Down},
		{tea.KeyMsg{Type: tea.KeyLeft}, view.Left},
		{tea.KeyMsg{Type: tea.KeyTab}, view.Right},
		{runes("c"), view.SortCPU},
		{runes("m"), view.SortMemory},
		{runes("p"), view.SortPID},
		{runes("n"), view.SortPriority},
		{runes("x"), view.Terminate},
		{runes("s"), view.Suspend},
		{runes("r"), view.Resume},
		{tea.KeyMsg{Type: tea.KeyEnter}, view.FocusTree},
		{runes("z"), view.None},
		{tea.KeyMsg{Type: tea.KeyPgDown}, view.None},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, keys.event(tt.msg))
		})
	}
}

func TestAppRendersProcessTable(t *testing.T) {
	app := newTestApp(t)

	out := app.View()
	assert.Contains(t, out, "Processes")
	assert.Contains(t, out, "compiler")
	assert.Contains(t, out, "init")
	assert.Contains(t, out, "Load average:")
	assert.Contains(t, out, "2 total, 1 running, 1 sleeping")
	assert.Contains(t, out, "Sort: CPU")
}

func TestAppLoadingBeforeResize(t *testing.T) {
	eng, err := engine.New(fakeSource{})
	require.NoError(t, err)
	app := NewApp(context.Background(), eng, view.New(10, sorter.ByCPU), nil)
	assert.Equal(t, "Loading...", app.View())
}

func TestAppQuit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppSwitchesViews(t *testing.T) {
	app := newTestApp(t)

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, view.CrashTracking, app.State().Mode)
	assert.Contains(t, app.View(), "No segfaults")

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, view.ProcessTree, app.State().Mode)
	assert.Contains(t, app.View(), "All processes (2)")

	app.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, view.Processes, app.State().Mode)
}

func TestAppFocusesTreeOnSelection(t *testing.T) {
	app := newTestApp(t)

	// CPU order puts the compiler first.
	app.Update(runes("t"))
	st := app.State()
	assert.Equal(t, view.ProcessTree, st.Mode)
	assert.Equal(t, 42, st.FocusPID)
	assert.Contains(t, app.View(), "Ancestry and descendants of 42 (compiler)")
}

func TestAppSignalsSelectedProcess(t *testing.T) {
	sig := &recordingSignaler{}
	app := newTestApp(t, engine.WithSignaler(sig))

	app.Update(runes("j"))
	app.Update(runes("x"))
	assert.Equal(t, []int{1}, sig.pids)
	assert.Contains(t, app.View(), "sent terminate to 1")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "a very ...", truncateString("a very long command", 10))
	assert.Equal(t, "abc", truncateString("abcdef", 3))

	// Multi-byte runes are never split.
	got := truncateString("überwachung-dienst", 8)
	assert.Equal(t, "überw...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "日...", truncateString("日本語", 5))
	assert.True(t, utf8.ValidString(truncateString("日本語のプロセス", 7)))
}
