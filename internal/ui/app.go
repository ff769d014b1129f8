package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/prabalesh/proctop/internal/engine"
	"github.com/prabalesh/proctop/internal/tree"
	"github.com/prabalesh/proctop/internal/view"
)

// RefreshInterval is the input poll timeout and therefore the refresh cadence.
const RefreshInterval = time.Second

// statusTTL is how long a status message stays on screen.
const statusTTL = 5 * time.Second

type tickMsg time.Time

// refreshMsg asks for a cycle without scheduling another tick.
type refreshMsg struct{}

// App hosts the refresh loop. bubbletea delivers messages one at a time, and
// every cycle runs synchronously inside Update, so sampling, computing and
// rendering never overlap.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	log    *slog.Logger

	state view.State
	frame *engine.Frame

	status     string
	statusTime time.Time
	now        func() time.Time

	width  int
	height int
	// Vertical scrolling state for the tree and crash views
	verticalScrollOffset int
	contentHeight        int

	memoryProgress progress.Model
	keys           keyMap
	help           help.Model
}

func NewApp(ctx context.Context, eng *engine.Engine, initial view.State, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{
		ctx:            ctx,
		engine:         eng,
		log:            log,
		state:          initial,
		now:            time.Now,
		memoryProgress: progress.New(progress.WithDefaultGradient()),
		keys:           defaultKeyMap(),
		help:           help.New(),
	}
}

// State returns the current view state.
func (a *App) State() view.State {
	return a.state
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return refreshMsg{} },
		a.tick(),
	)
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) refresh() {
	st, frame, err := a.engine.Cycle(a.ctx, a.state)
	if err != nil {
		a.log.Error("refresh failed", "err", err)
		a.setStatus(err.Error())
		return
	}
	a.state, a.frame = st, frame
	if frame.CrashErr != nil {
		a.setStatus("kernel log unavailable: " + frame.CrashErr.Error())
	}
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusTime = a.now()
}

// Get the number of process rows that fit on screen
func (a *App) tableRows() int {
	// title, tabs, system summary, table header, status, help and margins
	reservedHeight := 16
	return max(1, a.height-reservedHeight)
}

// Get the height available for content (excluding sticky header elements)
func (a *App) getContentAreaHeight() int {
	reservedHeight := 14
	return max(1, a.height-reservedHeight)
}

// Get the maximum scroll offset based on content height
func (a *App) getMaxScrollOffset() int {
	availableHeight := a.getContentAreaHeight()
	if a.contentHeight <= availableHeight {
		return 0
	}
	return a.contentHeight - availableHeight
}

// Clamp vertical scroll offset to valid range
func (a *App) clampVerticalScroll() {
	maxOffset := a.getMaxScrollOffset()
	a.verticalScrollOffset = max(0, min(a.verticalScrollOffset, maxOffset))
}

// Apply vertical scrolling to content by truncating lines
func (a *App) applyVerticalScroll(content string) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	a.contentHeight = len(lines)

	a.clampVerticalScroll()

	availableHeight := a.getContentAreaHeight()
	if len(lines) <= availableHeight {
		return strings.Join(lines, "\n")
	}

	startLine := a.verticalScrollOffset
	endLine := min(startLine+availableHeight, len(lines))
	result := strings.Join(lines[startLine:endLine], "\n")

	if a.verticalScrollOffset > 0 {
		result = ScrollIndicatorStyle.Render("▲ More content above") + "\n" + result
	}
	if a.verticalScrollOffset < a.getMaxScrollOffset() {
		result = result + "\n" + ScrollIndicatorStyle.Render("▼ More content below")
	}
	return result
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.memoryProgress.Width = min(40, max(10, a.width-60))
		a.help.Width = a.width
		a.state = a.state.Resize(a.tableRows())
		a.clampVerticalScroll()
		return a, nil

	case tea.KeyMsg:
		if ev := a.keys.event(msg); ev != view.None {
			return a.handleEvent(ev)
		}
		a.handleScrollKey(msg)
		return a, nil

	case tickMsg:
		a.refresh()
		return a, a.tick()

	case refreshMsg:
		a.refresh()
	}

	return a, nil
}

func (a *App) handleEvent(ev view.Event) (tea.Model, tea.Cmd) {
	prevMode := a.state.Mode
	out := a.engine.Step(a.ctx, a.state, a.frame, ev)
	if out.Quit {
		return a, tea.Quit
	}

	a.state = out.State
	if out.Frame != nil {
		a.frame = out.Frame
	}
	switch {
	case out.Err != nil:
		a.log.Error("refresh failed", "err", out.Err)
		a.setStatus(out.Err.Error())
	case out.Message != "":
		a.setStatus(out.Message)
	}
	if a.state.Mode != prevMode {
		a.verticalScrollOffset = 0 // Reset scroll when changing views
	}
	return a, nil
}

func (a *App) handleScrollKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, a.keys.PageUp):
		scrollAmount := max(1, a.getContentAreaHeight()/2)
		a.verticalScrollOffset = max(0, a.verticalScrollOffset-scrollAmount)
	case key.Matches(msg, a.keys.PageDown):
		scrollAmount := max(1, a.getContentAreaHeight()/2)
		a.verticalScrollOffset += scrollAmount
		a.clampVerticalScroll()
	case key.Matches(msg, a.keys.Top):
		a.verticalScrollOffset = 0
	case key.Matches(msg, a.keys.Bottom):
		a.verticalScrollOffset = a.getMaxScrollOffset()
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	title := TitleStyle.Width(a.width).Render("proctop")
	tabs := a.renderTabs()
	summary := a.renderSystem()

	var content string
	switch a.state.Mode {
	case view.Processes:
		content = a.renderProcesses()
	case view.CrashTracking:
		content = a.applyVerticalScroll(a.renderCrashes())
	case view.ProcessTree:
		content = a.applyVerticalScroll(a.renderTree())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		tabs,
		summary,
		"",
		content,
		"",
		a.renderStatus(),
		a.help.View(a.keys),
	)
}

func (a *App) renderTabs() string {
	var tabElements []string
	for _, m := range view.Modes() {
		if m == a.state.Mode {
			tabElements = append(tabElements, ActiveTabStyle.Render(m.String()))
		} else {
			tabElements = append(tabElements, InactiveTabStyle.Render(m.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, tabElements...)
}

func (a *App) renderSystem() string {
	if a.frame == nil {
		return LabelStyle.Render("Sampling...")
	}
	sys := a.frame.System
	mem := sys.Memory

	load := fmt.Sprintf("%s %.2f %.2f %.2f", LabelStyle.Render("Load average:"),
		sys.Load.One, sys.Load.Five, sys.Load.Fifteen)
	uptime := fmt.Sprintf("%s %v", LabelStyle.Render("Uptime:"), sys.Uptime)
	memory := fmt.Sprintf("%s %.0f/%.0f MiB (%.0f MiB free) %s", LabelStyle.Render("Memory:"),
		mem.UsedMiB(), mem.TotalMiB(), mem.FreeMiB(),
		a.memoryProgress.ViewAs(mem.UsagePercent()/100))
	counts := a.frame.Counts
	tasks := fmt.Sprintf("%s %d total, %d running, %d sleeping, %d stopped, %d zombie",
		LabelStyle.Render("Tasks:"), counts.Total, counts.Running, counts.Sleeping, counts.Stopped, counts.Zombie)

	return lipgloss.JoinVertical(lipgloss.Left,
		load+"   "+uptime,
		memory,
		tasks,
	)
}

func (a *App) renderProcesses() string {
	if a.frame == nil {
		return ""
	}
	rows := a.frame.Rows
	startIdx, endIdx := a.state.Window(len(rows))

	var content strings.Builder

	header := fmt.Sprintf("%-8s %-10s %-2s %4s %4s %7s %7s %10s %s",
		"PID", "USER", "S", "THR", "PRI", "CPU%", "MEM%", "TIME", "COMMAND")
	content.WriteString(TableHeaderStyle.Render(header))
	content.WriteString("\n")

	usedWidth := 8 + 1 + 10 + 1 + 2 + 1 + 4 + 1 + 4 + 1 + 7 + 1 + 7 + 1 + 10 + 1
	commandWidth := max(10, a.width-usedWidth-4)

	for i := startIdx; i < endIdx; i++ {
		proc := rows[i]
		row := fmt.Sprintf("%-8d %-10s %-2s %4d %4d %6.1f%% %6.1f%% %10s %s",
			proc.PID, truncateString(proc.User, 10), proc.State, proc.Threads, proc.Priority,
			proc.CPUPercent, proc.MemPercent, proc.CPUTime, truncateString(proc.Command, commandWidth))

		rowStyle := TableCellStyle
		if i == a.state.Selected {
			rowStyle = SelectedRowStyle
		} else if (i-startIdx)%2 == 1 {
			rowStyle = AltRowStyle
		}
		content.WriteString(rowStyle.Render(row))
		content.WriteString("\n")
	}

	if len(rows) > endIdx-startIdx {
		content.WriteString(ScrollInfoStyle.Render(fmt.Sprintf("Showing %d-%d of %d processes",
			startIdx+1, endIdx, len(rows))))
	}
	return content.String()
}

func (a *App) renderCrashes() string {
	if a.frame == nil {
		return ""
	}
	if a.frame.CrashErr != nil {
		return ErrorStyle.Render("Kernel log unavailable: " + a.frame.CrashErr.Error())
	}
	if len(a.frame.Crashes) == 0 {
		return SuccessStyle.Render("No segfaults or out-of-memory kills in the kernel log.")
	}
	var content strings.Builder
	content.WriteString(HeaderStyle.Render(fmt.Sprintf("Crash reports (%d)", len(a.frame.Crashes))))
	content.WriteString("\n")
	for _, line := range a.frame.Crashes {
		content.WriteString(truncateString(line, max(20, a.width-2)))
		content.WriteString("\n")
	}
	return content.String()
}

func (a *App) renderTree() string {
	if a.frame == nil || a.frame.Tree == nil {
		return ""
	}
	heading := fmt.Sprintf("All processes (%d)", a.frame.Tree.Len())
	if a.state.HasFocus() {
		heading = fmt.Sprintf("Ancestry and descendants of %d", a.state.FocusPID)
		if p, ok := a.frame.Tree.Get(a.state.FocusPID); ok {
			heading += " (" + p.Command + ")"
		}
	}

	lines := a.frame.Tree.Lines(a.state.FocusPID)
	if len(lines) == 0 {
		return HeaderStyle.Render(heading) + "\n" +
			WarningStyle.Render(fmt.Sprintf("Process %d is no longer running.", a.state.FocusPID))
	}
	return HeaderStyle.Render(heading) + "\n" + tree.Render(lines)
}

func (a *App) renderStatus() string {
	line := fmt.Sprintf("View: %s • Sort: %s", a.state.Mode, a.state.Sort)
	if a.status != "" && a.now().Sub(a.statusTime) < statusTTL {
		line += " • " + StatusStyle.Render(a.status)
	}
	return HelpStyle.Render(line)
}

// truncateString cuts s to maxLen display cells on a grapheme boundary.
func truncateString(s string, maxLen int) string {
	tail := "..."
	if maxLen < 4 {
		tail = ""
	}
	return ansi.Truncate(s, maxLen, tail)
}
