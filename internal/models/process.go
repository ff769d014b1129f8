package models

// UnknownUser is shown when a uid cannot be resolved to a name.
const UnknownUser = "N/A"

// Process is one record of a refresh cycle. The raw fields come straight from
// /proc/<pid>/stat and /proc/<pid>/status; the derived fields are filled in by
// the metrics calculator. Only Children is touched after construction.
type Process struct {
	PID       int    `json:"pid"`
	PPID      int    `json:"ppid"`
	User      string `json:"user"`
	State     string `json:"state"`
	Threads   int    `json:"threads"`
	Priority  int    `json:"priority"`
	Nice      int    `json:"nice"`
	CPUTicks  uint64 `json:"cpu_ticks"`
	StartTick uint64 `json:"start_tick"`
	RSSPages  uint64 `json:"rss_pages"`
	VSize     uint64 `json:"vsize"`
	Command   string `json:"command"`

	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	CPUTime    string  `json:"cpu_time"`

	Children map[int]*Process `json:"-"`
}

// AddChild attaches child unless a record with the same pid is already there.
// It reports whether the child was inserted.
func (p *Process) AddChild(child *Process) bool {
	if p.Children == nil {
		p.Children = make(map[int]*Process)
	}
	if _, ok := p.Children[child.PID]; ok {
		return false
	}
	p.Children[child.PID] = child
	return true
}

// ProcessList is the flat result of one enumeration together with per-state counts.
type ProcessList struct {
	Processes []*Process `json:"processes"`
	Total     int        `json:"total"`
	Running   int        `json:"running"`
	Sleeping  int        `json:"sleeping"`
	Zombie    int        `json:"zombie"`
	Stopped   int        `json:"stopped"`
}

// Count updates the per-state counters for state.
func (l *ProcessList) Count(state string) {
	l.Total++
	switch state {
	case "R":
		l.Running++
	case "S", "D", "I":
		l.Sleeping++
	case "Z":
		l.Zombie++
	case "T", "t":
		l.Stopped++
	}
}
