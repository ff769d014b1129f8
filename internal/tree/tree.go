// Package tree links the records of one refresh cycle into a parent/child
// hierarchy and walks it for display.
package tree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prabalesh/proctop/internal/models"
)

// Tree is the hierarchy of one cycle. It is rebuilt from scratch every cycle.
type Tree struct {
	byPID map[int]*models.Process
	roots []*models.Process
}

// Build attaches every record to its parent, discarding children left from an
// earlier build. Records whose parent is missing from procs, or whose parent
// id is their own, become roots.
func Build(procs map[int]*models.Process) *Tree {
	pending := make(map[int][]*models.Process, len(procs))
	for _, p := range procs {
		p.Children = nil
		if p.PPID == p.PID {
			continue
		}
		pending[p.PPID] = append(pending[p.PPID], p)
	}

	for pid, p := range procs {
		children, ok := pending[pid]
		if !ok {
			continue
		}
		for _, child := range children {
			p.AddChild(child)
		}
		delete(pending, pid)
	}

	t := &Tree{byPID: procs}
	for _, p := range procs {
		if t.isRoot(p) {
			t.roots = append(t.roots, p)
		}
	}
	slices.SortFunc(t.roots, byPID)
	return t
}

func (t *Tree) isRoot(p *models.Process) bool {
	if p.PPID == p.PID {
		return true
	}
	_, ok := t.byPID[p.PPID]
	return !ok
}

// Len returns the number of records in the tree.
func (t *Tree) Len() int {
	return len(t.byPID)
}

// Get returns the record for pid.
func (t *Tree) Get(pid int) (*models.Process, bool) {
	p, ok := t.byPID[pid]
	return p, ok
}

// Roots returns the top-level records ordered by pid.
func (t *Tree) Roots() []*models.Process {
	return t.roots
}

// Children returns the direct children of pid ordered by pid.
func (t *Tree) Children(pid int) []*models.Process {
	p, ok := t.byPID[pid]
	if !ok || len(p.Children) == 0 {
		return nil
	}
	out := make([]*models.Process, 0, len(p.Children))
	for _, c := range p.Children {
		out = append(out, c)
	}
	slices.SortFunc(out, byPID)
	return out
}

// Ancestry returns the chain from the topmost known ancestor down to pid.
// It is empty when pid is not in the tree.
func (t *Tree) Ancestry(pid int) []*models.Process {
	var chain []*models.Process
	seen := make(map[int]bool)
	for cur, ok := t.byPID[pid]; ok && !seen[cur.PID]; cur, ok = t.byPID[cur.PPID] {
		seen[cur.PID] = true
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}

// Line is one row of the rendered tree.
type Line struct {
	Depth   int
	Process *models.Process
	Focused bool
}

// Lines walks the tree for display. With focus > 0 it yields the ancestry of
// focus followed by its descendants; otherwise the whole forest. The walk is
// iterative and visits each record at most once.
func (t *Tree) Lines(focus int) []Line {
	visited := make(map[int]bool, len(t.byPID))
	if focus <= 0 {
		var out []Line
		for _, r := range t.roots {
			out = t.descend(out, r, 0, 0, visited)
		}
		return out
	}

	chain := t.Ancestry(focus)
	if len(chain) == 0 {
		return nil
	}
	out := make([]Line, 0, len(chain))
	for depth, p := range chain[:len(chain)-1] {
		visited[p.PID] = true
		out = append(out, Line{Depth: depth, Process: p})
	}
	return t.descend(out, chain[len(chain)-1], len(chain)-1, focus, visited)
}

func (t *Tree) descend(out []Line, root *models.Process, depth, focus int, visited map[int]bool) []Line {
	type frame struct {
		p     *models.Process
		depth int
	}
	stack := []frame{{root, depth}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.p.PID] {
			continue
		}
		visited[f.p.PID] = true
		out = append(out, Line{Depth: f.depth, Process: f.p, Focused: f.p.PID == focus})

		children := t.Children(f.p.PID)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
	return out
}

// Render formats lines as indented text, one process per line.
func Render(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		marker := "  "
		if l.Focused {
			marker = "> "
		}
		branch := ""
		if l.Depth > 0 {
			branch = strings.Repeat("  ", l.Depth-1) + "└─ "
		}
		fmt.Fprintf(&b, "%s%s%d %s [%s] %.1f%% cpu %.1f%% mem\n",
			marker, branch, l.Process.PID, l.Process.Command, l.Process.User,
			l.Process.CPUPercent, l.Process.MemPercent)
	}
	return b.String()
}

func byPID(a, b *models.Process) int {
	return a.PID - b.PID
}
