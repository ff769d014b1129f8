// Package crash extracts fault reports from the kernel log.
package crash

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultMarkers are the substrings that identify a fault line.
var DefaultMarkers = []string{
	"segfault",
	"segmentation fault",
	"oom-killer",
	"out of memory",
	"general protection",
}

// ErrNoCommand is returned by a CommandSource with an empty command.
var ErrNoCommand = errors.New("crash: no log command")

// Source yields the most recent kernel log lines, oldest first.
type Source interface {
	Lines(ctx context.Context) ([]string, error)
}

// Filter keeps the lines that contain any marker, compared case-insensitively.
// Order is preserved and nothing is deduplicated.
func Filter(lines, markers []string) []string {
	lowered := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			lowered = append(lowered, m)
		}
	}

	var out []string
	for _, line := range lines {
		l := strings.ToLower(line)
		for _, m := range lowered {
			if strings.Contains(l, m) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// CommandSource runs an external log dump command, dmesg by default.
type CommandSource struct {
	Command []string
	Timeout time.Duration
}

// NewCommandSource splits command on whitespace.
func NewCommandSource(command string) *CommandSource {
	return &CommandSource{
		Command: strings.Fields(command),
		Timeout: 2 * time.Second,
	}
}

func (s *CommandSource) Lines(ctx context.Context) ([]string, error) {
	if len(s.Command) == 0 {
		return nil, ErrNoCommand
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("crash: run %s: %w", s.Command[0], err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Feed reads a Source and filters it.
type Feed struct {
	Source  Source
	Markers []string
}

// Read returns the fault lines of the current log. A failing source yields no
// lines and the error.
func (f *Feed) Read(ctx context.Context) ([]string, error) {
	lines, err := f.Source.Lines(ctx)
	if err != nil {
		return nil, err
	}
	markers := f.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return Filter(lines, markers), nil
}
