//go:build linux

package collector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prabalesh/proctop/internal/models"
)

// Processes enumerates <procRoot>. A pid whose stat or status cannot be read
// or parsed, usually because it exited mid-scan, is left out of the list.
func (s *StatsCollector) Processes(ctx context.Context) (models.ProcessList, error) {
	entries, err := os.ReadDir(s.procRoot)
	if err != nil {
		return models.ProcessList{}, fmt.Errorf("collector: read %s: %w", s.procRoot, err)
	}

	var list models.ProcessList
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return models.ProcessList{}, err
		}
		if !entry.IsDir() {
			continue
		}

		// Check if directory name is a PID (numeric)
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue
		}

		proc, err := s.getProcessInfo(pid)
		if err != nil {
			s.log.Debug("dropping process", "pid", pid, "err", err)
			continue
		}
		list.Processes = append(list.Processes, proc)
		list.Count(proc.State)
	}
	return list, nil
}

func (s *StatsCollector) getProcessInfo(pid int) (*models.Process, error) {
	dir := filepath.Join(s.procRoot, strconv.Itoa(pid))

	statContent, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return nil, err
	}
	proc, err := parseStat(string(statContent))
	if err != nil {
		return nil, err
	}

	statusContent, err := os.ReadFile(filepath.Join(dir, "status"))
	if err != nil {
		return nil, err
	}
	uid, err := parseStatusUID(string(statusContent))
	if err != nil {
		return nil, err
	}

	proc.User = s.users.Name(uid)
	return proc, nil
}

// statFields is the number of fields after the command that parseStat needs,
// up to and including rss.
const statFields = 22

// parseStat decodes one /proc/<pid>/stat line. The command sits in parens and
// may itself contain spaces or parens, so it runs to the last ')'.
func parseStat(line string) (*models.Process, error) {
	open := strings.IndexByte(line, '(')
	closing := strings.LastIndexByte(line, ')')
	if open < 0 || closing < open {
		return nil, ErrNoStat
	}

	pid, err := strconv.Atoi(strings.TrimSpace(line[:open]))
	if err != nil {
		return nil, fmt.Errorf("%w: pid: %v", ErrNoStat, err)
	}

	// rest[0] is field 3 (state) of proc(5).
	rest := strings.Fields(line[closing+1:])
	if len(rest) < statFields {
		return nil, ErrShortStat
	}

	var (
		p       = &models.Process{PID: pid, Command: line[open+1 : closing], State: rest[0]}
		parseErr error
	)
	atoi := func(idx int) int {
		v, err := strconv.Atoi(rest[idx])
		if err != nil && parseErr == nil {
			parseErr = err
		}
		return v
	}
	atou := func(idx int) uint64 {
		v, err := strconv.ParseUint(rest[idx], 10, 64)
		if err != nil && parseErr == nil {
			parseErr = err
		}
		return v
	}

	p.PPID = atoi(1)
	utime, stime := atou(11), atou(12)
	p.CPUTicks = utime + stime
	p.Priority = atoi(15)
	p.Nice = atoi(16)
	p.Threads = max(atoi(17), 1)
	p.StartTick = atou(19)
	p.VSize = atou(20)
	// rss is signed in the kernel; negative values never reach userspace in
	// practice but must not wrap.
	if rss := atoi(21); rss > 0 {
		p.RSSPages = uint64(rss)
	}

	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoStat, parseErr)
	}
	return p, nil
}

// parseStatusUID returns the real uid from the Uid line of /proc/<pid>/status.
func parseStatusUID(content string) (int, error) {
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, ErrNoUid
		}
		uid, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNoUid, err)
		}
		return uid, nil
	}
	return 0, ErrNoUid
}
