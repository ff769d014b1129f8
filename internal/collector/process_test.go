//go:build linux

package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabalesh/proctop/internal/models"
)

const bashStat = "1234 (bash) S 1000 1234 1234 34816 1300 4194304 2900 11000 0 0 150 50 7 3 20 0 1 0 4500 23000000 1200 18446744073709551615 1 1 0 0 0 0 65536 3686404 1266761467 0 0 0 17 2 0 0 0 0 0"

func statLine(pid, ppid int, comm string) string {
	return fmt.Sprintf("%d (%s) R %d 1 1 0 -1 4194304 100 0 0 0 40 10 0 0 20 0 3 0 900 4096000 256 18446744073709551615 1 1 0 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0", pid, comm, ppid)
}

func statusContent(uid int) string {
	return fmt.Sprintf("Name:\tx\nState:\tR (running)\nTgid:\t1\nPid:\t1\nPPid:\t0\nUid:\t%d\t%d\t%d\t%d\nGid:\t0\t0\t0\t0\n", uid, uid, uid, uid)
}

func writeProc(t *testing.T, root string, pid int, stat, status string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprint(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if stat != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))
	}
	if status != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0o644))
	}
}

func fakeUsers(names map[string]string) *UserCache {
	c := NewUserCache(time.Minute)
	c.lookup = func(uid string) (string, error) {
		if n, ok := names[uid]; ok {
			return n, nil
		}
		return "", errors.New("unknown uid")
	}
	return c
}

func TestParseStat(t *testing.T) {
	p, err := parseStat(bashStat)
	require.NoError(t, err)
	assert.Equal(t, 1234, p.PID)
	assert.Equal(t, 1000, p.PPID)
	assert.Equal(t, "bash", p.Command)
	assert.Equal(t, "S", p.State)
	assert.Equal(t, uint64(200), p.CPUTicks)
	assert.Equal(t, 20, p.Priority)
	assert.Equal(t, 0, p.Nice)
	assert.Equal(t, 1, p.Threads)
	assert.Equal(t, uint64(4500), p.StartTick)
	assert.Equal(t, uint64(23000000), p.VSize)
	assert.Equal(t, uint64(1200), p.RSSPages)
}

func TestParseStatCommandWithSpacesAndParens(t *testing.T) {
	p, err := parseStat(statLine(77, 1, "Web Content (x)"))
	require.NoError(t, err)
	assert.Equal(t, "Web Content (x)", p.Command)
	assert.Equal(t, 1, p.PPID)
	assert.Equal(t, 3, p.Threads)
}

func TestParseStatErrors(t *testing.T) {
	_, err := parseStat("")
	assert.ErrorIs(t, err, ErrNoStat)

	_, err = parseStat("12 (short) S 1 2 3")
	assert.ErrorIs(t, err, ErrShortStat)

	_, err = parseStat("x (bad) " + bashStat[len("1234 (bash) "):])
	assert.ErrorIs(t, err, ErrNoStat)

	_, err = parseStat("5 (bad) S notanumber 1 1 0 -1 4194304 100 0 0 0 40 10 0 0 20 0 3 0 900 4096000 256")
	assert.ErrorIs(t, err, ErrNoStat)
}

func TestParseStatusUID(t *testing.T) {
	uid, err := parseStatusUID(statusContent(1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, uid)

	_, err = parseStatusUID("Name:\tx\n")
	assert.ErrorIs(t, err, ErrNoUid)

	_, err = parseStatusUID("Uid:\tabc\n")
	assert.ErrorIs(t, err, ErrNoUid)
}

func TestProcessesFromFixture(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, 1, statLine(1, 0, "init"), statusContent(0))
	writeProc(t, root, 42, statLine(42, 1, "worker"), statusContent(1000))
	writeProc(t, root, 43, statLine(43, 1, "gone"), "")
	writeProc(t, root, 44, "", statusContent(0))
	writeProc(t, root, 45, "45 (broken", statusContent(0))
	writeProc(t, root, 46, statLine(46, 1, "ghost"), statusContent(4242))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "self"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "uptime"), []byte("1 1"), 0o644))

	c := NewStatsCollector(
		WithProcRoot(root),
		WithUserCache(fakeUsers(map[string]string{"0": "root", "1000": "alice"})),
	)
	list, err := c.Processes(context.Background())
	require.NoError(t, err)

	got := map[int]*models.Process{}
	for _, p := range list.Processes {
		got[p.PID] = p
	}
	require.Len(t, got, 3)
	assert.Equal(t, "root", got[1].User)
	assert.Equal(t, "alice", got[42].User)
	assert.Equal(t, models.UnknownUser, got[46].User)
	assert.Equal(t, "worker", got[42].Command)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 3, list.Running)
}

func TestProcessesMissingRoot(t *testing.T) {
	c := NewStatsCollector(WithProcRoot(filepath.Join(t.TempDir(), "nope")))
	_, err := c.Processes(context.Background())
	assert.Error(t, err)
}

func TestProcessesCancelled(t *testing.T) {
	root := t.TempDir()
	writeProc(t, root, 1, statLine(1, 0, "init"), statusContent(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatsCollector(WithProcRoot(root)).Processes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessesSelf(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skipf("skipping: procfs not mounted: %v", err)
	}
	list, err := NewStatsCollector().Processes(context.Background())
	require.NoError(t, err)

	me := os.Getpid()
	for _, p := range list.Processes {
		if p.PID == me {
			assert.Equal(t, os.Getppid(), p.PPID)
			assert.GreaterOrEqual(t, p.Threads, 1)
			return
		}
	}
	t.Fatalf("pid %d not listed", me)
}
