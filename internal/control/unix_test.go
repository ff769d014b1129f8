//go:build linux

package control

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSignalMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want unix.Signal
	}{
		{Terminate, unix.SIGTERM},
		{Suspend, unix.SIGSTOP},
		{Resume, unix.SIGCONT},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := Signal(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Signal(Kind(42))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSendErrors(t *testing.T) {
	var sent []unix.Signal
	u := &Unix{kill: func(pid int, sig unix.Signal) error {
		sent = append(sent, sig)
		switch pid {
		case 1:
			return unix.EPERM
		case 2:
			return unix.ESRCH
		case 3:
			return unix.EINVAL
		}
		return nil
	}}

	assert.NoError(t, u.Send(100, Suspend))
	assert.ErrorIs(t, u.Send(1, Terminate), ErrPermission)
	assert.ErrorIs(t, u.Send(2, Resume), ErrNoProcess)
	assert.ErrorIs(t, u.Send(3, Resume), unix.EINVAL)
	assert.ErrorIs(t, u.Send(0, Terminate), ErrInvalidPID)
	assert.ErrorIs(t, u.Send(-5, Terminate), ErrInvalidPID)
	assert.ErrorIs(t, u.Send(100, Kind(9)), ErrUnknownKind)

	assert.Equal(t, []unix.Signal{unix.SIGSTOP, unix.SIGTERM, unix.SIGCONT, unix.SIGCONT}, sent)
}

func TestSendToChild(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	if err := cmd.Start(); err != nil {
		t.Skipf("skipping: cannot start sleep: %v", err)
	}
	u := NewUnix()
	pid := cmd.Process.Pid

	require.NoError(t, u.Send(pid, Suspend))
	require.NoError(t, u.Send(pid, Resume))
	require.NoError(t, u.Send(pid, Terminate))

	err := cmd.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, u.Send(pid, Terminate), ErrNoProcess)
}
