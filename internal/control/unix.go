//go:build linux

package control

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Unix delivers signals with kill(2).
type Unix struct {
	kill func(pid int, sig unix.Signal) error
}

func NewUnix() *Unix {
	return &Unix{kill: unix.Kill}
}

// Signal maps kind to the signal sent for it.
func Signal(kind Kind) (unix.Signal, error) {
	switch kind {
	case Terminate:
		return unix.SIGTERM, nil
	case Suspend:
		return unix.SIGSTOP, nil
	case Resume:
		return unix.SIGCONT, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
}

func (u *Unix) Send(pid int, kind Kind) error {
	// pid 0 and negative pids address process groups.
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	sig, err := Signal(kind)
	if err != nil {
		return err
	}

	err = u.kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("%w: %d", ErrNoProcess, pid)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %s %d", ErrPermission, kind, pid)
	}
	return fmt.Errorf("control: %s %d: %w", kind, pid, err)
}
