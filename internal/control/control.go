// Package control delivers lifecycle signals to processes.
package control

import (
	"errors"
	"fmt"
)

// Kind is a lifecycle request.
type Kind int

const (
	Terminate Kind = iota
	Suspend
	Resume
)

func (k Kind) String() string {
	switch k {
	case Terminate:
		return "terminate"
	case Suspend:
		return "suspend"
	case Resume:
		return "resume"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrUnknownKind is returned for a Kind outside Terminate..Resume.
	ErrUnknownKind = errors.New("control: unknown signal kind")

	// ErrInvalidPID is returned for pids that would address a process group.
	ErrInvalidPID = errors.New("control: invalid pid")

	// ErrNoProcess is returned when the target has already exited.
	ErrNoProcess = errors.New("control: no such process")

	// ErrPermission is returned when the caller may not signal the target.
	ErrPermission = errors.New("control: permission denied")
)

// Signaler sends one lifecycle signal. Implementations must not block on the
// target changing state.
type Signaler interface {
	Send(pid int, kind Kind) error
}
