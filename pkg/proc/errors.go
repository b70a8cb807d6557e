package proc

import (
	"errors"
	"fmt"
)

// ErrProcessExited indicates that the process being debugged has exited.
type ErrProcessExited struct {
	Pid    int
	Status int
}

func (pe ErrProcessExited) Error() string {
	return fmt.Sprintf("Process %d has exited with status %d", pe.Pid, pe.Status)
}

// ErrAttachFailed is returned when the OS refuses to put a running
// process under debug control.
type ErrAttachFailed struct {
	Pid int
	Err error
}

func (e ErrAttachFailed) Error() string {
	return fmt.Sprintf("could not attach to pid %d: %v", e.Pid, e.Err)
}

func (e ErrAttachFailed) Unwrap() error { return e.Err }

// ErrLaunchFailed is returned when a target could not be spawned under
// debug control.
type ErrLaunchFailed struct {
	Path string
	Err  error
}

func (e ErrLaunchFailed) Error() string {
	return fmt.Sprintf("could not launch %s: %v", e.Path, e.Err)
}

func (e ErrLaunchFailed) Unwrap() error { return e.Err }

var (
	// ErrNotAttached is returned by operations that require an active
	// debug session.
	ErrNotAttached = errors.New("not attached to a process")

	// ErrResumePending is returned by the wait loop while a propagated
	// exception has not been resumed yet.
	ErrResumePending = errors.New("previous debug event has not been resumed")

	// ErrNoPendingEvent is returned by resume when no propagated
	// exception is waiting for a disposition.
	ErrNoPendingEvent = errors.New("no debug event is pending")

	// ErrBackendUnavailable is returned on platforms without a native
	// debug backend.
	ErrBackendUnavailable = errors.New("debug backend not available on this platform")
)
