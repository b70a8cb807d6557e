// Package native implements a Windows debug session: attaching to and
// spawning targets, draining the debug notification stream, and the
// bookkeeping of the target's threads.
package native

import "github.com/go-wdbg/wdbg/pkg/proc"

// waitInfinite is the INFINITE timeout value of the Win32 wait calls.
const waitInfinite = ^uint32(0)

// seDebugPrivilege is the token privilege that lets a debugger open
// processes it does not own.
const seDebugPrivilege = "SeDebugPrivilege"

// Processor feature codes of IsProcessorFeaturePresent.
const (
	featureMMX  = 3  // PF_MMX_INSTRUCTIONS_AVAILABLE
	featureXMMI = 6  // PF_XMMI_INSTRUCTIONS_AVAILABLE
	featureNEON = 19 // PF_ARM_NEON_INSTRUCTIONS_AVAILABLE
)

// createdProcess describes a target freshly spawned under debug
// control.
type createdProcess struct {
	pid     int
	tid     int
	process proc.Handle
	thread  proc.Handle
}

// debugAPI is the slice of the OS the debug session is built on. The
// production implementation calls into kernel32; tests substitute a
// scripted one.
//
// Implementations must issue AttachProcess, DetachProcess,
// CreateProcessUnderDebug, WaitForDebugEvent, ContinueDebugEvent and
// KillOnExit from a single OS thread: the Win32 debug API ties a
// debuggee to the thread that first attached to it.
type debugAPI interface {
	// CurrentProcess returns a pseudo handle for the debugger process
	// itself.
	CurrentProcess() proc.Handle
	// SetDebugPrivilege enables or disables SeDebugPrivilege on the
	// access token of the given process. It reports whether the
	// adjustment took effect.
	SetDebugPrivilege(h proc.Handle, enable bool) bool
	// KillOnExit selects whether debuggees are killed when the debug
	// thread exits.
	KillOnExit(kill bool) error
	// TargetArch reports the architecture a debugged process actually
	// executes as, taking WOW64 emulation into account.
	TargetArch(h proc.Handle) string
	HasProcessorFeature(feature uint32) bool

	OpenProcess(pid int) (proc.Handle, error)
	AttachProcess(pid int) error
	DetachProcess(pid int) error
	CreateProcessUnderDebug(path string, args []string, wd string) (*createdProcess, error)

	// WaitForDebugEvent blocks until the next debug notification
	// arrives or the timeout expires. A timeout is reported as
	// (nil, nil).
	WaitForDebugEvent(milliseconds uint32) (*proc.RawEvent, error)
	ContinueDebugEvent(pid, tid int, disposition proc.ResumeDisposition) error

	// BreakProcess forces a breakpoint exception in the target. It is
	// safe to call from any goroutine, including while another one is
	// blocked in WaitForDebugEvent.
	BreakProcess(h proc.Handle) error
	TerminateProcess(h proc.Handle, exitCode uint32) error

	SuspendThread(h proc.Handle) (uint32, error)
	ResumeThread(h proc.Handle) (uint32, error)
	ThreadRegisters(h proc.Handle, tls uint64) (proc.Registers, error)
	SetPC(h proc.Handle, pc uint64) error

	ReadMemory(h proc.Handle, addr uint64, buf []byte) (int, error)
	WriteMemory(h proc.Handle, addr uint64, data []byte) (int, error)
	CloseHandle(h proc.Handle) error

	// Close shuts down the debug thread. The session must be detached
	// first.
	Close() error
}
