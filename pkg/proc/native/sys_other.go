//go:build !windows

package native

import (
	"runtime"

	"github.com/go-wdbg/wdbg/pkg/proc"
)

// unsupportedAPI stands in for the kernel debug facility on platforms
// without one. The session model and its tests still compile and run
// everywhere; only live debugging is refused.
type unsupportedAPI struct{}

func newSys() debugAPI { return unsupportedAPI{} }

func (unsupportedAPI) CurrentProcess() proc.Handle { return 0 }

func (unsupportedAPI) SetDebugPrivilege(h proc.Handle, enable bool) bool { return false }

func (unsupportedAPI) KillOnExit(kill bool) error { return nil }

func (unsupportedAPI) TargetArch(h proc.Handle) string { return runtime.GOARCH }

func (unsupportedAPI) HasProcessorFeature(feature uint32) bool { return false }

func (unsupportedAPI) OpenProcess(pid int) (proc.Handle, error) {
	return 0, proc.ErrBackendUnavailable
}

func (unsupportedAPI) AttachProcess(pid int) error { return proc.ErrBackendUnavailable }

func (unsupportedAPI) DetachProcess(pid int) error { return proc.ErrBackendUnavailable }

func (unsupportedAPI) CreateProcessUnderDebug(path string, args []string, wd string) (*createdProcess, error) {
	return nil, proc.ErrBackendUnavailable
}

func (unsupportedAPI) WaitForDebugEvent(milliseconds uint32) (*proc.RawEvent, error) {
	return nil, proc.ErrBackendUnavailable
}

func (unsupportedAPI) ContinueDebugEvent(pid, tid int, disposition proc.ResumeDisposition) error {
	return proc.ErrBackendUnavailable
}

func (unsupportedAPI) BreakProcess(h proc.Handle) error { return proc.ErrBackendUnavailable }

func (unsupportedAPI) TerminateProcess(h proc.Handle, exitCode uint32) error {
	return proc.ErrBackendUnavailable
}

func (unsupportedAPI) SuspendThread(h proc.Handle) (uint32, error) {
	return 0, proc.ErrBackendUnavailable
}

func (unsupportedAPI) ResumeThread(h proc.Handle) (uint32, error) {
	return 0, proc.ErrBackendUnavailable
}

func (unsupportedAPI) ThreadRegisters(h proc.Handle, tls uint64) (proc.Registers, error) {
	return nil, proc.ErrBackendUnavailable
}

func (unsupportedAPI) SetPC(h proc.Handle, pc uint64) error { return proc.ErrBackendUnavailable }

func (unsupportedAPI) ReadMemory(h proc.Handle, addr uint64, buf []byte) (int, error) {
	return 0, proc.ErrBackendUnavailable
}

func (unsupportedAPI) WriteMemory(h proc.Handle, addr uint64, data []byte) (int, error) {
	return 0, proc.ErrBackendUnavailable
}

func (unsupportedAPI) CloseHandle(h proc.Handle) error { return nil }

func (unsupportedAPI) Close() error { return nil }
