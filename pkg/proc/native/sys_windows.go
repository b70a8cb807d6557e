package native

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/go-wdbg/wdbg/pkg/proc"
)

// winAPI is the production debugAPI, backed by kernel32.
//
// All debug loop calls are funneled through a single goroutine locked
// to its OS thread. The Win32 debug API expects every call after
// DebugActiveProcess (or CreateProcess with DEBUG_PROCESS) to come
// from the same thread.
type winAPI struct {
	debugChan     chan func()
	debugDoneChan chan interface{}
}

func newSys() debugAPI {
	w := &winAPI{
		debugChan:     make(chan func()),
		debugDoneChan: make(chan interface{}),
	}
	go w.handleDebugFuncs()
	return w
}

func (w *winAPI) handleDebugFuncs() {
	runtime.LockOSThread()

	for fn := range w.debugChan {
		fn()
		w.debugDoneChan <- nil
	}
}

func (w *winAPI) execDebugFunc(fn func()) {
	w.debugChan <- fn
	<-w.debugDoneChan
}

func (w *winAPI) Close() error {
	close(w.debugChan)
	close(w.debugDoneChan)
	return nil
}

func (w *winAPI) CurrentProcess() proc.Handle {
	return proc.Handle(windows.CurrentProcess())
}

func (w *winAPI) SetDebugPrivilege(h proc.Handle, enable bool) bool {
	var token windows.Token
	err := windows.OpenProcessToken(windows.Handle(h), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	name, err := windows.UTF16PtrFromString(seDebugPrivilege)
	if err != nil {
		return false
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, name, &luid); err != nil {
		return false
	}

	tp := windows.Tokenprivileges{PrivilegeCount: 1}
	tp.Privileges[0].Luid = luid
	if enable {
		tp.Privileges[0].Attributes = windows.SE_PRIVILEGE_ENABLED
	}
	// AdjustTokenPrivileges reports ERROR_NOT_ALL_ASSIGNED as an error,
	// which is exactly the case we need to detect.
	return windows.AdjustTokenPrivileges(token, false, &tp, 0, nil, nil) == nil
}

func (w *winAPI) KillOnExit(kill bool) (err error) {
	w.execDebugFunc(func() {
		err = _DebugSetProcessKillOnExit(kill)
	})
	return
}

func (w *winAPI) TargetArch(h proc.Handle) string {
	var isWow64 uint32
	if _IsWow64Process(syscall.Handle(h), &isWow64) != 0 && isWow64 != 0 {
		return "386"
	}
	return runtime.GOARCH
}

func (w *winAPI) HasProcessorFeature(feature uint32) bool {
	return _IsProcessorFeaturePresent(feature) != 0
}

func (w *winAPI) OpenProcess(pid int) (proc.Handle, error) {
	h, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		return 0, fmt.Errorf("OpenProcess: %v", err)
	}
	return proc.Handle(h), nil
}

func (w *winAPI) AttachProcess(pid int) (err error) {
	w.execDebugFunc(func() {
		err = _DebugActiveProcess(uint32(pid))
	})
	return
}

func (w *winAPI) DetachProcess(pid int) (err error) {
	w.execDebugFunc(func() {
		err = _DebugActiveProcessStop(uint32(pid))
	})
	return
}

func (w *winAPI) CreateProcessUnderDebug(path string, args []string, wd string) (*createdProcess, error) {
	cmdline := windows.ComposeCommandLine(append([]string{path}, args...))
	appName, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	cmdlineP, err := windows.UTF16PtrFromString(cmdline)
	if err != nil {
		return nil, err
	}
	wdP, err := windows.UTF16PtrFromString(wd)
	if err != nil {
		return nil, err
	}

	si := new(windows.StartupInfo)
	si.Cb = uint32(unsafe.Sizeof(*si))
	pi := new(windows.ProcessInformation)

	flags := uint32(_DEBUG_PROCESS | _DEBUG_ONLY_THIS_PROCESS | _CREATE_NEW_CONSOLE)
	w.execDebugFunc(func() {
		err = windows.CreateProcess(appName, cmdlineP, nil, nil, false, flags, nil, wdP, si, pi)
	})
	if err != nil {
		return nil, err
	}
	return &createdProcess{
		pid:     int(pi.ProcessId),
		tid:     int(pi.ThreadId),
		process: proc.Handle(pi.Process),
		thread:  proc.Handle(pi.Thread),
	}, nil
}

func (w *winAPI) WaitForDebugEvent(milliseconds uint32) (raw *proc.RawEvent, err error) {
	var debugEvent _DEBUG_EVENT
	w.execDebugFunc(func() {
		err = _WaitForDebugEvent(&debugEvent, milliseconds)
	})
	if err != nil {
		if err == windows.ERROR_SEM_TIMEOUT {
			return nil, nil
		}
		return nil, fmt.Errorf("WaitForDebugEvent: %v", err)
	}
	return decodeDebugEvent(&debugEvent), nil
}

func decodeDebugEvent(debugEvent *_DEBUG_EVENT) *proc.RawEvent {
	raw := &proc.RawEvent{
		Code:      proc.EventCode(debugEvent.DebugEventCode),
		ProcessID: int(debugEvent.ProcessId),
		ThreadID:  int(debugEvent.ThreadId),
	}
	unionPtr := unsafe.Pointer(&debugEvent.U[0])
	switch debugEvent.DebugEventCode {
	case _EXCEPTION_DEBUG_EVENT:
		debugInfo := (*_EXCEPTION_DEBUG_INFO)(unionPtr)
		record := &debugInfo.ExceptionRecord
		n := int(record.NumberParameters)
		if n > _EXCEPTION_MAXIMUM_PARAMETERS {
			n = _EXCEPTION_MAXIMUM_PARAMETERS
		}
		params := make([]uint64, n)
		for i := range params {
			params[i] = uint64(record.ExceptionInformation[i])
		}
		raw.Exception = &proc.ExceptionInfo{
			Code:        record.ExceptionCode,
			Flags:       record.ExceptionFlags,
			Address:     uint64(record.ExceptionAddress),
			FirstChance: debugInfo.FirstChance != 0,
			Parameters:  params,
		}
	case _CREATE_THREAD_DEBUG_EVENT:
		debugInfo := (*_CREATE_THREAD_DEBUG_INFO)(unionPtr)
		raw.CreateThread = &proc.CreateThreadInfo{
			Thread:       proc.Handle(debugInfo.Thread),
			ThreadLocal:  uint64(debugInfo.ThreadLocalBase),
			StartAddress: uint64(debugInfo.StartAddress),
		}
	case _CREATE_PROCESS_DEBUG_EVENT:
		debugInfo := (*_CREATE_PROCESS_DEBUG_INFO)(unionPtr)
		raw.CreateProcess = &proc.CreateProcessInfo{
			File:         proc.Handle(debugInfo.File),
			Process:      proc.Handle(debugInfo.Process),
			Thread:       proc.Handle(debugInfo.Thread),
			BaseOfImage:  uint64(debugInfo.BaseOfImage),
			ThreadLocal:  uint64(debugInfo.ThreadLocalBase),
			StartAddress: uint64(debugInfo.StartAddress),
		}
	case _EXIT_THREAD_DEBUG_EVENT:
		debugInfo := (*_EXIT_THREAD_DEBUG_INFO)(unionPtr)
		raw.ExitThread = &proc.ExitThreadInfo{ExitCode: debugInfo.ExitCode}
	case _EXIT_PROCESS_DEBUG_EVENT:
		debugInfo := (*_EXIT_PROCESS_DEBUG_INFO)(unionPtr)
		raw.ExitProcess = &proc.ExitProcessInfo{ExitCode: debugInfo.ExitCode}
	case _LOAD_DLL_DEBUG_EVENT:
		debugInfo := (*_LOAD_DLL_DEBUG_INFO)(unionPtr)
		raw.LoadDLL = &proc.LoadDLLInfo{
			File:        proc.Handle(debugInfo.File),
			BaseOfImage: uint64(debugInfo.BaseOfDll),
		}
	case _UNLOAD_DLL_DEBUG_EVENT:
		debugInfo := (*_UNLOAD_DLL_DEBUG_INFO)(unionPtr)
		raw.UnloadDLL = &proc.UnloadDLLInfo{BaseOfImage: uint64(debugInfo.BaseOfDll)}
	}
	return raw
}

func continueStatus(disposition proc.ResumeDisposition) (uint32, error) {
	switch disposition {
	case proc.ResumeContinue:
		return _DBG_CONTINUE, nil
	case proc.ResumeNotHandled:
		return _DBG_EXCEPTION_NOT_HANDLED, nil
	}
	return 0, fmt.Errorf("disposition %v cannot be passed to the OS", disposition)
}

func (w *winAPI) ContinueDebugEvent(pid, tid int, disposition proc.ResumeDisposition) error {
	status, err := continueStatus(disposition)
	if err != nil {
		return err
	}
	w.execDebugFunc(func() {
		err = _ContinueDebugEvent(uint32(pid), uint32(tid), status)
	})
	return err
}

func (w *winAPI) BreakProcess(h proc.Handle) error {
	// DebugBreakProcess is documented to work from any thread, and must
	// not go through the debug funnel: it is called while the funnel
	// thread is blocked in WaitForDebugEvent.
	return _DebugBreakProcess(syscall.Handle(h))
}

func (w *winAPI) TerminateProcess(h proc.Handle, exitCode uint32) error {
	return windows.TerminateProcess(windows.Handle(h), exitCode)
}

func (w *winAPI) SuspendThread(h proc.Handle) (uint32, error) {
	return _SuspendThread(syscall.Handle(h))
}

func (w *winAPI) ResumeThread(h proc.Handle) (uint32, error) {
	return _ResumeThread(syscall.Handle(h))
}

func (w *winAPI) ThreadRegisters(h proc.Handle, tls uint64) (proc.Registers, error) {
	context := newContext()
	context.SetFlags(_CONTEXT_ALL)
	if err := _GetThreadContext(syscall.Handle(h), context); err != nil {
		return nil, err
	}
	return newRegisters(context, tls), nil
}

func (w *winAPI) SetPC(h proc.Handle, pc uint64) error {
	context := newContext()
	context.SetFlags(_CONTEXT_ALL)
	if err := _GetThreadContext(syscall.Handle(h), context); err != nil {
		return err
	}
	context.SetPC(pc)
	return _SetThreadContext(syscall.Handle(h), context)
}

func (w *winAPI) ReadMemory(h proc.Handle, addr uint64, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var count uintptr
	err := _ReadProcessMemory(syscall.Handle(h), uintptr(addr), &buf[0], uintptr(len(buf)), &count)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (w *winAPI) WriteMemory(h proc.Handle, addr uint64, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var count uintptr
	err := _WriteProcessMemory(syscall.Handle(h), uintptr(addr), &data[0], uintptr(len(data)), &count)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (w *winAPI) CloseHandle(h proc.Handle) error {
	return syscall.CloseHandle(syscall.Handle(h))
}
