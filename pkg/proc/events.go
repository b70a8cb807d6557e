// Package proc provides the platform-independent model for a Windows
// debug session: raw debug notifications as reported by the OS, the
// normalized events a debugger frontend consumes, and the capability
// interfaces implemented by the native backend.
package proc

import "fmt"

// EventCode identifies the kind of a raw debug notification. The values
// match the dwDebugEventCode member of the Win32 DEBUG_EVENT structure.
type EventCode uint32

const (
	ExceptionEvent     EventCode = 1
	CreateThreadEvent  EventCode = 2
	CreateProcessEvent EventCode = 3
	ExitThreadEvent    EventCode = 4
	ExitProcessEvent   EventCode = 5
	LoadDLLEvent       EventCode = 6
	UnloadDLLEvent     EventCode = 7
	OutputStringEvent  EventCode = 8
	RIPEvent           EventCode = 9
)

func (code EventCode) String() string {
	switch code {
	case ExceptionEvent:
		return "EXCEPTION_DEBUG_EVENT"
	case CreateThreadEvent:
		return "CREATE_THREAD_DEBUG_EVENT"
	case CreateProcessEvent:
		return "CREATE_PROCESS_DEBUG_EVENT"
	case ExitThreadEvent:
		return "EXIT_THREAD_DEBUG_EVENT"
	case ExitProcessEvent:
		return "EXIT_PROCESS_DEBUG_EVENT"
	case LoadDLLEvent:
		return "LOAD_DLL_DEBUG_EVENT"
	case UnloadDLLEvent:
		return "UNLOAD_DLL_DEBUG_EVENT"
	case OutputStringEvent:
		return "OUTPUT_DEBUG_STRING_EVENT"
	case RIPEvent:
		return "RIP_EVENT"
	}
	return fmt.Sprintf("DEBUG_EVENT(%d)", uint32(code))
}

// ExceptionInfo describes an exception raised in the target, decoded
// from the EXCEPTION_DEBUG_INFO payload of a raw notification.
type ExceptionInfo struct {
	Code        uint32
	Flags       uint32
	Address     uint64
	FirstChance bool
	Parameters  []uint64
}

// Name returns the symbolic name of the exception code, or the empty
// string if the code is not one of the well known Windows exceptions.
func (e *ExceptionInfo) Name() string {
	return ExceptionName(e.Code)
}

func (e *ExceptionInfo) String() string {
	name := e.Name()
	if name == "" {
		name = fmt.Sprintf("0x%08x", e.Code)
	}
	chance := "second"
	if e.FirstChance {
		chance = "first"
	}
	return fmt.Sprintf("%s (%s chance) at %#x", name, chance, e.Address)
}

// CreateThreadInfo carries the interesting members of
// CREATE_THREAD_DEBUG_INFO. The thread handle is owned by the debugging
// subsystem and remains valid until the thread exits.
type CreateThreadInfo struct {
	Thread       Handle
	ThreadLocal  uint64
	StartAddress uint64
}

// CreateProcessInfo carries the interesting members of
// CREATE_PROCESS_DEBUG_INFO. File is a handle to the process image and
// must be closed by the receiver of the notification; Process and
// Thread are owned by the debugging subsystem.
type CreateProcessInfo struct {
	File         Handle
	Process      Handle
	Thread       Handle
	BaseOfImage  uint64
	ThreadLocal  uint64
	StartAddress uint64
}

// ExitThreadInfo carries the EXIT_THREAD_DEBUG_INFO payload.
type ExitThreadInfo struct {
	ExitCode uint32
}

// ExitProcessInfo carries the EXIT_PROCESS_DEBUG_INFO payload.
type ExitProcessInfo struct {
	ExitCode uint32
}

// LoadDLLInfo carries the LOAD_DLL_DEBUG_INFO payload. File must be
// closed by the receiver of the notification.
type LoadDLLInfo struct {
	File        Handle
	BaseOfImage uint64
}

// UnloadDLLInfo carries the UNLOAD_DLL_DEBUG_INFO payload.
type UnloadDLLInfo struct {
	BaseOfImage uint64
}

// RawEvent is a single decoded debug notification. Exactly one of the
// payload fields is non-nil, matching Code; notifications that carry no
// payload we care about (OUTPUT_DEBUG_STRING_EVENT, RIP_EVENT) leave
// all of them nil.
type RawEvent struct {
	Code      EventCode
	ProcessID int
	ThreadID  int

	Exception     *ExceptionInfo
	CreateThread  *CreateThreadInfo
	CreateProcess *CreateProcessInfo
	ExitThread    *ExitThreadInfo
	ExitProcess   *ExitProcessInfo
	LoadDLL       *LoadDLLInfo
	UnloadDLL     *UnloadDLLInfo
}

func (ev *RawEvent) String() string {
	switch ev.Code {
	case ExceptionEvent:
		if ev.Exception != nil {
			return fmt.Sprintf("%v pid=%d tid=%d %v", ev.Code, ev.ProcessID, ev.ThreadID, ev.Exception)
		}
	case ExitThreadEvent:
		if ev.ExitThread != nil {
			return fmt.Sprintf("%v pid=%d tid=%d status=%d", ev.Code, ev.ProcessID, ev.ThreadID, ev.ExitThread.ExitCode)
		}
	case ExitProcessEvent:
		if ev.ExitProcess != nil {
			return fmt.Sprintf("%v pid=%d tid=%d status=%d", ev.Code, ev.ProcessID, ev.ThreadID, ev.ExitProcess.ExitCode)
		}
	case LoadDLLEvent:
		if ev.LoadDLL != nil {
			return fmt.Sprintf("%v pid=%d tid=%d base=%#x", ev.Code, ev.ProcessID, ev.ThreadID, ev.LoadDLL.BaseOfImage)
		}
	}
	return fmt.Sprintf("%v pid=%d tid=%d", ev.Code, ev.ProcessID, ev.ThreadID)
}

// EventKind classifies the normalized events reported to the caller of
// the wait loop. All other notification kinds are absorbed internally.
type EventKind int

const (
	// EventException reports an exception in the target. The target
	// stays frozen until the session is explicitly resumed.
	EventException EventKind = iota
	// EventExited reports that the target process exited. The session
	// is already detached when the event is delivered.
	EventExited
)

func (kind EventKind) String() string {
	switch kind {
	case EventException:
		return "exception"
	case EventExited:
		return "exited"
	}
	return fmt.Sprintf("EventKind(%d)", int(kind))
}

// Event is a normalized debug event, the distillation of one or more
// raw notifications into something a frontend acts on.
type Event struct {
	Kind     EventKind
	ThreadID int

	// Exception is set when Kind is EventException.
	Exception *ExceptionInfo
	// ExitStatus is set when Kind is EventExited.
	ExitStatus uint32
}

func (ev *Event) String() string {
	switch ev.Kind {
	case EventException:
		return fmt.Sprintf("exception on thread %d: %v", ev.ThreadID, ev.Exception)
	case EventExited:
		return fmt.Sprintf("process exited with status %d", ev.ExitStatus)
	}
	return ev.Kind.String()
}

// ResumeDisposition selects how a frozen target is released after a
// propagated exception.
type ResumeDisposition int

const (
	// ResumeContinue marks the exception as handled by the debugger.
	ResumeContinue ResumeDisposition = iota
	// ResumeNotHandled passes the exception on to the target's own
	// handler chain.
	ResumeNotHandled
	// ResumeStop leaves the target frozen. No call is issued to the
	// OS; a later detach or kill releases the target.
	ResumeStop
)

func (d ResumeDisposition) String() string {
	switch d {
	case ResumeContinue:
		return "continue"
	case ResumeNotHandled:
		return "not-handled"
	case ResumeStop:
		return "stop"
	}
	return fmt.Sprintf("ResumeDisposition(%d)", int(d))
}

// EventSink observes the raw notification stream. Record is called once
// per notification, after the translation step has decided whether the
// notification propagates to the caller as a normalized event.
type EventSink interface {
	Record(raw *RawEvent, propagated bool)
}
