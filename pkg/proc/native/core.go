package native

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-wdbg/wdbg/pkg/logflags"
	"github.com/go-wdbg/wdbg/pkg/proc"
	"github.com/go-wdbg/wdbg/pkg/proc/winutil"
)

// Core is a debug session: at most one target process, the directory
// of its live threads, and the translation loop that turns raw OS
// debug notifications into the events a frontend consumes.
//
// A Core is not safe for concurrent use. A single goroutine drives
// attach, wait and resume; the OS freezes every thread of the target
// while a notification is pending, so nothing in the target progresses
// between WaitDebugEvent returning and the next resume. Attached and
// BreakIn are the two exceptions: they may be called from another
// goroutine, typically a signal handler, while a wait is outstanding.
type Core struct {
	api  debugAPI
	log  logflags.Logger
	elog logflags.Logger

	arch       *proc.Arch
	privileged bool

	breakpoints proc.Breakpoints
	sink        proc.EventSink

	// targetMu guards process (the pointer and its handle field) for
	// Attached and BreakIn; every other access happens on the goroutine
	// driving the session.
	targetMu   sync.Mutex
	process    *nativeProcess
	threads    map[int]*nativeThread
	currentTid int

	// pendingResume is set while a propagated exception has not been
	// handed back to the OS. The next notification cannot be requested
	// until it is cleared.
	pendingResume bool
}

// NewCore initializes a debug session backed by the operating
// system's debug facility. SeDebugPrivilege is enabled on a best
// effort basis; failure only means some targets will refuse to
// attach later.
func NewCore() *Core {
	return newCore(newSys())
}

func newCore(api debugAPI) *Core {
	c := &Core{
		api:     api,
		log:     logflags.DebuggerLogger(),
		elog:    logflags.EventsLogger(),
		threads: make(map[int]*nativeThread),
		arch:    proc.HostArch(),
	}
	c.privileged = api.SetDebugPrivilege(api.CurrentProcess(), true)
	if !c.privileged {
		c.log.Debugf("could not enable %s, proceeding without it", seDebugPrivilege)
	}
	if err := api.KillOnExit(false); err != nil {
		c.log.Debugf("DebugSetProcessKillOnExit: %v", err)
	}
	return c
}

// Close detaches from any target and releases the debug privilege.
// The Core must not be used afterwards.
func (c *Core) Close() error {
	err := c.Detach()
	c.api.SetDebugPrivilege(c.api.CurrentProcess(), false)
	if cerr := c.api.Close(); err == nil {
		err = cerr
	}
	return err
}

// Attached reports whether a target is under debug control. Safe to
// call from any goroutine.
func (c *Core) Attached() bool {
	c.targetMu.Lock()
	defer c.targetMu.Unlock()
	return c.process != nil
}

// Pid returns the pid of the target, or 0 when detached.
func (c *Core) Pid() int {
	if c.process == nil {
		return 0
	}
	return c.process.pid
}

// Process returns the current target, or nil when detached.
func (c *Core) Process() proc.Process {
	if c.process == nil {
		return nil
	}
	return c.process
}

// Arch returns the architecture descriptor of the current target, or
// of the host when detached.
func (c *Core) Arch() *proc.Arch {
	return c.arch
}

// Privileged reports whether SeDebugPrivilege was acquired.
func (c *Core) Privileged() bool {
	return c.privileged
}

// SetBreakpoints registers the collaborator that owns breakpoints
// planted in the target. Detach asks it to clear them before the
// target is let go.
func (c *Core) SetBreakpoints(bp proc.Breakpoints) {
	c.breakpoints = bp
}

// SetEventSink registers an observer for the raw notification stream.
func (c *Core) SetEventSink(sink proc.EventSink) {
	c.sink = sink
}

// Thread looks up a live thread of the target by its id.
func (c *Core) Thread(tid int) (proc.Thread, bool) {
	th, ok := c.threads[tid]
	if !ok {
		return nil, false
	}
	return th, true
}

// Threads returns the live threads of the target, ordered by id.
func (c *Core) Threads() []proc.Thread {
	tids := make([]int, 0, len(c.threads))
	for tid := range c.threads {
		tids = append(tids, tid)
	}
	sort.Ints(tids)
	ths := make([]proc.Thread, len(tids))
	for i, tid := range tids {
		ths[i] = c.threads[tid]
	}
	return ths
}

// ActiveThreadID returns the id of the thread that reported the most
// recent notification.
func (c *Core) ActiveThreadID() int {
	return c.currentTid
}

// ActiveThread returns the thread that reported the most recent
// notification, if it is still live.
func (c *Core) ActiveThread() (proc.Thread, bool) {
	return c.Thread(c.currentTid)
}

// PendingResume reports whether a propagated exception is still
// waiting for its resume disposition.
func (c *Core) PendingResume() bool {
	return c.pendingResume
}

// Attach puts an already running process under debug control. Any
// previous session is fully detached first. On failure the Core stays
// detached and no state is left behind.
func (c *Core) Attach(pid int) error {
	if err := c.Detach(); err != nil {
		return err
	}
	if err := c.api.AttachProcess(pid); err != nil {
		return proc.ErrAttachFailed{Pid: pid, Err: err}
	}
	h, err := c.api.OpenProcess(pid)
	if err != nil {
		c.api.DetachProcess(pid)
		return proc.ErrAttachFailed{Pid: pid, Err: err}
	}
	c.setProcess(&nativeProcess{core: c, pid: pid, handle: h})
	c.arch = c.targetArch(h)
	c.log.Debugf("attached to pid %d (%s)", pid, c.arch.Name)
	return nil
}

// Launch spawns path under debug control, with a fresh console and
// the debugger's environment. Debugging is scoped to the new process
// only, not to children it spawns. wd defaults to the directory of
// the executable; the canonical path of the executable becomes the
// first command line token, followed by args.
func (c *Core) Launch(path string, wd string, args []string) error {
	if err := c.Detach(); err != nil {
		return err
	}
	exe, err := filepath.Abs(path)
	if err != nil {
		return proc.ErrLaunchFailed{Path: path, Err: err}
	}
	if wd == "" {
		wd = filepath.Dir(exe)
	}
	created, err := c.api.CreateProcessUnderDebug(exe, args, wd)
	if err != nil {
		return proc.ErrLaunchFailed{Path: path, Err: err}
	}

	// The child has no use for the debug privilege it inherited.
	c.api.SetDebugPrivilege(created.process, false)
	// The initial thread is re-reported by the process creation
	// notification; its handle from CreateProcess is surplus.
	c.api.CloseHandle(created.thread)

	c.setProcess(&nativeProcess{core: c, pid: created.pid, handle: created.process})
	c.currentTid = created.tid
	c.arch = c.targetArch(created.process)
	c.log.Debugf("launched %s pid %d tid %d (%s)", exe, created.pid, created.tid, c.arch.Name)
	return nil
}

// Detach releases the target and returns the Core to the detached
// state. It is idempotent: detaching when already detached is a
// successful no-op.
func (c *Core) Detach() error {
	if c.process == nil {
		return nil
	}
	pid := c.process.pid
	c.log.Debugf("detaching from pid %d", pid)

	if c.breakpoints != nil {
		if err := c.breakpoints.ClearAll(); err != nil {
			c.log.Errorf("clearing breakpoints: %v", err)
		}
	}

	// The target may be frozen mid-notification; hand the last event
	// back before asking the OS to let go.
	c.api.ContinueDebugEvent(pid, c.currentTid, proc.ResumeContinue)
	if err := c.api.DetachProcess(pid); err != nil {
		c.log.Errorf("DebugActiveProcessStop(%d): %v", pid, err)
	}

	c.dropSession(true)
	return nil
}

// Kill forcibly terminates the target, then detaches. The Core ends
// up detached even when termination itself fails.
func (c *Core) Kill() error {
	if c.process == nil {
		return nil
	}
	err := c.api.TerminateProcess(c.process.handle, 1)
	if err != nil {
		c.log.Errorf("TerminateProcess(%d): %v", c.process.pid, err)
	}
	if derr := c.Detach(); err == nil {
		err = derr
	}
	return err
}

// dropSession clears the registry and the target. The process handle
// is closed only when the session still owns one; after a process
// exit notification the kernel has already reclaimed it.
func (c *Core) dropSession(closeHandle bool) {
	c.targetMu.Lock()
	if c.process != nil && closeHandle && c.process.handle != 0 {
		c.api.CloseHandle(c.process.handle)
	}
	if c.process != nil {
		c.process.handle = 0
	}
	c.process = nil
	c.targetMu.Unlock()
	c.threads = make(map[int]*nativeThread)
	c.currentTid = 0
	c.pendingResume = false
}

// WaitDebugEvent blocks until the target reports a notification that
// propagates to the caller: an exception, or process exit. All other
// notification kinds mutate the thread registry and are auto-resumed
// without surfacing.
//
// msec bounds the wait on the OS notification channel; msec == 0
// blocks indefinitely. A timeout, or calling while detached, returns
// (nil, nil). After an exception is returned the session must be
// resumed before the next call.
func (c *Core) WaitDebugEvent(msec int) (*proc.Event, error) {
	if c.process == nil {
		return nil, nil
	}
	if c.pendingResume {
		return nil, proc.ErrResumePending
	}

	timeout := uint32(msec)
	if msec == 0 {
		timeout = waitInfinite
	}

	for {
		raw, err := c.api.WaitForDebugEvent(timeout)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		c.elog.Debugf("%v", raw)

		c.currentTid = raw.ThreadID
		c.process.lastEvent = raw

		ev := c.translate(raw)
		if c.sink != nil {
			c.sink.Record(raw, ev != nil)
		}
		if ev == nil {
			if err := c.api.ContinueDebugEvent(raw.ProcessID, raw.ThreadID, proc.ResumeNotHandled); err != nil {
				return nil, err
			}
			continue
		}
		if ev.Kind == proc.EventException {
			c.pendingResume = true
		}
		return ev, nil
	}
}

// translate applies the side effects of one raw notification and
// decides whether it propagates. A nil return means the notification
// was absorbed and the target is to be auto-resumed.
func (c *Core) translate(raw *proc.RawEvent) *proc.Event {
	switch raw.Code {
	case proc.CreateThreadEvent:
		if info := raw.CreateThread; info != nil {
			c.addThread(raw.ThreadID, info.Thread, info.StartAddress, info.ThreadLocal)
		}
		return nil

	case proc.ExitThreadEvent:
		delete(c.threads, raw.ThreadID)
		return nil

	case proc.CreateProcessEvent:
		info := raw.CreateProcess
		if info == nil {
			return nil
		}
		// First notification after a launch or attach: the kernel
		// reports the definitive process handle here. An image file
		// handle rides along and is ours to close.
		if info.File != 0 {
			c.api.CloseHandle(info.File)
		}
		c.targetMu.Lock()
		if c.process.handle != 0 && c.process.handle != info.Process {
			c.api.CloseHandle(c.process.handle)
		}
		c.process.handle = info.Process
		c.targetMu.Unlock()
		// The initial thread gets no create-thread notification of
		// its own; synthesize its registry entry from this payload.
		c.addThread(raw.ThreadID, info.Thread, info.StartAddress, info.ThreadLocal)
		return nil

	case proc.LoadDLLEvent:
		if raw.LoadDLL != nil && raw.LoadDLL.File != 0 {
			c.api.CloseHandle(raw.LoadDLL.File)
		}
		return nil

	case proc.ExitProcessEvent:
		var status uint32
		if raw.ExitProcess != nil {
			status = raw.ExitProcess.ExitCode
		}
		c.log.Debugf("pid %d exited with status %d", raw.ProcessID, status)
		// One final continue lets the kernel finish tearing the
		// process down; only then may the session be dropped.
		c.api.ContinueDebugEvent(raw.ProcessID, raw.ThreadID, proc.ResumeContinue)
		tid := raw.ThreadID
		c.process.exited = true
		c.dropSession(false)
		return &proc.Event{Kind: proc.EventExited, ThreadID: tid, ExitStatus: status}

	case proc.ExceptionEvent:
		return &proc.Event{Kind: proc.EventException, ThreadID: raw.ThreadID, Exception: raw.Exception}

	case proc.UnloadDLLEvent, proc.OutputStringEvent, proc.RIPEvent:
		return nil
	}
	return nil
}

func (c *Core) addThread(tid int, h proc.Handle, start, tls uint64) {
	c.threads[tid] = &nativeThread{
		core:   c,
		tid:    tid,
		handle: h,
		start:  start,
		tls:    tls,
	}
}

// Resume releases a target frozen by a propagated exception.
// ResumeStop leaves the target frozen and the event pending; the
// other dispositions hand the event back to the OS with the matching
// continue status.
func (c *Core) Resume(d proc.ResumeDisposition) error {
	if c.process == nil {
		return proc.ErrNotAttached
	}
	if !c.pendingResume {
		return proc.ErrNoPendingEvent
	}
	if d == proc.ResumeStop {
		return nil
	}
	if err := c.api.ContinueDebugEvent(c.process.pid, c.currentTid, d); err != nil {
		return err
	}
	c.pendingResume = false
	return nil
}

// BreakIn forces a breakpoint exception in the target, surfacing as
// an ordinary exception event on whatever wait is outstanding. Safe
// to call from a goroutine other than the one driving the session.
func (c *Core) BreakIn() error {
	c.targetMu.Lock()
	p := c.process
	var h proc.Handle
	if p != nil {
		h = p.handle
	}
	c.targetMu.Unlock()
	if p == nil || h == 0 {
		return proc.ErrNotAttached
	}
	return c.api.BreakProcess(h)
}

// setProcess installs the target under the same lock BreakIn and
// Attached read it through.
func (c *Core) setProcess(p *nativeProcess) {
	c.targetMu.Lock()
	c.process = p
	c.targetMu.Unlock()
}

// HasExtension reports whether the host CPU supports the named
// instruction set extension ("MMX", "XMM" or "NEON").
func (c *Core) HasExtension(name string) bool {
	switch name {
	case "MMX":
		return c.api.HasProcessorFeature(featureMMX)
	case "XMM":
		return c.api.HasProcessorFeature(featureXMMI)
	case "NEON":
		return c.api.HasProcessorFeature(featureNEON)
	}
	return false
}

// NewState returns an empty register state container appropriate for
// the target's architecture, for layers that stage register edits
// before applying them to a thread.
func (c *Core) NewState() proc.Registers {
	switch c.arch.Name {
	case "arm64":
		return winutil.NewARM64Registers(winutil.NewARM64CONTEXT(), 0)
	default:
		return winutil.NewAMD64Registers(winutil.NewAMD64CONTEXT(), 0)
	}
}

func (c *Core) targetArch(h proc.Handle) *proc.Arch {
	if arch, ok := proc.ArchByName(c.api.TargetArch(h)); ok {
		return arch
	}
	return proc.HostArch()
}
