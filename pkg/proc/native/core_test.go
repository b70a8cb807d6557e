package native

import (
	"errors"
	"testing"

	"github.com/go-wdbg/wdbg/pkg/proc"
)

type continueCall struct {
	pid, tid    int
	disposition proc.ResumeDisposition
}

type privilegeCall struct {
	handle proc.Handle
	enable bool
}

// fakeAPI is a scripted debugAPI. Raw notifications are popped from a
// queue; an empty queue behaves like a wait timeout. Every continue,
// privilege adjustment and handle close is recorded so tests can
// check ordering and resource discipline.
type fakeAPI struct {
	events []*proc.RawEvent

	attachErr    error
	createErr    error
	terminateErr error

	continues  []continueCall
	privileges []privilegeCall
	detached   []int
	terminated []proc.Handle
	closed     map[proc.Handle]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{closed: make(map[proc.Handle]int)}
}

func (f *fakeAPI) push(evs ...*proc.RawEvent) {
	f.events = append(f.events, evs...)
}

func (f *fakeAPI) lastContinue(t *testing.T) continueCall {
	t.Helper()
	if len(f.continues) == 0 {
		t.Fatal("no continue was issued")
	}
	return f.continues[len(f.continues)-1]
}

func (f *fakeAPI) CurrentProcess() proc.Handle { return 0x99 }

func (f *fakeAPI) SetDebugPrivilege(h proc.Handle, enable bool) bool {
	f.privileges = append(f.privileges, privilegeCall{h, enable})
	return true
}

func (f *fakeAPI) KillOnExit(kill bool) error { return nil }

func (f *fakeAPI) TargetArch(h proc.Handle) string { return "amd64" }

func (f *fakeAPI) HasProcessorFeature(feature uint32) bool { return feature == featureXMMI }

func (f *fakeAPI) OpenProcess(pid int) (proc.Handle, error) {
	return proc.Handle(0x1000 + pid), nil
}

func (f *fakeAPI) AttachProcess(pid int) error { return f.attachErr }

func (f *fakeAPI) DetachProcess(pid int) error {
	f.detached = append(f.detached, pid)
	return nil
}

func (f *fakeAPI) CreateProcessUnderDebug(path string, args []string, wd string) (*createdProcess, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &createdProcess{pid: 42, tid: 1, process: 0x500, thread: 0x501}, nil
}

func (f *fakeAPI) WaitForDebugEvent(milliseconds uint32) (*proc.RawEvent, error) {
	if len(f.events) == 0 {
		return nil, nil
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeAPI) ContinueDebugEvent(pid, tid int, disposition proc.ResumeDisposition) error {
	f.continues = append(f.continues, continueCall{pid, tid, disposition})
	return nil
}

func (f *fakeAPI) BreakProcess(h proc.Handle) error { return nil }

func (f *fakeAPI) TerminateProcess(h proc.Handle, exitCode uint32) error {
	f.terminated = append(f.terminated, h)
	return f.terminateErr
}

func (f *fakeAPI) SuspendThread(h proc.Handle) (uint32, error) { return 0, nil }

func (f *fakeAPI) ResumeThread(h proc.Handle) (uint32, error) { return 0, nil }

func (f *fakeAPI) ThreadRegisters(h proc.Handle, tls uint64) (proc.Registers, error) {
	return nil, proc.ErrBackendUnavailable
}

func (f *fakeAPI) SetPC(h proc.Handle, pc uint64) error { return nil }

func (f *fakeAPI) ReadMemory(h proc.Handle, addr uint64, buf []byte) (int, error) {
	return len(buf), nil
}

func (f *fakeAPI) WriteMemory(h proc.Handle, addr uint64, data []byte) (int, error) {
	return len(data), nil
}

func (f *fakeAPI) CloseHandle(h proc.Handle) error {
	f.closed[h]++
	return nil
}

func (f *fakeAPI) Close() error { return nil }

func createProcessEvent(pid, tid int, process, thread, file proc.Handle) *proc.RawEvent {
	return &proc.RawEvent{
		Code:      proc.CreateProcessEvent,
		ProcessID: pid,
		ThreadID:  tid,
		CreateProcess: &proc.CreateProcessInfo{
			File:         file,
			Process:      process,
			Thread:       thread,
			StartAddress: 0x401000,
			ThreadLocal:  0x7ff00000,
		},
	}
}

func createThreadEvent(pid, tid int, thread proc.Handle) *proc.RawEvent {
	return &proc.RawEvent{
		Code:      proc.CreateThreadEvent,
		ProcessID: pid,
		ThreadID:  tid,
		CreateThread: &proc.CreateThreadInfo{
			Thread:       thread,
			StartAddress: 0x402000,
			ThreadLocal:  0x7ff10000,
		},
	}
}

func exitThreadEvent(pid, tid int, status uint32) *proc.RawEvent {
	return &proc.RawEvent{
		Code:       proc.ExitThreadEvent,
		ProcessID:  pid,
		ThreadID:   tid,
		ExitThread: &proc.ExitThreadInfo{ExitCode: status},
	}
}

func exitProcessEvent(pid, tid int, status uint32) *proc.RawEvent {
	return &proc.RawEvent{
		Code:        proc.ExitProcessEvent,
		ProcessID:   pid,
		ThreadID:    tid,
		ExitProcess: &proc.ExitProcessInfo{ExitCode: status},
	}
}

func loadDLLEvent(pid, tid int, file proc.Handle) *proc.RawEvent {
	return &proc.RawEvent{
		Code:      proc.LoadDLLEvent,
		ProcessID: pid,
		ThreadID:  tid,
		LoadDLL:   &proc.LoadDLLInfo{File: file, BaseOfImage: 0x7fff0000},
	}
}

func exceptionEvent(pid, tid int, code uint32) *proc.RawEvent {
	return &proc.RawEvent{
		Code:      proc.ExceptionEvent,
		ProcessID: pid,
		ThreadID:  tid,
		Exception: &proc.ExceptionInfo{Code: code, Address: 0x401234, FirstChance: true},
	}
}

func TestAttach(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)

	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !c.Attached() {
		t.Fatal("expected Attached() to be true after attach")
	}
	if c.Pid() != 7 {
		t.Fatalf("expected pid 7, got %d", c.Pid())
	}
	if c.Process().Handle() == 0 {
		t.Fatal("expected a non-null target handle after attach")
	}
	if len(c.threads) != 0 {
		t.Fatalf("expected empty registry after attach, got %d entries", len(c.threads))
	}
}

func TestAttachFailure(t *testing.T) {
	api := newFakeAPI()
	api.attachErr = errors.New("access denied")
	c := newCore(api)

	err := c.Attach(7)
	if err == nil {
		t.Fatal("expected attach to fail")
	}
	var aerr proc.ErrAttachFailed
	if !errors.As(err, &aerr) {
		t.Fatalf("expected ErrAttachFailed, got %T: %v", err, err)
	}
	if c.Attached() {
		t.Fatal("expected Attached() to stay false after failed attach")
	}
	if len(c.threads) != 0 {
		t.Fatalf("expected empty registry after failed attach, got %d entries", len(c.threads))
	}
}

func TestDetachIdempotent(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)

	if err := c.Detach(); err != nil {
		t.Fatalf("detach while never attached: %v", err)
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("second detach while never attached: %v", err)
	}

	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("repeated detach: %v", err)
	}
	if c.Attached() || len(c.threads) != 0 {
		t.Fatal("expected a detached core with an empty registry")
	}
}

func TestBreakInRequiresTarget(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)

	if err := c.BreakIn(); err != proc.ErrNotAttached {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := c.BreakIn(); err != nil {
		t.Fatalf("BreakIn while attached: %v", err)
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := c.BreakIn(); err != proc.ErrNotAttached {
		t.Fatalf("expected ErrNotAttached after detach, got %v", err)
	}
}

// BreakIn and Attached are documented as callable from another
// goroutine while the session goroutine reshapes the target. Run them
// against an attach/detach storm; the race detector does the
// checking.
func TestBreakInConcurrentWithDetach(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if err := c.BreakIn(); err != nil && err != proc.ErrNotAttached {
				t.Errorf("BreakIn: %v", err)
				return
			}
			c.Attached()
		}
	}()
	for i := 0; i < 200; i++ {
		if err := c.Attach(7); err != nil {
			t.Fatalf("Attach: %v", err)
		}
		if err := c.Detach(); err != nil {
			t.Fatalf("Detach: %v", err)
		}
	}
	<-done
}

func TestLaunch(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)

	if err := c.Launch(`C:\a.exe`, "", nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if !c.Attached() || c.Pid() != 42 {
		t.Fatalf("expected to be attached to pid 42, got attached=%v pid=%d", c.Attached(), c.Pid())
	}
	if c.ActiveThreadID() != 1 {
		t.Fatalf("expected initial thread 1 active, got %d", c.ActiveThreadID())
	}
	if api.closed[0x501] != 1 {
		t.Fatalf("expected the surplus initial thread handle to be closed once, got %d", api.closed[0x501])
	}
	dropped := false
	for _, p := range api.privileges {
		if p.handle == 0x500 && !p.enable {
			dropped = true
		}
	}
	if !dropped {
		t.Fatal("expected the debug privilege to be dropped on the child")
	}
}

func TestLaunchFailure(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errors.New("file not found")
	c := newCore(api)

	err := c.Launch(`C:\missing.exe`, "", nil)
	var lerr proc.ErrLaunchFailed
	if !errors.As(err, &lerr) {
		t.Fatalf("expected ErrLaunchFailed, got %T: %v", err, err)
	}
	if c.Attached() {
		t.Fatal("expected Attached() to stay false after failed launch")
	}
}

func TestProcessCreatedSynthesizesInitialThread(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Launch(`C:\a.exe`, "", nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	api.push(createProcessEvent(42, 1, 0x500, 0x502, 0x600))
	ev, err := c.WaitDebugEvent(100)
	if err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	if ev != nil {
		t.Fatalf("expected process creation to be absorbed, got %v", ev)
	}
	if len(c.threads) != 1 {
		t.Fatalf("expected exactly one registry entry, got %d", len(c.threads))
	}
	th, ok := c.Thread(1)
	if !ok {
		t.Fatal("expected the initial thread to be registered under tid 1")
	}
	if th.StartAddress() != 0x401000 || th.TLS() != 0x7ff00000 {
		t.Fatalf("unexpected thread creation context: start=%#x tls=%#x", th.StartAddress(), th.TLS())
	}
	if api.closed[0x600] != 1 {
		t.Fatalf("expected the image file handle to be closed once, got %d", api.closed[0x600])
	}
	if cc := api.lastContinue(t); cc.disposition != proc.ResumeNotHandled {
		t.Fatalf("expected auto-resume with not-handled semantics, got %v", cc.disposition)
	}
}

func TestThreadLifecycle(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	api.push(createThreadEvent(7, 11, 0x700))
	if ev, err := c.WaitDebugEvent(100); err != nil || ev != nil {
		t.Fatalf("expected thread creation to be absorbed, got ev=%v err=%v", ev, err)
	}
	if _, ok := c.Thread(11); !ok {
		t.Fatal("expected thread 11 in the registry")
	}
	if c.ActiveThreadID() != 11 {
		t.Fatalf("expected active thread 11, got %d", c.ActiveThreadID())
	}

	api.push(exitThreadEvent(7, 11, 0))
	if ev, err := c.WaitDebugEvent(100); err != nil || ev != nil {
		t.Fatalf("expected thread exit to be absorbed, got ev=%v err=%v", ev, err)
	}
	if _, ok := c.Thread(11); ok {
		t.Fatal("expected thread 11 to be removed from the registry")
	}
}

func TestExitUnknownThreadIsNoop(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	api.push(createThreadEvent(7, 11, 0x700), exitThreadEvent(7, 99, 0))
	if ev, err := c.WaitDebugEvent(100); err != nil || ev != nil {
		t.Fatalf("expected both notifications to be absorbed, got ev=%v err=%v", ev, err)
	}
	if len(c.threads) != 1 {
		t.Fatalf("expected registry size 1 after exit of unknown tid, got %d", len(c.threads))
	}
}

func TestNonPropagatedKinds(t *testing.T) {
	kinds := []struct {
		name string
		ev   *proc.RawEvent
	}{
		{"create thread", createThreadEvent(7, 11, 0x700)},
		{"exit thread", exitThreadEvent(7, 11, 0)},
		{"load dll", loadDLLEvent(7, 11, 0x800)},
		{"unload dll", &proc.RawEvent{Code: proc.UnloadDLLEvent, ProcessID: 7, ThreadID: 11, UnloadDLL: &proc.UnloadDLLInfo{BaseOfImage: 0x7fff0000}}},
		{"output string", &proc.RawEvent{Code: proc.OutputStringEvent, ProcessID: 7, ThreadID: 11}},
		{"rip", &proc.RawEvent{Code: proc.RIPEvent, ProcessID: 7, ThreadID: 11}},
		{"unknown", &proc.RawEvent{Code: proc.EventCode(77), ProcessID: 7, ThreadID: 11}},
	}
	for _, tc := range kinds {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			c := newCore(api)
			if err := c.Attach(7); err != nil {
				t.Fatalf("Attach: %v", err)
			}
			api.push(tc.ev)
			ev, err := c.WaitDebugEvent(100)
			if err != nil {
				t.Fatalf("WaitDebugEvent: %v", err)
			}
			if ev != nil {
				t.Fatalf("expected %s to be absorbed, got %v", tc.name, ev)
			}
			if cc := api.lastContinue(t); cc.disposition != proc.ResumeNotHandled {
				t.Fatalf("expected auto-resume with not-handled semantics, got %v", cc.disposition)
			}
		})
	}
}

func TestLoadDLLClosesFileHandle(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	api.push(loadDLLEvent(7, 11, 0x800))
	if _, err := c.WaitDebugEvent(100); err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	if api.closed[0x800] != 1 {
		t.Fatalf("expected the module file handle to be closed once, got %d", api.closed[0x800])
	}
}

func TestExceptionPropagates(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	before := len(api.continues)
	api.push(exceptionEvent(7, 11, proc.ExceptionBreakpoint))
	ev, err := c.WaitDebugEvent(100)
	if err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	if ev == nil || ev.Kind != proc.EventException {
		t.Fatalf("expected an exception event, got %v", ev)
	}
	if ev.ThreadID != 11 {
		t.Fatalf("expected the event to carry tid 11, got %d", ev.ThreadID)
	}
	if ev.Exception.Code != proc.ExceptionBreakpoint {
		t.Fatalf("expected breakpoint exception, got %#x", ev.Exception.Code)
	}
	if len(api.continues) != before {
		t.Fatal("exception must propagate without resuming the target")
	}

	// the event must be resumed before the next wait
	if _, err := c.WaitDebugEvent(100); err != proc.ErrResumePending {
		t.Fatalf("expected ErrResumePending, got %v", err)
	}
	if err := c.Resume(proc.ResumeNotHandled); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if cc := api.lastContinue(t); cc.disposition != proc.ResumeNotHandled || cc.tid != 11 {
		t.Fatalf("unexpected continue %+v", cc)
	}
	if _, err := c.WaitDebugEvent(100); err != nil {
		t.Fatalf("wait after resume: %v", err)
	}
	if err := c.Resume(proc.ResumeContinue); err != proc.ErrNoPendingEvent {
		t.Fatalf("expected ErrNoPendingEvent, got %v", err)
	}
}

func TestResumeStopLeavesTargetFrozen(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	api.push(exceptionEvent(7, 11, proc.ExceptionAccessViolation))
	if _, err := c.WaitDebugEvent(100); err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	before := len(api.continues)
	if err := c.Resume(proc.ResumeStop); err != nil {
		t.Fatalf("Resume(stop): %v", err)
	}
	if len(api.continues) != before {
		t.Fatal("stop must not hand the event back to the OS")
	}
	if _, err := c.WaitDebugEvent(100); err != proc.ErrResumePending {
		t.Fatalf("expected the event to still be pending, got %v", err)
	}
}

func TestResumeNotAttached(t *testing.T) {
	c := newCore(newFakeAPI())
	if err := c.Resume(proc.ResumeContinue); err != proc.ErrNotAttached {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}
}

func TestWaitNotAttached(t *testing.T) {
	c := newCore(newFakeAPI())
	ev, err := c.WaitDebugEvent(100)
	if ev != nil || err != nil {
		t.Fatalf("expected no event while detached, got ev=%v err=%v", ev, err)
	}
}

func TestExitProcessPropagatesAndDetaches(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	api.push(createThreadEvent(7, 11, 0x700), exitProcessEvent(7, 11, 3))

	ev, err := c.WaitDebugEvent(100)
	if err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	if ev == nil || ev.Kind != proc.EventExited {
		t.Fatalf("expected a terminal exited event, got %v", ev)
	}
	if ev.ExitStatus != 3 {
		t.Fatalf("expected exit status 3, got %d", ev.ExitStatus)
	}
	if c.Attached() {
		t.Fatal("expected the session to be detached after process exit")
	}
	if len(c.threads) != 0 {
		t.Fatalf("expected an empty registry after process exit, got %d entries", len(c.threads))
	}
	// the final resume that lets the OS tear the process down
	if cc := api.lastContinue(t); cc.disposition != proc.ResumeContinue {
		t.Fatalf("expected a neutral final continue, got %v", cc.disposition)
	}
	// the session no longer owns the target handle, so waiting is a no-op
	if ev, err := c.WaitDebugEvent(100); ev != nil || err != nil {
		t.Fatalf("expected no event after exit, got ev=%v err=%v", ev, err)
	}
}

func TestKill(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	h := c.process.handle
	if err := c.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if len(api.terminated) != 1 || api.terminated[0] != h {
		t.Fatalf("expected the target handle to be terminated, got %v", api.terminated)
	}
	if c.Attached() {
		t.Fatal("expected a detached core after kill")
	}
}

func TestKillDetachesEvenWhenTerminateFails(t *testing.T) {
	api := newFakeAPI()
	api.terminateErr = errors.New("access denied")
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := c.Kill(); err == nil {
		t.Fatal("expected kill to report the termination failure")
	}
	if c.Attached() {
		t.Fatal("expected the state machine to return to detached regardless")
	}
}

type recordingBreakpoints struct {
	calls int
}

func (b *recordingBreakpoints) ClearAll() error {
	b.calls++
	return nil
}

func TestDetachClearsBreakpoints(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	bp := &recordingBreakpoints{}
	c.SetBreakpoints(bp)

	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if bp.calls != 1 {
		t.Fatalf("expected breakpoints to be cleared exactly once, got %d", bp.calls)
	}
	if err := c.Detach(); err != nil {
		t.Fatalf("repeated Detach: %v", err)
	}
	if bp.calls != 1 {
		t.Fatalf("detach of a detached core must not clear breakpoints again, got %d calls", bp.calls)
	}
	if len(api.detached) != 1 || api.detached[0] != 7 {
		t.Fatalf("expected one OS-level detach of pid 7, got %v", api.detached)
	}
}

type recordingSink struct {
	codes      []proc.EventCode
	propagated []bool
}

func (s *recordingSink) Record(raw *proc.RawEvent, propagated bool) {
	s.codes = append(s.codes, raw.Code)
	s.propagated = append(s.propagated, propagated)
}

func TestEventSinkSeesEveryNotification(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	sink := &recordingSink{}
	c.SetEventSink(sink)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	api.push(
		createThreadEvent(7, 11, 0x700),
		loadDLLEvent(7, 11, 0x800),
		exceptionEvent(7, 11, proc.ExceptionBreakpoint),
	)
	if _, err := c.WaitDebugEvent(100); err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	wantCodes := []proc.EventCode{proc.CreateThreadEvent, proc.LoadDLLEvent, proc.ExceptionEvent}
	if len(sink.codes) != len(wantCodes) {
		t.Fatalf("expected %d recorded notifications, got %d", len(wantCodes), len(sink.codes))
	}
	for i := range wantCodes {
		if sink.codes[i] != wantCodes[i] {
			t.Fatalf("notification %d: expected %v, got %v", i, wantCodes[i], sink.codes[i])
		}
	}
	wantProp := []bool{false, false, true}
	for i := range wantProp {
		if sink.propagated[i] != wantProp[i] {
			t.Fatalf("notification %d: expected propagated=%v", i, wantProp[i])
		}
	}
}

func TestLastEventStamped(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)
	if err := c.Attach(7); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	api.push(exceptionEvent(7, 11, proc.ExceptionSingleStep))
	if _, err := c.WaitDebugEvent(100); err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	last := c.Process().LastEvent()
	if last == nil || last.Code != proc.ExceptionEvent || last.ThreadID != 11 {
		t.Fatalf("expected the raw exception stamped on the target, got %v", last)
	}
}

// TestOpenScenario follows a full session: launch, absorbed process
// creation, an exit for an unknown thread, then process exit.
func TestOpenScenario(t *testing.T) {
	api := newFakeAPI()
	c := newCore(api)

	if err := c.Launch(`C:\a.exe`, "", nil); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	api.push(createProcessEvent(42, 1, 0x500, 0x502, 0x600))
	if ev, err := c.WaitDebugEvent(100); ev != nil || err != nil {
		t.Fatalf("expected the first wait to absorb process creation, got ev=%v err=%v", ev, err)
	}
	if len(c.threads) != 1 || !c.Attached() {
		t.Fatalf("expected registry size 1 and an attached core, got %d attached=%v", len(c.threads), c.Attached())
	}

	api.push(exitThreadEvent(42, 9, 0))
	if ev, err := c.WaitDebugEvent(100); ev != nil || err != nil {
		t.Fatalf("expected the unknown thread exit to be absorbed, got ev=%v err=%v", ev, err)
	}
	if len(c.threads) != 1 {
		t.Fatalf("expected registry size to be unchanged, got %d", len(c.threads))
	}

	api.push(exitProcessEvent(42, 1, 0))
	ev, err := c.WaitDebugEvent(100)
	if err != nil {
		t.Fatalf("WaitDebugEvent: %v", err)
	}
	if ev == nil || ev.Kind != proc.EventExited {
		t.Fatalf("expected a terminal event, got %v", ev)
	}
	if c.Attached() {
		t.Fatal("expected Attached() to be false after the terminal event")
	}

	// no handle may have been closed more than once
	for h, n := range api.closed {
		if n != 1 {
			t.Fatalf("handle %#x closed %d times", uintptr(h), n)
		}
	}
}

func TestHasExtension(t *testing.T) {
	c := newCore(newFakeAPI())
	if !c.HasExtension("XMM") {
		t.Fatal("expected XMM to be reported present")
	}
	if c.HasExtension("MMX") {
		t.Fatal("expected MMX to be reported absent")
	}
	if c.HasExtension("AVX512") {
		t.Fatal("unknown extension names must report absent")
	}
}

func TestNewState(t *testing.T) {
	c := newCore(newFakeAPI())
	regs := c.NewState()
	if regs == nil {
		t.Fatal("expected an empty register container")
	}
	if regs.PC() != 0 || regs.SP() != 0 {
		t.Fatal("expected a zeroed register container")
	}
}
