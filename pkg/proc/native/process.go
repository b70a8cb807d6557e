package native

import "github.com/go-wdbg/wdbg/pkg/proc"

// nativeProcess is the target under debug control. The session owns
// the process handle; it is closed exactly once, either on detach or
// by the kernel when the exit notification is continued.
type nativeProcess struct {
	core   *Core
	pid    int
	handle proc.Handle

	lastEvent *proc.RawEvent
	exited    bool
}

func (p *nativeProcess) Pid() int { return p.pid }

func (p *nativeProcess) Handle() proc.Handle { return p.handle }

func (p *nativeProcess) Exited() bool { return p.exited }

func (p *nativeProcess) LastEvent() *proc.RawEvent { return p.lastEvent }

func (p *nativeProcess) Resume(d proc.ResumeDisposition) error {
	return p.core.Resume(d)
}

func (p *nativeProcess) ReadMemory(buf []byte, addr uint64) (int, error) {
	if p.exited {
		return 0, proc.ErrProcessExited{Pid: p.pid}
	}
	return p.core.api.ReadMemory(p.handle, addr, buf)
}

func (p *nativeProcess) WriteMemory(addr uint64, data []byte) (int, error) {
	if p.exited {
		return 0, proc.ErrProcessExited{Pid: p.pid}
	}
	return p.core.api.WriteMemory(p.handle, addr, data)
}
