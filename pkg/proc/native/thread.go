package native

import "github.com/go-wdbg/wdbg/pkg/proc"

// nativeThread is one live thread of the target, created either by a
// create-thread notification or synthesized from the process creation
// payload for the initial thread. The handle comes from the debugging
// subsystem, which reclaims it when the thread's exit notification is
// continued.
type nativeThread struct {
	core   *Core
	tid    int
	handle proc.Handle
	start  uint64
	tls    uint64
}

func (t *nativeThread) ThreadID() int { return t.tid }

// StartAddress returns the address the thread began executing at.
func (t *nativeThread) StartAddress() uint64 { return t.start }

// TLS returns the base address of the thread environment block.
func (t *nativeThread) TLS() uint64 { return t.tls }

func (t *nativeThread) Suspend() error {
	_, err := t.core.api.SuspendThread(t.handle)
	return err
}

func (t *nativeThread) Resume() error {
	_, err := t.core.api.ResumeThread(t.handle)
	return err
}

func (t *nativeThread) Registers() (proc.Registers, error) {
	return t.core.api.ThreadRegisters(t.handle, t.tls)
}

func (t *nativeThread) SetPC(pc uint64) error {
	return t.core.api.SetPC(t.handle, pc)
}
