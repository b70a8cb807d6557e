package proc

// Handle is an opaque reference to an OS kernel object. On Windows it
// holds a HANDLE value; the zero Handle is never a valid object.
type Handle uintptr

// Process represents a target under debug control.
type Process interface {
	Pid() int
	// Handle returns the process handle the session owns, or 0 after
	// the process has exited or the session detached.
	Handle() Handle
	Exited() bool
	// LastEvent returns the most recent raw notification delivered for
	// this process, or nil if none has been seen yet.
	LastEvent() *RawEvent
	// Resume releases the process after a debug notification froze it.
	Resume(ResumeDisposition) error
	ReadMemory(buf []byte, addr uint64) (int, error)
	WriteMemory(addr uint64, data []byte) (int, error)
}

// Thread represents a single thread of a target under debug control.
type Thread interface {
	ThreadID() int
	StartAddress() uint64
	// TLS returns the base address of the thread environment block.
	TLS() uint64
	Suspend() error
	Resume() error
	Registers() (Registers, error)
	SetPC(uint64) error
}

// Breakpoints is the collaborator that owns whatever breakpoints have
// been planted in the target. The session clears them before letting a
// target go.
type Breakpoints interface {
	// ClearAll removes every planted breakpoint. It must be safe to
	// call with no breakpoints set.
	ClearAll() error
}

// ProcessInfo describes one entry of a process listing.
type ProcessInfo struct {
	Pid  int
	PPid int
	Name string
	Path string
}
