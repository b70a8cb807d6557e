package proc

import "runtime"

// Arch describes the architecture of a debugged target. Descriptors
// are plain data so that a debugger built for one architecture can
// still describe a target running under emulation (a 32-bit WOW64
// process seen from a 64-bit debugger).
type Arch struct {
	Name     string
	PtrSize  int
	PageSize int

	// Conventional names of the stack pointer, frame pointer and
	// instruction pointer registers.
	SPRegister string
	BPRegister string
	PCRegister string

	// BreakpointInstruction is the instruction sequence used to plant
	// a software breakpoint.
	BreakpointInstruction []byte
}

var (
	amd64Arch = Arch{
		Name:                  "amd64",
		PtrSize:               8,
		PageSize:              0x1000,
		SPRegister:            "rsp",
		BPRegister:            "rbp",
		PCRegister:            "rip",
		BreakpointInstruction: []byte{0xCC},
	}
	i386Arch = Arch{
		Name:                  "386",
		PtrSize:               4,
		PageSize:              0x1000,
		SPRegister:            "esp",
		BPRegister:            "ebp",
		PCRegister:            "eip",
		BreakpointInstruction: []byte{0xCC},
	}
	arm64Arch = Arch{
		Name:                  "arm64",
		PtrSize:               8,
		PageSize:              0x1000,
		SPRegister:            "sp",
		BPRegister:            "fp",
		PCRegister:            "pc",
		BreakpointInstruction: []byte{0x00, 0x00, 0x3e, 0xd4}, // brk #0xf000
	}
)

// ArchByName returns the descriptor for the named architecture. The
// names follow GOARCH conventions.
func ArchByName(name string) (*Arch, bool) {
	switch name {
	case "amd64":
		return &amd64Arch, true
	case "386":
		return &i386Arch, true
	case "arm64":
		return &arm64Arch, true
	}
	return nil, false
}

// HostArch returns the descriptor for the architecture this debugger
// was built for. An unsupported build architecture falls back to the
// amd64 descriptor: the portable model stays usable everywhere, and
// only live debugging needs an exact match.
func HostArch() *Arch {
	if arch, ok := ArchByName(runtime.GOARCH); ok {
		return arch
	}
	return &amd64Arch
}
