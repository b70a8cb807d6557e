package native

import (
	"github.com/go-wdbg/wdbg/pkg/proc/winutil"
)

type _CONTEXT = winutil.ARM64CONTEXT

const (
	_CONTEXT_ARM64           = 0x400000
	_CONTEXT_CONTROL         = _CONTEXT_ARM64 | 0x1
	_CONTEXT_INTEGER         = _CONTEXT_ARM64 | 0x2
	_CONTEXT_FLOATING_POINT  = _CONTEXT_ARM64 | 0x4
	_CONTEXT_DEBUG_REGISTERS = _CONTEXT_ARM64 | 0x8
	_CONTEXT_ALL             = _CONTEXT_CONTROL | _CONTEXT_INTEGER | _CONTEXT_FLOATING_POINT | _CONTEXT_DEBUG_REGISTERS
)

func newContext() *_CONTEXT {
	return winutil.NewARM64CONTEXT()
}

func newRegisters(context *_CONTEXT, TebBaseAddress uint64) *winutil.ARM64Registers {
	return winutil.NewARM64Registers(context, TebBaseAddress)
}
