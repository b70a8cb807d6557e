package native

import (
	"github.com/go-wdbg/wdbg/pkg/proc/winutil"
)

type _CONTEXT = winutil.AMD64CONTEXT

const (
	_CONTEXT_AMD64           = 0x100000
	_CONTEXT_CONTROL         = _CONTEXT_AMD64 | 0x1
	_CONTEXT_INTEGER         = _CONTEXT_AMD64 | 0x2
	_CONTEXT_SEGMENTS        = _CONTEXT_AMD64 | 0x4
	_CONTEXT_FLOATING_POINT  = _CONTEXT_AMD64 | 0x8
	_CONTEXT_DEBUG_REGISTERS = _CONTEXT_AMD64 | 0x10
	_CONTEXT_ALL             = _CONTEXT_CONTROL | _CONTEXT_INTEGER | _CONTEXT_SEGMENTS | _CONTEXT_FLOATING_POINT | _CONTEXT_DEBUG_REGISTERS
)

func newContext() *_CONTEXT {
	return winutil.NewAMD64CONTEXT()
}

func newRegisters(context *_CONTEXT, TebBaseAddress uint64) *winutil.AMD64Registers {
	return winutil.NewAMD64Registers(context, TebBaseAddress)
}
