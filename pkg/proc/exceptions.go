package proc

// Well known Windows exception codes, as reported in the ExceptionCode
// member of an EXCEPTION_RECORD.
const (
	ExceptionGuardPage             = 0x80000001
	ExceptionDatatypeMisalignment  = 0x80000002
	ExceptionBreakpoint            = 0x80000003
	ExceptionSingleStep            = 0x80000004
	ExceptionAccessViolation       = 0xC0000005
	ExceptionInPageError           = 0xC0000006
	ExceptionInvalidHandle         = 0xC0000008
	ExceptionIllegalInstruction    = 0xC000001D
	ExceptionNoncontinuable        = 0xC0000025
	ExceptionInvalidDisposition    = 0xC0000026
	ExceptionArrayBoundsExceeded   = 0xC000008C
	ExceptionFltDenormalOperand    = 0xC000008D
	ExceptionFltDivideByZero       = 0xC000008E
	ExceptionFltInexactResult      = 0xC000008F
	ExceptionFltInvalidOperation   = 0xC0000090
	ExceptionFltOverflow           = 0xC0000091
	ExceptionFltStackCheck         = 0xC0000092
	ExceptionFltUnderflow          = 0xC0000093
	ExceptionIntDivideByZero       = 0xC0000094
	ExceptionIntOverflow           = 0xC0000095
	ExceptionPrivilegedInstruction = 0xC0000096
	ExceptionStackOverflow         = 0xC00000FD
	ExceptionDBGControlC           = 0x40010005
	ExceptionMSVCThreadName        = 0x406D1388
	ExceptionMSVCCpp               = 0xE06D7363
)

var exceptionNames = map[uint32]string{
	ExceptionGuardPage:             "EXCEPTION_GUARD_PAGE",
	ExceptionDatatypeMisalignment:  "EXCEPTION_DATATYPE_MISALIGNMENT",
	ExceptionBreakpoint:            "EXCEPTION_BREAKPOINT",
	ExceptionSingleStep:            "EXCEPTION_SINGLE_STEP",
	ExceptionAccessViolation:       "EXCEPTION_ACCESS_VIOLATION",
	ExceptionInPageError:           "EXCEPTION_IN_PAGE_ERROR",
	ExceptionInvalidHandle:         "EXCEPTION_INVALID_HANDLE",
	ExceptionIllegalInstruction:    "EXCEPTION_ILLEGAL_INSTRUCTION",
	ExceptionNoncontinuable:        "EXCEPTION_NONCONTINUABLE_EXCEPTION",
	ExceptionInvalidDisposition:    "EXCEPTION_INVALID_DISPOSITION",
	ExceptionArrayBoundsExceeded:   "EXCEPTION_ARRAY_BOUNDS_EXCEEDED",
	ExceptionFltDenormalOperand:    "EXCEPTION_FLT_DENORMAL_OPERAND",
	ExceptionFltDivideByZero:       "EXCEPTION_FLT_DIVIDE_BY_ZERO",
	ExceptionFltInexactResult:      "EXCEPTION_FLT_INEXACT_RESULT",
	ExceptionFltInvalidOperation:   "EXCEPTION_FLT_INVALID_OPERATION",
	ExceptionFltOverflow:           "EXCEPTION_FLT_OVERFLOW",
	ExceptionFltStackCheck:         "EXCEPTION_FLT_STACK_CHECK",
	ExceptionFltUnderflow:          "EXCEPTION_FLT_UNDERFLOW",
	ExceptionIntDivideByZero:       "EXCEPTION_INT_DIVIDE_BY_ZERO",
	ExceptionIntOverflow:           "EXCEPTION_INT_OVERFLOW",
	ExceptionPrivilegedInstruction: "EXCEPTION_PRIV_INSTRUCTION",
	ExceptionStackOverflow:         "EXCEPTION_STACK_OVERFLOW",
	ExceptionDBGControlC:           "DBG_CONTROL_C",
	ExceptionMSVCThreadName:        "MS_VC_EXCEPTION",
	ExceptionMSVCCpp:               "MSVC_CPP_EXCEPTION",
}

// ExceptionName returns the symbolic name for a Windows exception code,
// or the empty string when the code is not a well known one.
func ExceptionName(code uint32) string {
	return exceptionNames[code]
}
