package proc

import (
	"strings"
	"testing"
)

func TestEventCodeString(t *testing.T) {
	tests := []struct {
		code EventCode
		want string
	}{
		{ExceptionEvent, "EXCEPTION_DEBUG_EVENT"},
		{CreateProcessEvent, "CREATE_PROCESS_DEBUG_EVENT"},
		{ExitProcessEvent, "EXIT_PROCESS_DEBUG_EVENT"},
		{RIPEvent, "RIP_EVENT"},
		{EventCode(42), "DEBUG_EVENT(42)"},
	}
	for _, tc := range tests {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("EventCode(%d).String() = %q, expected %q", uint32(tc.code), got, tc.want)
		}
	}
}

func TestExceptionName(t *testing.T) {
	if name := ExceptionName(ExceptionAccessViolation); name != "EXCEPTION_ACCESS_VIOLATION" {
		t.Errorf("unexpected name %q", name)
	}
	if name := ExceptionName(0xdeadbeef); name != "" {
		t.Errorf("expected empty name for unknown code, got %q", name)
	}
}

func TestExceptionInfoString(t *testing.T) {
	e := &ExceptionInfo{Code: ExceptionBreakpoint, Address: 0x401000, FirstChance: true}
	s := e.String()
	if !strings.Contains(s, "EXCEPTION_BREAKPOINT") || !strings.Contains(s, "first chance") {
		t.Errorf("unexpected rendering %q", s)
	}

	e = &ExceptionInfo{Code: 0x12345678, Address: 0x401000}
	s = e.String()
	if !strings.Contains(s, "0x12345678") || !strings.Contains(s, "second chance") {
		t.Errorf("unexpected rendering %q", s)
	}
}

func TestEventString(t *testing.T) {
	ev := &Event{Kind: EventExited, ExitStatus: 9}
	if s := ev.String(); !strings.Contains(s, "status 9") {
		t.Errorf("unexpected rendering %q", s)
	}
	ev = &Event{Kind: EventException, ThreadID: 7, Exception: &ExceptionInfo{Code: ExceptionSingleStep}}
	if s := ev.String(); !strings.Contains(s, "thread 7") {
		t.Errorf("unexpected rendering %q", s)
	}
}

func TestResumeDispositionString(t *testing.T) {
	tests := []struct {
		d    ResumeDisposition
		want string
	}{
		{ResumeContinue, "continue"},
		{ResumeNotHandled, "not-handled"},
		{ResumeStop, "stop"},
	}
	for _, tc := range tests {
		if got := tc.d.String(); got != tc.want {
			t.Errorf("%d.String() = %q, expected %q", int(tc.d), got, tc.want)
		}
	}
}
