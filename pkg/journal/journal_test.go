package journal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-wdbg/wdbg/pkg/proc"
)

func TestRecordReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.journal")

	j, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.Record(&proc.RawEvent{
		Code:      proc.CreateProcessEvent,
		ProcessID: 42,
		ThreadID:  1,
		CreateProcess: &proc.CreateProcessInfo{
			StartAddress: 0x401000,
		},
	}, false)
	j.Record(&proc.RawEvent{
		Code:      proc.ExceptionEvent,
		ProcessID: 42,
		ThreadID:  1,
		Exception: &proc.ExceptionInfo{Code: proc.ExceptionBreakpoint, Address: 0x401234, FirstChance: true},
	}, true)
	j.Record(&proc.RawEvent{
		Code:        proc.ExitProcessEvent,
		ProcessID:   42,
		ThreadID:    1,
		ExitProcess: &proc.ExitProcessInfo{ExitCode: 0},
	}, true)
	if j.Entries() != 3 {
		t.Fatalf("expected 3 entries recorded, got %d", j.Entries())
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var entries []Entry
	err = Replay(path, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries replayed, got %d", len(entries))
	}
	if entries[0].Code != "CREATE_PROCESS_DEBUG_EVENT" || entries[0].Propagated {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Code != "EXCEPTION_DEBUG_EVENT" || !entries[1].Propagated {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[1].Raw == nil || entries[1].Raw.Exception == nil || entries[1].Raw.Exception.Address != 0x401234 {
		t.Errorf("exception payload did not survive the roundtrip: %+v", entries[1].Raw)
	}
	if entries[2].Pid != 42 || entries[2].Tid != 1 {
		t.Errorf("unexpected third entry: %+v", entries[2])
	}
}

func TestReplayStopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.journal")
	j, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 5; i++ {
		j.Record(&proc.RawEvent{Code: proc.OutputStringEvent, ProcessID: 1, ThreadID: i}, false)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stop := errors.New("stop")
	seen := 0
	err = Replay(path, func(e Entry) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	if err != stop {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if seen != 2 {
		t.Fatalf("expected replay to stop after 2 entries, got %d", seen)
	}
}

func TestReplayMissingFile(t *testing.T) {
	err := Replay(filepath.Join(t.TempDir(), "does-not-exist.journal"), func(Entry) error { return nil })
	if err == nil {
		t.Fatal("expected an error for a missing journal")
	}
}
