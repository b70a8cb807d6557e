package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-wdbg/wdbg/pkg/config"
)

func newTestTerm() (*Term, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Term{
		conf:   &config.Config{},
		cmds:   DebugCommands(nil),
		stdout: &buf,
	}, &buf
}

func TestCommandDefault(t *testing.T) {
	var (
		cmds = Commands{}
		cmd  = cmds.Find("non-existent-command")
	)

	err := cmd(nil, "")
	if err == nil {
		t.Fatal("cmd() returned nil error")
	}
	if err.Error() != "command not available" {
		t.Fatal("wrong command output")
	}
}

func TestCommandReplayWithoutPreviousCommand(t *testing.T) {
	var (
		cmds = DebugCommands(nil)
		cmd  = cmds.Find("")
		err  = cmd(nil, "")
	)

	if err != nil {
		t.Error("Null command not returned", err)
	}
}

func TestCommandsMergeAliases(t *testing.T) {
	cmds := DebugCommands(nil)
	cmds.Merge(map[string][]string{"continue": {"go"}})
	if !cmds.cmds[3].match("go") {
		t.Fatal("expected the configured alias to resolve to continue")
	}
	if !cmds.cmds[3].match("c") {
		t.Fatal("expected the builtin alias to survive the merge")
	}
}

func hasAlias(cmds *Commands, alias string) bool {
	for _, cmd := range cmds.cmds {
		if cmd.match(alias) {
			return true
		}
	}
	return false
}

func TestCommandsMergeReset(t *testing.T) {
	cmds := DebugCommands(nil)
	cmds.Merge(map[string][]string{"kill": {"k"}})
	cmds.Merge(map[string][]string{})
	if hasAlias(cmds, "k") {
		t.Fatal("expected a removed alias to stop resolving")
	}
	if !hasAlias(cmds, "kill") {
		t.Fatal("expected the command itself to survive")
	}
}

func TestHelp(t *testing.T) {
	term, buf := newTestTerm()
	if err := term.cmds.help(term, ""); err != nil {
		t.Fatalf("help: %v", err)
	}
	out := buf.String()
	for _, name := range []string{"attach", "exec", "continue", "ps", "detach", "kill"} {
		if !strings.Contains(out, name) {
			t.Errorf("help output is missing %q", name)
		}
	}
}

func TestHelpUnknownCommand(t *testing.T) {
	term, _ := newTestTerm()
	if err := term.cmds.help(term, "definitely-not-a-command"); err != noCmdError {
		t.Fatalf("expected noCmdError, got %v", err)
	}
}

func TestConfigureSetBool(t *testing.T) {
	term, _ := newTestTerm()
	if err := configureSet(term, "show-system-processes true"); err != nil {
		t.Fatalf("configureSet: %v", err)
	}
	if !term.conf.ShowSystemProcesses {
		t.Fatal("expected show-system-processes to be set")
	}
	if err := configureSet(term, "show-system-processes false"); err != nil {
		t.Fatalf("configureSet: %v", err)
	}
	if term.conf.ShowSystemProcesses {
		t.Fatal("expected show-system-processes to be cleared")
	}
}

func TestConfigureSetInt(t *testing.T) {
	term, _ := newTestTerm()
	if err := configureSet(term, "max-event-history 128"); err != nil {
		t.Fatalf("configureSet: %v", err)
	}
	if term.conf.MaxEventHistory == nil || *term.conf.MaxEventHistory != 128 {
		t.Fatalf("unexpected max-event-history %v", term.conf.MaxEventHistory)
	}
	if err := configureSet(term, "max-event-history -1"); err == nil {
		t.Fatal("expected an error for a negative value")
	}
	if err := configureSet(term, "max-event-history banana"); err == nil {
		t.Fatal("expected an error for a non-numeric value")
	}
}

func TestConfigureSetString(t *testing.T) {
	term, _ := newTestTerm()
	if err := configureSet(term, `journal-dir "C:\\journals"`); err != nil {
		t.Fatalf("configureSet: %v", err)
	}
	if term.conf.JournalDir != `C:\journals` {
		t.Fatalf("unexpected journal-dir %q", term.conf.JournalDir)
	}
}

func TestConfigureSetUnknownKey(t *testing.T) {
	term, _ := newTestTerm()
	if err := configureSet(term, "no-such-key 1"); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestConfigureSetAlias(t *testing.T) {
	term, _ := newTestTerm()
	if err := configureSet(term, "alias continue go"); err != nil {
		t.Fatalf("configureSet: %v", err)
	}
	if !hasAlias(term.cmds, "go") {
		t.Fatal("expected the new alias to resolve")
	}
	// a single argument deletes the alias
	if err := configureSet(term, "alias go"); err != nil {
		t.Fatalf("configureSet: %v", err)
	}
	if hasAlias(term.cmds, "go") {
		t.Fatal("expected the alias to be removed")
	}
}

func TestConfigureList(t *testing.T) {
	term, buf := newTestTerm()
	n := 32
	term.conf.MaxEventHistory = &n
	if err := configureList(term); err != nil {
		t.Fatalf("configureList: %v", err)
	}
	out := buf.String()
	for _, key := range []string{"aliases", "show-system-processes", "max-event-history", "journal-dir"} {
		if !strings.Contains(out, key) {
			t.Errorf("config -list output is missing %q", key)
		}
	}
	if !strings.Contains(out, "32") {
		t.Error("config -list did not render the pointer value")
	}
}

func TestSplit2PartsBySpace(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"config -list", []string{"config", "-list"}},
		{"help", []string{"help"}},
		{"exec C:\\a.exe one two", []string{"exec", "C:\\a.exe one two"}},
	}
	for _, tc := range tests {
		got := split2PartsBySpace(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("split2PartsBySpace(%q) = %v", tc.in, got)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("split2PartsBySpace(%q)[%d] = %q, expected %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}
