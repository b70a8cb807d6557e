package terminal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/derekparker/trie"
	"github.com/go-delve/liner"
	"github.com/mattn/go-isatty"

	"github.com/go-wdbg/wdbg/pkg/config"
	"github.com/go-wdbg/wdbg/pkg/proc"
	"github.com/go-wdbg/wdbg/pkg/proc/native"
)

const historyFile string = "history"

// Term represents the terminal running wdbg.
type Term struct {
	core   *native.Core
	conf   *config.Config
	prompt string
	line   *liner.State
	cmds   *Commands
	dumb   bool
	stdout io.Writer

	completions *trie.Trie
	events      []string
	lastCmd     string
}

// New returns a new Term.
func New(core *native.Core, conf *config.Config) *Term {
	cmds := DebugCommands(core)
	if conf != nil && conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}

	if conf == nil {
		conf = &config.Config{}
	}

	var w io.Writer

	dumb := strings.ToLower(os.Getenv("TERM")) == "dumb" || !isatty.IsTerminal(os.Stdout.Fd())
	if dumb {
		w = os.Stdout
	} else {
		w = getColorableWriter()
	}

	completions := trie.New()
	for _, cmd := range cmds.cmds {
		for _, alias := range cmd.aliases {
			completions.Add(alias, nil)
		}
	}

	return &Term{
		core:        core,
		conf:        conf,
		prompt:      "(wdbg) ",
		line:        liner.NewLiner(),
		cmds:        cmds,
		dumb:        dumb,
		stdout:      w,
		completions: completions,
	}
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	t.line.Close()
}

// sigintGuard breaks into a running target on SIGINT. The break
// surfaces as an ordinary breakpoint exception on the outstanding
// wait, so the command loop regains control with the target frozen.
func (t *Term) sigintGuard(ch <-chan os.Signal) {
	for range ch {
		if !t.core.Attached() {
			fmt.Fprintln(t.stdout, "interrupted")
			continue
		}
		fmt.Fprintln(t.stdout, "received SIGINT, breaking into target")
		if err := t.core.BreakIn(); err != nil {
			fmt.Fprintf(os.Stderr, "could not break in: %v\n", err)
		}
	}
}

// Run begins running wdbg in the terminal.
func (t *Term) Run() (int, error) {
	defer t.Close()

	// Break into the target on SIGINT.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	go t.sigintGuard(ch)

	t.line.SetCompleter(func(line string) (c []string) {
		if strings.Contains(line, " ") {
			return nil
		}
		return t.completions.PrefixSearch(strings.ToLower(line))
	})

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Printf("Unable to load history file: %v.", err)
	}

	f, err := os.Open(fullHistoryFile)
	if err != nil {
		f, err = os.Create(fullHistoryFile)
		if err != nil {
			fmt.Printf("Unable to open history file: %v. History will not be saved for this session.", err)
		}
	}
	if f != nil {
		t.line.ReadHistory(f)
		f.Close()
	}

	fmt.Println("Type 'help' for list of commands.")

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Println("exit")
				return t.handleExit()
			}
			return 1, fmt.Errorf("Prompt for input failed.\n")
		}

		if err := t.cmds.Call(cmdstr, t); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			if _, ok := err.(proc.ErrProcessExited); ok {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

// promptForInput reads a line of input from the terminal. It also
// stores it in the history. An empty line repeats the last command.
func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
		t.lastCmd = l
	} else {
		l = t.lastCmd
	}

	return l, nil
}

func (t *Term) handleExit() (int, error) {
	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Println("Error saving history file:", err)
	} else {
		if f, err := os.Create(fullHistoryFile); err == nil {
			_, err = t.line.WriteHistory(f)
			if err != nil {
				fmt.Println("readline history error:", err)
			}
			f.Close()
		}
	}

	if t.core.Attached() {
		answer, err := t.line.Prompt("Would you like to kill the process? [Y/n] ")
		if err != nil {
			return 2, io.EOF
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer == "n" {
			if err := t.core.Detach(); err != nil {
				return 1, err
			}
		} else {
			if err := t.core.Kill(); err != nil {
				return 1, err
			}
		}
	}
	return 0, nil
}

// waitForEvent resumes nothing by itself: it blocks on the session's
// wait loop until a normalized event propagates, then reports it.
func (t *Term) waitForEvent() error {
	pid := t.core.Pid()
	ev, err := t.core.WaitDebugEvent(0)
	if err != nil {
		return err
	}
	if ev == nil {
		return nil
	}
	t.recordEvent(ev)
	switch ev.Kind {
	case proc.EventExited:
		fmt.Fprintf(t.stdout, "Process %d has exited with status %d\n", pid, ev.ExitStatus)
	case proc.EventException:
		fmt.Fprintf(t.stdout, "Stopped on %v (thread %d)\n", ev.Exception, ev.ThreadID)
	}
	return nil
}

func (t *Term) recordEvent(ev *proc.Event) {
	max := 64
	if t.conf.MaxEventHistory != nil {
		max = *t.conf.MaxEventHistory
	}
	t.events = append(t.events, fmt.Sprintf("%s %v", time.Now().Format("15:04:05"), ev))
	if len(t.events) > max {
		t.events = t.events[len(t.events)-max:]
	}
}
