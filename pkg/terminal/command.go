// Package terminal implements functions for responding to user
// input and dispatching to appropriate backend commands.
package terminal

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"

	"github.com/go-wdbg/wdbg/pkg/proc"
	"github.com/go-wdbg/wdbg/pkg/proc/native"
)

type cmdfunc func(t *Term, args string) error

type command struct {
	aliases        []string
	builtinAliases []string
	helpMsg        string
	cmdFn          cmdfunc
}

// Returns true if the command string matches one of the aliases for this command
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands for the wdbg terminal process.
type Commands struct {
	cmds []command
	core *native.Core
}

// DebugCommands returns a Commands struct with default commands defined.
func DebugCommands(core *native.Core) *Commands {
	c := &Commands{core: core}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"attach"}, cmdFn: c.attach, helpMsg: `Attach to a running process and begin debugging it.

	attach <pid>`},
		{aliases: []string{"exec"}, cmdFn: c.exec, helpMsg: `Launch an executable under debug control.

	exec [-wd <dir>] <path> [args...]

The working directory defaults to the directory of the executable.`},
		{aliases: []string{"continue", "c"}, cmdFn: c.cont, helpMsg: `Run until the next exception or until the target exits.

	continue [-u]

A pending exception is marked handled before resuming; with -u it is
passed on to the target's own exception handlers instead.`},
		{aliases: []string{"threads"}, cmdFn: c.threads, helpMsg: "Print out info for every thread of the target."},
		{aliases: []string{"registers", "regs"}, cmdFn: c.registers, helpMsg: `Print contents of CPU registers of the active thread.

	registers [-a]

Argument -a shows more registers.`},
		{aliases: []string{"ps"}, cmdFn: c.ps, helpMsg: "List running processes."},
		{aliases: []string{"parent"}, cmdFn: c.parent, helpMsg: `Print the parent pid of a running process.

	parent <pid>`},
		{aliases: []string{"events"}, cmdFn: c.events, helpMsg: "Print the events this session has stopped on."},
		{aliases: []string{"status"}, cmdFn: c.status, helpMsg: "Print the state of the debug session."},
		{aliases: []string{"interrupt", "break-in"}, cmdFn: c.interrupt, helpMsg: "Force a breakpoint exception in the running target."},
		{aliases: []string{"detach"}, cmdFn: c.detach, helpMsg: "Release the target and leave it running."},
		{aliases: []string{"kill"}, cmdFn: c.kill, helpMsg: "Terminate the target process."},
		{aliases: []string{"config"}, cmdFn: configureCmd, helpMsg: `Changes configuration parameters.

	config -list

Show all configuration parameters.

	config -save

Saves the configuration file to disk, overwriting the current configuration file.

	config <parameter> <value>

Changes the value of a configuration parameter.

	config alias <command> <alias>

Defines <alias> as an alias of <command>.`},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: "Exit the debugger."},
	}

	return c
}

// Find will look up the command function for the given command input.
// If it cannot find the command it will default to noCmdAvailable().
func (c *Commands) Find(cmdstr string) cmdfunc {
	if cmdstr == "" {
		return nullCommand
	}

	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.cmdFn
		}
	}

	return noCmdAvailable
}

// Call takes a command to execute.
func (c *Commands) Call(cmdstr string, t *Term) error {
	vals := strings.SplitN(strings.TrimSpace(cmdstr), " ", 2)
	cmdname := vals[0]
	var args string
	if len(vals) > 1 {
		args = strings.TrimSpace(vals[1])
	}
	return c.Find(cmdname)(t, args)
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if c.cmds[i].builtinAliases != nil {
			c.cmds[i].aliases = append(c.cmds[i].aliases[:0], c.cmds[i].builtinAliases...)
		}
	}
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			if c.cmds[i].builtinAliases == nil {
				c.cmds[i].builtinAliases = make([]string, len(c.cmds[i].aliases))
				copy(c.cmds[i].builtinAliases, c.cmds[i].aliases)
			}
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
}

var noCmdError = errors.New("command not available")

func noCmdAvailable(t *Term, args string) error {
	return noCmdError
}

func nullCommand(t *Term, args string) error {
	return nil
}

func (c *Commands) help(t *Term, args string) error {
	if args != "" {
		for _, cmd := range c.cmds {
			if cmd.match(args) {
				fmt.Fprintln(t.stdout, cmd.helpMsg)
				return nil
			}
		}
		return noCmdError
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.helpMsg
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

func (c *Commands) attach(t *Term, args string) error {
	if args == "" {
		return errors.New("you must provide a PID")
	}
	pid, err := strconv.Atoi(args)
	if err != nil {
		return fmt.Errorf("invalid pid: %s", args)
	}
	if err := t.core.Attach(pid); err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Attached to process %d.\n", pid)
	return nil
}

func (c *Commands) exec(t *Term, args string) error {
	if args == "" {
		return errors.New("you must provide a path to an executable")
	}

	v, err := argv.Argv(args,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return err
	}
	if len(v) != 1 {
		return fmt.Errorf("illegal commandline '%s'", args)
	}
	w := v[0]

	var wd string
	if len(w) >= 2 && w[0] == "-wd" {
		wd = w[1]
		w = w[2:]
	}
	if len(w) == 0 {
		return errors.New("you must provide a path to an executable")
	}

	if err := t.core.Launch(w[0], wd, w[1:]); err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Process %d launched.\n", t.core.Pid())
	return nil
}

func (c *Commands) cont(t *Term, args string) error {
	disp := proc.ResumeContinue
	switch args {
	case "":
	case "-u", "-unhandled":
		disp = proc.ResumeNotHandled
	default:
		return fmt.Errorf("wrong argument %q to continue", args)
	}
	if !t.core.Attached() {
		return proc.ErrNotAttached
	}
	if err := t.core.Resume(disp); err != nil && err != proc.ErrNoPendingEvent {
		return err
	}
	return t.waitForEvent()
}

func (c *Commands) threads(t *Term, args string) error {
	if !t.core.Attached() {
		return proc.ErrNotAttached
	}
	for _, th := range t.core.Threads() {
		prefix := "  "
		if th.ThreadID() == t.core.ActiveThreadID() {
			prefix = "* "
		}
		fmt.Fprintf(t.stdout, "%sThread %d start=%#x teb=%#x\n", prefix, th.ThreadID(), th.StartAddress(), th.TLS())
	}
	return nil
}

func (c *Commands) registers(t *Term, args string) error {
	if !t.core.Attached() {
		return proc.ErrNotAttached
	}
	floating := args == "-a"
	th, ok := t.core.ActiveThread()
	if !ok {
		return errors.New("no active thread")
	}
	regs, err := th.Registers()
	if err != nil {
		return err
	}
	rs, err := regs.Slice(floating)
	if err != nil {
		return err
	}
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 1, ' ', 0)
	for i := range rs {
		fmt.Fprintf(w, "%s\t=\t%s\n", rs[i].Name, rs[i].String())
	}
	return w.Flush()
}

func (c *Commands) ps(t *Term, args string) error {
	procs, err := native.ListProcesses()
	if err != nil {
		return err
	}
	pids := make([]int, 0, len(procs))
	for pid := range procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "PID\tPPID\tNAME\tPATH")
	for _, pid := range pids {
		p := procs[pid]
		if p.Path == "" && !t.conf.ShowSystemProcesses {
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", p.Pid, p.PPid, p.Name, p.Path)
	}
	return w.Flush()
}

func (c *Commands) parent(t *Term, args string) error {
	if args == "" {
		return errors.New("you must provide a PID")
	}
	pid, err := strconv.Atoi(args)
	if err != nil {
		return fmt.Errorf("invalid pid: %s", args)
	}
	parent, ok := native.ParentPID(pid)
	if !ok {
		return fmt.Errorf("pid %d not found in process snapshot", pid)
	}
	fmt.Fprintf(t.stdout, "parent of %d is %d\n", pid, parent)
	return nil
}

func (c *Commands) events(t *Term, args string) error {
	if len(t.events) == 0 {
		fmt.Fprintln(t.stdout, "No events recorded.")
		return nil
	}
	for _, ev := range t.events {
		fmt.Fprintln(t.stdout, ev)
	}
	return nil
}

func (c *Commands) status(t *Term, args string) error {
	if !t.core.Attached() {
		fmt.Fprintln(t.stdout, "No process attached.")
		return nil
	}
	arch := t.core.Arch()
	fmt.Fprintf(t.stdout, "Attached to process %d (%s, %d byte pointers)\n", t.core.Pid(), arch.Name, arch.PtrSize)
	fmt.Fprintf(t.stdout, "Debug privilege: %v\n", t.core.Privileged())
	fmt.Fprintf(t.stdout, "Threads: %d\n", len(t.core.Threads()))
	if t.core.PendingResume() {
		fmt.Fprintln(t.stdout, "Stopped on an exception, waiting for continue.")
	}
	if p := t.core.Process(); p != nil && p.LastEvent() != nil {
		fmt.Fprintf(t.stdout, "Last notification: %v\n", p.LastEvent())
	}
	return nil
}

func (c *Commands) interrupt(t *Term, args string) error {
	return t.core.BreakIn()
}

func (c *Commands) detach(t *Term, args string) error {
	if !t.core.Attached() {
		return proc.ErrNotAttached
	}
	pid := t.core.Pid()
	if err := t.core.Detach(); err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Detached from process %d.\n", pid)
	return nil
}

func (c *Commands) kill(t *Term, args string) error {
	if !t.core.Attached() {
		return proc.ErrNotAttached
	}
	pid := t.core.Pid()
	if err := t.core.Kill(); err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Process %d killed.\n", pid)
	return nil
}

// ExitRequestError is returned when the user
// exits the debugger.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

func exitCommand(t *Term, args string) error {
	return ExitRequestError{}
}

func split2PartsBySpace(s string) []string {
	v := strings.SplitN(s, " ", 2)
	for i := range v {
		v[i] = strings.TrimSpace(v[i])
	}
	return v
}
