// Package cmds implements the command line interface of wdbg.
package cmds

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/go-wdbg/wdbg/cmd/wdbg/cmds/helphelpers"
	"github.com/go-wdbg/wdbg/pkg/config"
	"github.com/go-wdbg/wdbg/pkg/journal"
	"github.com/go-wdbg/wdbg/pkg/logflags"
	"github.com/go-wdbg/wdbg/pkg/proc/native"
	"github.com/go-wdbg/wdbg/pkg/terminal"
	"github.com/go-wdbg/wdbg/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// journalPath is where the raw notification stream of the session is recorded.
	journalPath string
	// workingDir is the working directory for running the program.
	workingDir string

	conf *config.Config
)

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand := &cobra.Command{
		Use:   "wdbg",
		Short: "wdbg is a debugger for Windows processes.",
		Long: `wdbg attaches to or launches a single Windows process under debug
control, tracks its threads, and surfaces exceptions and process exit
to an interactive terminal.`,
	}
	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debugging logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (eg: --log-output=debugger,events)
Possible values:
	debugger	Log debug session lifecycle
	events		Log every raw debug notification
	ps		Log the process enumerator
	journal		Log the session journal`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")
	rootCommand.PersistentFlags().StringVar(&journalPath, "journal", "", "Record every raw debug notification of the session to the specified file.")

	attachCommand := &cobra.Command{
		Use:   "attach [pid]",
		Short: "Attach to running process and begin debugging.",
		Long: `Attach to an already running process and begin debugging it.

With no argument, presents a picker with the running processes.`,
		Run: attachCmd,
	}
	rootCommand.AddCommand(attachCommand)

	execCommand := &cobra.Command{
		Use:   "exec <path> [args...]",
		Short: "Launch an executable under debug control and begin debugging.",
		Args:  cobra.MinimumNArgs(1),
		Run:   execCmd,
	}
	execCommand.Flags().StringVar(&workingDir, "wd", "", "Working directory of the program. Defaults to the directory of the executable.")
	rootCommand.AddCommand(execCommand)

	psCommand := &cobra.Command{
		Use:   "ps",
		Short: "List running processes.",
		Run:   psCmd,
	}
	rootCommand.AddCommand(psCommand)

	journalCommand := &cobra.Command{
		Use:   "journal <file>",
		Short: "Print the notification stream recorded in a session journal.",
		Args:  cobra.ExactArgs(1),
		Run:   journalCmd,
	}
	rootCommand.AddCommand(journalCommand)

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wdbg Debugger\n%s\n", version.WdbgVersion)
		},
	}
	rootCommand.AddCommand(versionCommand)

	helpFunc := rootCommand.HelpFunc()
	rootCommand.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helphelpers.Prepare(cmd)
		helpFunc(cmd, args)
	})

	return rootCommand
}

func attachCmd(cmd *cobra.Command, args []string) {
	var pid int
	if len(args) > 0 {
		var err error
		pid, err = strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid pid: %s\n", args[0])
			os.Exit(1)
		}
	} else {
		var err error
		pid, err = pickProcess()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	os.Exit(execute(pid, "", nil))
}

func execCmd(cmd *cobra.Command, args []string) {
	os.Exit(execute(0, args[0], args[1:]))
}

// pickProcess presents an interactive picker with every process the
// enumerator could open.
func pickProcess() (int, error) {
	procs, err := native.ListProcesses()
	if err != nil {
		return 0, err
	}
	pids := make([]int, 0, len(procs))
	for pid := range procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	items := make([]string, len(pids))
	for i, pid := range pids {
		items[i] = fmt.Sprintf("%d %s", pid, procs[pid].Name)
	}

	sel := promptui.Select{
		Label: "Select a process to attach to",
		Items: items,
		Size:  20,
		Searcher: func(input string, index int) bool {
			return strings.Contains(items[index], input)
		},
	}
	i, _, err := sel.Run()
	if err != nil {
		return 0, err
	}
	return pids[i], nil
}

func psCmd(cmd *cobra.Command, args []string) {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logflags.Close()
	procs, err := native.ListProcesses()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pids := make([]int, 0, len(procs))
	for pid := range procs {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	for _, pid := range pids {
		p := procs[pid]
		if p.Path == "" && !conf.ShowSystemProcesses {
			continue
		}
		fmt.Printf("%6d %6d %s\n", p.Pid, p.PPid, p.Path)
	}
}

func journalCmd(cmd *cobra.Command, args []string) {
	err := journal.Replay(args[0], func(e journal.Entry) error {
		dir := "absorbed"
		if e.Propagated {
			dir = "propagated"
		}
		fmt.Printf("%s %-28s pid=%-6d tid=%-6d %s\n", e.Time.Format(time.RFC3339), e.Code, e.Pid, e.Tid, dir)
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute(attachPid int, exePath string, processArgs []string) int {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logflags.Close()

	core := native.NewCore()
	defer core.Close()

	if path := sessionJournalPath(); path != "" {
		j, err := journal.New(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer j.Close()
		core.SetEventSink(j)
	}

	var err error
	if attachPid > 0 {
		err = core.Attach(attachPid)
	} else {
		err = core.Launch(exePath, workingDir, processArgs)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	term := terminal.New(core, conf)
	status, err := term.Run()
	if err != nil {
		fmt.Println(err)
	}
	return status
}

// sessionJournalPath resolves where to record the session, if
// anywhere: the --journal flag wins, otherwise the configured
// journal-dir gets a timestamped file.
func sessionJournalPath() string {
	if journalPath != "" {
		return journalPath
	}
	if conf.JournalDir == "" {
		return ""
	}
	name := fmt.Sprintf("wdbg-%s.journal", time.Now().Format("20060102-150405"))
	return filepath.Join(conf.JournalDir, name)
}
