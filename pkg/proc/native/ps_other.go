//go:build !windows

package native

import "github.com/go-wdbg/wdbg/pkg/proc"

// ListProcesses is only implemented on Windows.
func ListProcesses() (map[int]*proc.ProcessInfo, error) {
	return nil, proc.ErrBackendUnavailable
}

// ParentPID is only implemented on Windows.
func ParentPID(pid int) (parent int, ok bool) {
	return 0, false
}
