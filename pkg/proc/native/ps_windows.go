package native

import (
	"fmt"
	"syscall"
	"unsafe"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sys/windows"

	"github.com/go-wdbg/wdbg/pkg/logflags"
	"github.com/go-wdbg/wdbg/pkg/proc"
)

// pathCacheKey keys the image path cache. Pids are recycled by the
// kernel, so the executable name is part of the key.
type pathCacheKey struct {
	pid  int
	name string
}

var pathCache, _ = lru.New(512)

// snapshotEntries walks a fresh toolhelp snapshot of the process
// table.
func snapshotEntries() ([]processEntry, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot: %v", err)
	}
	defer windows.CloseHandle(snap)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))
	entries := []processEntry{}
	for err = windows.Process32First(snap, &pe); err == nil; err = windows.Process32Next(snap, &pe) {
		entries = append(entries, processEntry{
			pid:  int(pe.ProcessID),
			ppid: int(pe.ParentProcessID),
			name: windows.UTF16ToString(pe.ExeFile[:]),
		})
	}
	if err != nil && err != syscall.ERROR_NO_MORE_FILES {
		return nil, fmt.Errorf("walking process snapshot: %v", err)
	}
	return entries, nil
}

// ListProcesses snapshots the system process table. Entries that
// cannot be opened for query access, typically protected system
// processes, are skipped rather than reported as failures.
func ListProcesses() (map[int]*proc.ProcessInfo, error) {
	log := logflags.PSLogger()
	entries, err := snapshotEntries()
	if err != nil {
		return nil, err
	}
	procs := make(map[int]*proc.ProcessInfo, len(entries))
	for _, e := range entries {
		h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(e.pid))
		if err != nil {
			log.Debugf("skipping pid %d (%s): %v", e.pid, e.name, err)
			continue
		}
		path := imagePath(h, e.pid, e.name)
		windows.CloseHandle(h)
		procs[e.pid] = &proc.ProcessInfo{
			Pid:  e.pid,
			PPid: e.ppid,
			Name: e.name,
			Path: path,
		}
	}
	return procs, nil
}

func imagePath(h windows.Handle, pid int, name string) string {
	key := pathCacheKey{pid: pid, name: name}
	if path, ok := pathCache.Get(key); ok {
		return path.(string)
	}
	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := _QueryFullProcessImageName(syscall.Handle(h), 0, &buf[0], &size); err != nil {
		return ""
	}
	path := windows.UTF16ToString(buf[:size])
	pathCache.Add(key, path)
	return path
}

// ParentPID resolves the parent of pid from a fresh snapshot. A pid
// missing from the snapshot reports ok == false.
func ParentPID(pid int) (parent int, ok bool) {
	entries, err := snapshotEntries()
	if err != nil {
		logflags.PSLogger().Errorf("%v", err)
		return 0, false
	}
	return parentOf(entries, pid)
}
