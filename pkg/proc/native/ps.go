package native

// processEntry is one row of a process table snapshot, decoupled from
// the OS walk so the scan logic can be exercised with synthetic
// tables.
type processEntry struct {
	pid  int
	ppid int
	name string
}

// parentOf scans a snapshot for pid and returns its recorded parent.
// A pid absent from the snapshot yields ok == false; there is no
// fallback guess.
func parentOf(entries []processEntry, pid int) (parent int, ok bool) {
	for _, e := range entries {
		if e.pid == pid {
			return e.ppid, true
		}
	}
	return 0, false
}
