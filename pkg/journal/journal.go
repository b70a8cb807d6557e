// Package journal records the raw debug notification stream of a
// session to a compressed file of JSON lines, one entry per
// notification, so a session can be inspected after the fact.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/go-wdbg/wdbg/pkg/logflags"
	"github.com/go-wdbg/wdbg/pkg/proc"
)

// Entry is one journaled notification. Propagated records whether the
// translation loop surfaced it to the frontend or absorbed it.
type Entry struct {
	Time       time.Time      `json:"time"`
	Code       string         `json:"code"`
	Pid        int            `json:"pid"`
	Tid        int            `json:"tid"`
	Propagated bool           `json:"propagated"`
	Raw        *proc.RawEvent `json:"raw"`
}

// Journal writes entries to a zstd compressed file. It implements
// proc.EventSink.
type Journal struct {
	file    *os.File
	buf     *bufio.Writer
	zw      *zstd.Encoder
	path    string
	entries int
	log     logflags.Logger
}

// New creates (or truncates) a journal file at path.
func New(path string) (*Journal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %v", err)
	}
	buf := bufio.NewWriter(f)
	zw, err := zstd.NewWriter(buf)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Journal{
		file: f,
		buf:  buf,
		zw:   zw,
		path: path,
		log:  logflags.JournalLogger(),
	}, nil
}

// Path returns the location of the journal file.
func (j *Journal) Path() string { return j.path }

// Entries returns the number of entries recorded so far.
func (j *Journal) Entries() int { return j.entries }

// Record appends one notification to the journal. Errors are logged,
// not returned: journaling must never interfere with the session that
// is being recorded.
func (j *Journal) Record(raw *proc.RawEvent, propagated bool) {
	entry := Entry{
		Time:       time.Now(),
		Code:       raw.Code.String(),
		Pid:        raw.ProcessID,
		Tid:        raw.ThreadID,
		Propagated: propagated,
		Raw:        raw,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		j.log.Errorf("encoding entry: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := j.zw.Write(data); err != nil {
		j.log.Errorf("writing entry: %v", err)
		return
	}
	j.entries++
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	err := j.zw.Close()
	if ferr := j.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := j.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Replay reads a journal file and calls fn for each entry, in the
// order they were recorded. Replay stops at the first error returned
// by fn.
func Replay(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return err
	}
	defer zr.Close()

	scan := bufio.NewScanner(zr)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scan.Scan() {
		line := scan.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return fmt.Errorf("decoding journal entry %q: %v", string(line), err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	if err := scan.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
