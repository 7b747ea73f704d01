// ABOUTME: JSONL dispatch journal with append-only writes, one line per executed action
// ABOUTME: Reads line-by-line with bufio.Scanner; malformed lines are skipped

package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JournalVersion is the record envelope version.
const JournalVersion = 1

// EntryType identifies the type of journal line.
type EntryType string

const (
	EntryDispatch EntryType = "dispatch"
	EntryStart    EntryType = "start"
	EntryStop     EntryType = "stop"
)

// Entry is the envelope for all journal lines.
type Entry struct {
	Version int             `json:"v"`
	Type    EntryType       `json:"type"`
	TS      string          `json:"ts"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DispatchData records one auto-executed action and its outcome.
type DispatchData struct {
	SuggestionID string `json:"suggestion_id"`
	ClipboardID  string `json:"clipboard_id"`
	Action       string `json:"action"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
}

// Journal appends entries to a JSONL file.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// OpenJournal opens path for appending, creating it and its directory.
func OpenJournal(path string) (*Journal, error) {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return &Journal{file: f, now: time.Now}, nil
}

// Write appends one entry.
func (j *Journal) Write(typ EntryType, data any) error {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshaling journal data: %w", err)
		}
		raw = b
	}

	line, err := json.Marshal(Entry{
		Version: JournalVersion,
		Type:    typ,
		TS:      j.now().UTC().Format(time.RFC3339),
		Data:    raw,
	})
	if err != nil {
		return fmt.Errorf("marshaling journal entry: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("writing journal entry: %w", err)
	}
	return nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	return j.file.Close()
}

// ReadJournal reads every well-formed entry in path. A missing file yields
// no entries and no error.
func ReadJournal(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // Skip malformed lines
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("scanning journal: %w", err)
	}
	return entries, nil
}

// Dispatches decodes the dispatch entries of a journal, oldest first.
func Dispatches(entries []Entry) []DispatchData {
	var out []DispatchData
	for _, e := range entries {
		if e.Type != EntryDispatch {
			continue
		}
		var d DispatchData
		if err := json.Unmarshal(e.Data, &d); err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}
