// ABOUTME: JSON-array suggestion log kept in memory and rewritten atomically in batches
// ABOUTME: One writer owns the file; the array is never re-read per append

package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mauromedda/concierge-go/internal/log"
)

// DefaultFlushEvery is the json backend's rewrite batch size.
const DefaultFlushEvery = 10

// JSONOptions tunes a JSON-file log.
type JSONOptions struct {
	FlushEvery int  // rewrite after this many appends (default DefaultFlushEvery)
	MaxEntries int  // keep only the newest entries; 0 means unbounded
	Deferred   bool // appends never rewrite; the owner calls Flush
}

func (o JSONOptions) withDefaults() JSONOptions {
	if o.FlushEvery <= 0 {
		o.FlushEvery = DefaultFlushEvery
	}
	if o.MaxEntries < 0 {
		o.MaxEntries = 0
	}
	return o
}

// JSONSuggestionLog is a SuggestionLog backed by a JSON array file.
type JSONSuggestionLog struct {
	path string
	opts JSONOptions

	mu      sync.Mutex
	entries []Suggestion
	pending int
}

// OpenJSONSuggestionLog loads the existing array at path. A missing file
// starts empty; a malformed one is logged and treated as empty.
func OpenJSONSuggestionLog(path string, opts JSONOptions) (*JSONSuggestionLog, error) {
	l := &JSONSuggestionLog{path: path, opts: opts.withDefaults()}

	var raws []json.RawMessage
	if _, err := readJSON(path, &raws); err != nil {
		log.Warn("suggestion log %s unreadable, starting empty: %v", path, err)
		raws = nil
	}
	for _, raw := range raws {
		var s Suggestion
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		l.entries = append(l.entries, s)
	}
	l.trim()
	return l, nil
}

// Append adds s and rewrites the file once FlushEvery appends are pending.
func (l *JSONSuggestionLog) Append(_ context.Context, s Suggestion) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, s)
	l.trim()
	l.pending++
	if !l.opts.Deferred && l.pending >= l.opts.FlushEvery {
		return l.flushLocked()
	}
	return nil
}

// ProcessedIDs returns the clipboard ids of every retained suggestion.
func (l *JSONSuggestionLog) ProcessedIDs(context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.entries))
	for _, s := range l.entries {
		if s.ClipboardID != "" {
			ids = append(ids, s.ClipboardID)
		}
	}
	return ids, nil
}

// Recent returns up to limit suggestions, newest first. A non-positive
// limit returns all of them.
func (l *JSONSuggestionLog) Recent(_ context.Context, limit int) ([]Suggestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Suggestion, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}

// Len returns the number of retained suggestions.
func (l *JSONSuggestionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Flush rewrites the file if anything is pending.
func (l *JSONSuggestionLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

// Close flushes pending entries.
func (l *JSONSuggestionLog) Close() error {
	return l.Flush()
}

func (l *JSONSuggestionLog) flushLocked() error {
	if l.pending == 0 {
		return nil
	}
	entries := l.entries
	if entries == nil {
		entries = []Suggestion{}
	}
	if err := writeJSONAtomic(l.path, entries); err != nil {
		return err
	}
	l.pending = 0
	return nil
}

func (l *JSONSuggestionLog) trim() {
	if l.opts.MaxEntries == 0 {
		return
	}
	if over := len(l.entries) - l.opts.MaxEntries; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}
