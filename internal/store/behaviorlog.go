// ABOUTME: JSON-object behavior log: clipboard_events, command_history, and a patterns snapshot
// ABOUTME: Implements behavior.Log and behavior.PatternSink with batched atomic rewrites

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/log"
)

// behaviorFile is the on-disk shape of the behavior log.
type behaviorFile struct {
	Events   []behavior.Event `json:"clipboard_events"`
	Commands json.RawMessage  `json:"command_history"`
	Patterns json.RawMessage  `json:"patterns"`
}

// behaviorFileOut is the write shape; Patterns is raw loaded data or a fresh snapshot.
type behaviorFileOut struct {
	Events   []behavior.Event `json:"clipboard_events"`
	Commands json.RawMessage  `json:"command_history"`
	Patterns any              `json:"patterns"`
}

// patternsJSON is a human-readable snapshot; it is never read back.
type patternsJSON struct {
	Workflows    map[string]int `json:"workflows,omitempty"`
	ContextHints map[string]int `json:"context_hints,omitempty"`
	Events       int            `json:"events"`
}

func snapshot(p behavior.Patterns) *patternsJSON {
	out := &patternsJSON{
		Workflows:    make(map[string]int, len(p.Workflows)),
		ContextHints: p.ContextHints,
		Events:       p.Events,
	}
	for pair, n := range p.Workflows {
		out.Workflows[pair.From+" -> "+pair.To] = n
	}
	return out
}

// JSONBehaviorLog is a behavior.Log backed by a JSON object file.
type JSONBehaviorLog struct {
	path string
	opts JSONOptions

	mu       sync.Mutex
	events   []behavior.Event
	commands json.RawMessage
	patterns json.RawMessage // as loaded
	snapshot *patternsJSON   // latest rebuild, preferred when set
	dirty    bool            // snapshot not yet written
	pending  int             // events not yet written

	// before runs ahead of every rewrite so a paired log reaches disk first.
	before func() error
}

// OpenJSONBehaviorLog loads the file at path. Missing or malformed files
// start empty; MaxEntries bounds the retained events.
func OpenJSONBehaviorLog(path string, opts JSONOptions) (*JSONBehaviorLog, error) {
	l := &JSONBehaviorLog{path: path, opts: opts.withDefaults()}

	var f behaviorFile
	if _, err := readJSON(path, &f); err != nil {
		log.Warn("behavior log %s unreadable, starting empty: %v", path, err)
		f = behaviorFile{}
	}
	l.events = f.Events
	l.commands = f.Commands
	l.patterns = f.Patterns
	l.trim()
	return l, nil
}

// LoadEvents returns a copy of the retained events.
func (l *JSONBehaviorLog) LoadEvents(context.Context) ([]behavior.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]behavior.Event, len(l.events))
	copy(out, l.events)
	return out, nil
}

// AppendEvent adds e and rewrites once FlushEvery changes are pending.
func (l *JSONBehaviorLog) AppendEvent(_ context.Context, e behavior.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, e)
	l.trim()
	l.pending++
	if l.pending >= l.opts.FlushEvery {
		return l.flushLocked()
	}
	return nil
}

// StorePatterns records a snapshot written with the next flush. Snapshots
// do not count toward FlushEvery.
func (l *JSONBehaviorLog) StorePatterns(_ context.Context, p behavior.Patterns) error {
	snap := snapshot(p)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = snap
	l.dirty = true
	return nil
}

// FlushAfter makes every rewrite of l first flush the log behind fn. Events
// then never reach disk ahead of the suggestions they were recorded for.
func (l *JSONBehaviorLog) FlushAfter(fn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.before = fn
}

// Flush rewrites the file if anything is pending.
func (l *JSONBehaviorLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

// Close flushes pending changes.
func (l *JSONBehaviorLog) Close() error {
	return l.Flush()
}

func (l *JSONBehaviorLog) flushLocked() error {
	if l.before != nil {
		if err := l.before(); err != nil {
			return fmt.Errorf("flushing paired log: %w", err)
		}
	}
	if l.pending == 0 && !l.dirty {
		return nil
	}
	f := behaviorFileOut{Events: l.events, Commands: l.commands}
	if f.Events == nil {
		f.Events = []behavior.Event{}
	}
	if len(f.Commands) == 0 {
		f.Commands = json.RawMessage("[]")
	}
	switch {
	case l.snapshot != nil:
		f.Patterns = l.snapshot
	case len(l.patterns) > 0:
		f.Patterns = l.patterns
	default:
		f.Patterns = struct{}{}
	}
	if err := writeJSONAtomic(l.path, f); err != nil {
		return err
	}
	l.pending = 0
	l.dirty = false
	return nil
}

func (l *JSONBehaviorLog) trim() {
	if l.opts.MaxEntries == 0 {
		return
	}
	if over := len(l.events) - l.opts.MaxEntries; over > 0 {
		l.events = append(l.events[:0:0], l.events[over:]...)
	}
}
