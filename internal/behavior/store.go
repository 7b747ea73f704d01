// ABOUTME: Behavior store: bounded FIFO of events, persisted through a Log, with periodic re-mining
// ABOUTME: Patterns are rebuilt every RebuildEvery appends counted over the store's lifetime

package behavior

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/log"
	"github.com/mauromedda/concierge-go/internal/signature"
)

// Defaults for Options.
const (
	DefaultMaxEvents    = 1000
	DefaultRebuildEvery = 10
)

// similarKeyLength bounds the fuzzy recall pattern.
const similarKeyLength = 40

// Log persists behavior events.
type Log interface {
	// LoadEvents returns the persisted events, oldest first.
	LoadEvents(ctx context.Context) ([]Event, error)
	// AppendEvent persists one event.
	AppendEvent(ctx context.Context, e Event) error
}

// PatternSink is implemented by logs that also persist the mined patterns.
type PatternSink interface {
	StorePatterns(ctx context.Context, p Patterns) error
}

// Options configures a Store.
type Options struct {
	MaxEvents    int              // FIFO capacity (default 1000)
	RebuildEvery int              // re-mine after this many appends (default 10)
	Now          func() time.Time // event clock (default time.Now)
}

func (o Options) withDefaults() Options {
	if o.MaxEvents <= 0 {
		o.MaxEvents = DefaultMaxEvents
	}
	if o.RebuildEvery <= 0 {
		o.RebuildEvery = DefaultRebuildEvery
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Store owns the rolling event history and the current Patterns.
type Store struct {
	log  Log
	opts Options

	mu       sync.Mutex
	events   []Event
	appends  int
	patterns Patterns
}

// Open loads the persisted history through backing and mines it once.
// A nil backing keeps the store in memory only.
func Open(ctx context.Context, backing Log, opts Options) (*Store, error) {
	s := &Store{log: backing, opts: opts.withDefaults()}
	if backing != nil {
		events, err := backing.LoadEvents(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading behavior events: %w", err)
		}
		if len(events) > s.opts.MaxEvents {
			events = events[len(events)-s.opts.MaxEvents:]
		}
		s.events = events
	}
	s.patterns = Mine(s.events)
	return s, nil
}

// Record appends an event for text, persists it, and re-mines every
// RebuildEvery-th append. Nothing is kept in memory when persisting fails.
func (s *Store) Record(ctx context.Context, text, action string) (Event, error) {
	e := Event{
		Timestamp: s.opts.Now(),
		Content:   content.Clip(text, MaxContentLength),
		Signature: signature.Of(text),
		Action:    action,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.log != nil {
		if err := s.log.AppendEvent(ctx, e); err != nil {
			return Event{}, fmt.Errorf("persisting behavior event: %w", err)
		}
	}

	s.events = append(s.events, e)
	if over := len(s.events) - s.opts.MaxEvents; over > 0 {
		s.events = append(s.events[:0:0], s.events[over:]...)
	}
	s.appends++

	if s.appends%s.opts.RebuildEvery == 0 {
		s.rebuildLocked(ctx)
	}
	return e, nil
}

// Rebuild re-mines the current history and returns the new Patterns.
func (s *Store) Rebuild(ctx context.Context) Patterns {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx)
}

func (s *Store) rebuildLocked(ctx context.Context) Patterns {
	s.patterns = Mine(s.events)
	if sink, ok := s.log.(PatternSink); ok {
		// Patterns are derived data; a failed snapshot is rebuilt on next load.
		if err := sink.StorePatterns(ctx, s.patterns); err != nil {
			log.Debug("behavior: storing patterns snapshot: %v", err)
		}
	}
	return s.patterns
}

// Patterns returns the patterns from the most recent rebuild.
func (s *Store) Patterns() Patterns {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patterns
}

// Events returns a copy of the history, oldest first.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of events held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Appends returns the lifetime append count.
func (s *Store) Appends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends
}

// Similar returns up to limit earlier events with signature sig whose first
// line fuzzy-matches the first line of text, best match first and most
// recent first among equals.
func (s *Store) Similar(text, sig string, limit int) []Event {
	key := similarKey(text)
	if key == "" || limit <= 0 {
		return nil
	}

	s.mu.Lock()
	var candidates eventSource
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Signature == sig {
			candidates = append(candidates, s.events[i])
		}
	}
	s.mu.Unlock()

	matches := fuzzy.FindFrom(key, candidates)
	out := make([]Event, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, candidates[m.Index])
	}
	return out
}

// eventSource adapts events to fuzzy.Source over their similarity keys.
type eventSource []Event

func (e eventSource) String(i int) string { return similarKey(e[i].Content) }
func (e eventSource) Len() int            { return len(e) }

func similarKey(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.ToLower(content.Clip(strings.TrimSpace(line), similarKeyLength))
}
