// ABOUTME: Storage contracts for the suggestion log and backend selection (json or sqlite)
// ABOUTME: Both backends also implement behavior.Log for the rolling event history

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mauromedda/concierge-go/internal/behavior"
)

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// SuggestionLog persists processed suggestions.
type SuggestionLog interface {
	Append(ctx context.Context, s Suggestion) error
	// ProcessedIDs returns the clipboard ids already covered by a suggestion.
	ProcessedIDs(ctx context.Context) ([]string, error)
	// Recent returns up to limit suggestions, newest first.
	Recent(ctx context.Context, limit int) ([]Suggestion, error)
	Flush() error
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Backend         string // "json" (default) or "sqlite"
	SuggestionsPath string // json backend
	BehaviorPath    string // json backend
	DBPath          string // sqlite backend
	FlushEvery      int    // json backend: rewrite after this many appends
	MaxEntries      int    // suggestion retention cap; 0 means unbounded
	MaxEvents       int    // behavior retention cap
}

// Stores bundles the opened logs.
type Stores struct {
	Suggestions SuggestionLog
	Behavior    behavior.Log

	flushers []func() error
	closers  []func() error
}

// Open opens the configured backend.
func Open(cfg Config) (*Stores, error) {
	switch cfg.Backend {
	case "", BackendJSON:
		// The behavior log drives batching: each of its rewrites writes the
		// suggestion log first, so a crash can lose events but never leave
		// events on disk for records whose suggestion is missing.
		sl, err := OpenJSONSuggestionLog(cfg.SuggestionsPath, JSONOptions{MaxEntries: cfg.MaxEntries, Deferred: true})
		if err != nil {
			return nil, err
		}
		bl, err := OpenJSONBehaviorLog(cfg.BehaviorPath, JSONOptions{FlushEvery: cfg.FlushEvery, MaxEntries: cfg.MaxEvents})
		if err != nil {
			sl.Close()
			return nil, err
		}
		bl.FlushAfter(sl.Flush)
		return &Stores{
			Suggestions: sl,
			Behavior:    bl,
			flushers:    []func() error{sl.Flush, bl.Flush},
			closers:     []func() error{sl.Close, bl.Close},
		}, nil

	case BackendSQLite:
		if err := ensureDir(filepath.Dir(cfg.DBPath)); err != nil {
			return nil, err
		}
		db, err := OpenSQLite(cfg.DBPath, SQLiteOptions{MaxEntries: cfg.MaxEntries, MaxEvents: cfg.MaxEvents})
		if err != nil {
			return nil, err
		}
		return &Stores{
			Suggestions: db,
			Behavior:    db,
			flushers:    []func() error{db.Flush},
			closers:     []func() error{db.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Flush writes any buffered state.
func (s *Stores) Flush() error {
	var errs []error
	for _, f := range s.flushers {
		if err := f(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and releases every backend.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
