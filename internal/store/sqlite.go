// ABOUTME: SQLite backend (modernc.org/sqlite): append-only suggestion and behavior tables
// ABOUTME: Opened with WAL, busy_timeout, and NORMAL sync; retention caps are enforced on insert

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/content"
)

const schema = `
CREATE TABLE IF NOT EXISTS suggestions (
	id                  TEXT PRIMARY KEY,
	created_at          TEXT NOT NULL,
	clipboard_id        TEXT NOT NULL,
	clipboard_timestamp TEXT NOT NULL DEFAULT '',
	intent              TEXT NOT NULL,
	confidence          REAL NOT NULL,
	action_taken        TEXT NOT NULL,
	body                TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_suggestions_clipboard_id ON suggestions(clipboard_id);

CREATE TABLE IF NOT EXISTS behavior_events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	ts        TEXT NOT NULL,
	content   TEXT NOT NULL,
	signature TEXT NOT NULL,
	action    TEXT NOT NULL
);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// SQLiteOptions tunes the SQLite backend.
type SQLiteOptions struct {
	MaxEntries int // suggestion retention; 0 means unbounded
	MaxEvents  int // behavior event retention; 0 means unbounded
}

// SQLite implements SuggestionLog and behavior.Log on one database.
type SQLite struct {
	db   *sql.DB
	opts SQLiteOptions
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, opts SQLiteOptions) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	return &SQLite{db: db, opts: opts}, nil
}

// Append inserts s, then drops the oldest rows beyond MaxEntries.
func (s *SQLite) Append(ctx context.Context, sg Suggestion) error {
	body, err := json.Marshal(sg)
	if err != nil {
		return fmt.Errorf("marshaling suggestion: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning suggestion insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO suggestions (id, created_at, clipboard_id, clipboard_timestamp, intent, confidence, action_taken, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sg.ID, sg.Timestamp, sg.ClipboardID, sg.ClipboardTimestamp, sg.Intent, sg.Confidence, sg.ActionTaken, string(body))
	if err != nil {
		return fmt.Errorf("inserting suggestion: %w", err)
	}

	if s.opts.MaxEntries > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM suggestions WHERE rowid NOT IN (SELECT rowid FROM suggestions ORDER BY rowid DESC LIMIT ?)`,
			s.opts.MaxEntries)
		if err != nil {
			return fmt.Errorf("trimming suggestions: %w", err)
		}
	}
	return tx.Commit()
}

// ProcessedIDs returns the distinct clipboard ids with a stored suggestion.
func (s *SQLite) ProcessedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT clipboard_id FROM suggestions WHERE clipboard_id != ''`)
	if err != nil {
		return nil, fmt.Errorf("querying processed ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning processed id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Recent returns up to limit suggestions, newest first. A non-positive
// limit returns all of them.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM suggestions ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning suggestion: %w", err)
		}
		var sg Suggestion
		if err := json.Unmarshal([]byte(body), &sg); err != nil {
			continue
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

// LoadEvents returns the retained behavior events, oldest first.
func (s *SQLite) LoadEvents(ctx context.Context) ([]behavior.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, content, signature, action FROM behavior_events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying behavior events: %w", err)
	}
	defer rows.Close()

	var out []behavior.Event
	for rows.Next() {
		var ts string
		var e behavior.Event
		if err := rows.Scan(&ts, &e.Content, &e.Signature, &e.Action); err != nil {
			return nil, fmt.Errorf("scanning behavior event: %w", err)
		}
		e.Timestamp, _ = content.ParseTimestamp(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendEvent inserts e, then drops the oldest events beyond MaxEvents.
func (s *SQLite) AppendEvent(ctx context.Context, e behavior.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning event insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO behavior_events (ts, content, signature, action) VALUES (?, ?, ?, ?)`,
		content.FormatTimestamp(e.Timestamp), e.Content, e.Signature, e.Action)
	if err != nil {
		return fmt.Errorf("inserting behavior event: %w", err)
	}

	if s.opts.MaxEvents > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM behavior_events WHERE seq <= (SELECT MAX(seq) FROM behavior_events) - ?`,
			s.opts.MaxEvents)
		if err != nil {
			return fmt.Errorf("trimming behavior events: %w", err)
		}
	}
	return tx.Commit()
}

// Flush is a no-op; every write is committed immediately.
func (s *SQLite) Flush() error { return nil }

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
