// ABOUTME: Local execution collaborator: exhaustive dispatch over intent.Action
// ABOUTME: Writes ICS, reminder, and contact files under a base dir; opens URLs and files via an Opener

package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/log"
)

// Sentinel errors.
var (
	ErrUnsupported = errors.New("action not supported")
	ErrNotFound    = errors.New("file not found")
)

// Executor performs an action on behalf of the user.
type Executor interface {
	Execute(ctx context.Context, a intent.Action, fields map[string]string, raw string) error
}

// Search endpoints. The query is appended query-escaped.
const (
	stackOverflowSearch = "https://stackoverflow.com/search?q="
	googleSearch        = "https://www.google.com/search?q="
	githubIssueSearch   = "https://github.com/search?type=issues&q="
	wikipediaSearch     = "https://en.wikipedia.org/wiki/Special:Search?search="
	imageSearch         = "https://images.google.com/"
)

const fileStamp = "20060102_150405"

// Local executes actions on this machine.
type Local struct {
	dir    string
	opener Opener
	now    func() time.Time
}

// Option configures a Local executor.
type Option func(*Local)

// WithOpener replaces the system opener.
func WithOpener(o Opener) Option { return func(l *Local) { l.opener = o } }

// WithClock replaces the file-naming clock.
func WithClock(now func() time.Time) Option { return func(l *Local) { l.now = now } }

// NewLocal creates an executor that writes generated files under dir.
func NewLocal(dir string, opts ...Option) *Local {
	l := &Local{
		dir:    dir,
		opener: NewSystemOpener(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Execute dispatches a. Every Action is handled explicitly.
func (l *Local) Execute(ctx context.Context, a intent.Action, fields map[string]string, raw string) error {
	if fields == nil {
		fields = map[string]string{}
	}

	switch a {
	case intent.ActionCreateCalendarEvent:
		return l.createEvent(ctx, fields, raw)
	case intent.ActionSetReminder, intent.ActionCreateReminder, intent.ActionAddToTodoList:
		return l.createReminder(fields, raw)
	case intent.ActionSearchStackOverflow:
		return l.search(ctx, stackOverflowSearch, errorQuery(fields, raw))
	case intent.ActionSearchGoogle:
		return l.search(ctx, googleSearch, searchQuery(fields, raw))
	case intent.ActionSearchGitHub:
		return l.search(ctx, githubIssueSearch, errorQuery(fields, raw))
	case intent.ActionSearchWikipedia:
		return l.search(ctx, wikipediaSearch, searchQuery(fields, raw))
	case intent.ActionSearchImage:
		return l.opener.Open(ctx, imageSearch)
	case intent.ActionOpenInBrowser:
		return l.opener.Open(ctx, pick(fields, "url", raw))
	case intent.ActionOpenFile:
		path, err := l.existing(pick(fields, "path", raw))
		if err != nil {
			return err
		}
		return l.opener.Open(ctx, path)
	case intent.ActionShowInFolder, intent.ActionOpenFileLocation:
		path, err := l.existing(pick(fields, "path", raw))
		if err != nil {
			return err
		}
		return l.opener.Reveal(ctx, path)
	case intent.ActionSaveContact:
		return l.saveContact(fields, raw)
	case intent.ActionSendEmail:
		email := fields["email"]
		if email == "" {
			return fmt.Errorf("send_email: no email address extracted")
		}
		return l.opener.Open(ctx, "mailto:"+email)
	case intent.ActionCallPhone:
		log.Info("phone number detected: %s (dial manually)", fields["phone"])
		return nil
	case intent.ActionExtractText:
		return fmt.Errorf("%w: text extraction from images", ErrUnsupported)
	case intent.ActionUnknown:
		return fmt.Errorf("%w: unknown action", ErrUnsupported)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupported, a)
	}
}

func (l *Local) search(ctx context.Context, endpoint, query string) error {
	return l.opener.Open(ctx, endpoint+url.QueryEscape(query))
}

func (l *Local) existing(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("checking %s: %w", path, err)
	}
	return path, nil
}

func (l *Local) createEvent(ctx context.Context, fields map[string]string, raw string) error {
	now := l.now()
	id := l.fileID(now)
	start, end := eventWindow(fields, now)

	title := fields["title"]
	if title == "" {
		title = "Clipboard Event"
	}
	path := filepath.Join(l.dir, "events", "event_"+id+".ics")
	if err := writeFile(path, []byte(renderICS(icsUID(id), title, raw, now, start, end))); err != nil {
		return err
	}
	log.Info("created calendar event: %s", path)
	return l.opener.Open(ctx, path)
}

type reminderFile struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Task        string `json:"task"`
	CreatedFrom string `json:"created_from"`
	Status      string `json:"status"`
}

func (l *Local) createReminder(fields map[string]string, raw string) error {
	now := l.now()
	id := "reminder_" + l.fileID(now)
	r := reminderFile{
		ID:          id,
		Timestamp:   content.FormatTimestamp(now),
		Task:        pick(fields, "task", raw),
		CreatedFrom: "clipboard",
		Status:      "pending",
	}
	path := filepath.Join(l.dir, "reminders", id+".json")
	if err := writeJSON(path, r); err != nil {
		return err
	}
	log.Info("created reminder: %s", path)
	return nil
}

type contactFile struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RawContent  string `json:"raw_content"`
	CreatedFrom string `json:"created_from"`
}

func (l *Local) saveContact(fields map[string]string, raw string) error {
	now := l.now()
	id := "contact_" + l.fileID(now)
	c := contactFile{
		ID:          id,
		Timestamp:   content.FormatTimestamp(now),
		Email:       fields["email"],
		Phone:       fields["phone"],
		RawContent:  raw,
		CreatedFrom: "clipboard",
	}
	path := filepath.Join(l.dir, "contacts", id+".json")
	if err := writeJSON(path, c); err != nil {
		return err
	}
	log.Info("saved contact: %s", path)
	return nil
}

// fileID is a sortable, collision-free file stem: timestamp plus a short
// random suffix.
func (l *Local) fileID(now time.Time) string {
	return now.Format(fileStamp) + "_" + uuid.NewString()[:8]
}

func errorQuery(fields map[string]string, raw string) string {
	return pick(fields, "error_query", pick(fields, "query", raw))
}

func searchQuery(fields map[string]string, raw string) string {
	return pick(fields, "query", pick(fields, "error_query", raw))
}

// pick returns fields[key] when set, else fallback, trimmed.
func pick(fields map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(fields[key]); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}
