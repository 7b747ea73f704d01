// ABOUTME: ContentRecord model delivered by acquisition collaborators (clipboard, calendar)
// ABOUTME: Tolerant JSON decoding: unknown fields ignored, loose ISO-8601 timestamps accepted

package content

import (
	"encoding/json"
	"strings"
	"time"
)

// Type tags what the acquisition layer captured.
type Type string

const (
	TypeText  Type = "text"
	TypeURL   Type = "url"
	TypeFile  Type = "file"
	TypeImage Type = "image"
)

// ParseType maps a raw content_type value to a Type. Unknown or empty values
// are treated as text; the clipboard watcher's "files" alias maps to TypeFile.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "url":
		return TypeURL
	case "file", "files":
		return TypeFile
	case "image":
		return TypeImage
	default:
		return TypeText
	}
}

// Record is one immutable captured unit of content.
type Record struct {
	ID         string
	Timestamp  time.Time
	Type       Type
	Preview    string
	SourcePath string
}

// recordJSON is the on-disk shape written by acquisition collaborators.
type recordJSON struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Type       string  `json:"content_type"`
	Preview    string  `json:"content_preview"`
	FilePath   *string `json:"file_path,omitempty"`
	SourcePath string  `json:"source_path,omitempty"`
}

// timestampLayouts lists accepted timestamp formats, most specific first.
// Zoneless layouts cover writers that omit the UTC offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp. Zoneless values are read as
// local time. It returns the zero time and false when nothing matches.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way the suggestion and behavior logs store it.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// UnmarshalJSON decodes a record, tolerating malformed timestamps.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, _ := ParseTimestamp(raw.Timestamp)
	r.ID = raw.ID
	r.Timestamp = ts
	r.Type = ParseType(raw.Type)
	r.Preview = raw.Preview
	r.SourcePath = raw.SourcePath
	if r.SourcePath == "" && raw.FilePath != nil {
		r.SourcePath = *raw.FilePath
	}
	return nil
}

// MarshalJSON encodes a record in the acquisition format.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:         r.ID,
		Timestamp:  FormatTimestamp(r.Timestamp),
		Type:       string(r.Type),
		Preview:    r.Preview,
		SourcePath: r.SourcePath,
	})
}
