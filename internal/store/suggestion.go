// ABOUTME: Persisted suggestion record and its construction from a classified content record
// ABOUTME: Suggestion ids are prefixed, time-sortable UUIDv7 strings

package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/intent"
)

// SuggestionIDPrefix scopes suggestion ids.
const SuggestionIDPrefix = "concierge_"

// IDGenerator produces unique string identifiers.
type IDGenerator func() string

// UUIDv7 returns a generator of RFC 9562 v7 UUID strings.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id produced by gen.
func Prefixed(prefix string, gen IDGenerator) IDGenerator {
	return func() string {
		return prefix + gen()
	}
}

// SuggestionIDs is the default suggestion id generator.
func SuggestionIDs() IDGenerator {
	return Prefixed(SuggestionIDPrefix, UUIDv7())
}

// Suggestion is one processed record as written to the suggestion log.
type Suggestion struct {
	ID                 string            `json:"id"`
	Timestamp          string            `json:"timestamp"`
	ClipboardID        string            `json:"clipboard_id"`
	ClipboardTimestamp string            `json:"clipboard_timestamp"`
	Intent             string            `json:"intent"`
	Confidence         float64           `json:"confidence"`
	Reasoning          string            `json:"reasoning"`
	SuggestedActions   []string          `json:"suggested_actions"`
	ExtractedData      map[string]string `json:"extracted_data"`
	ContentPreview     string            `json:"content_preview"`
	ActionTaken        string            `json:"action_taken"`
	Personalized       []string          `json:"personalized_suggestions,omitempty"`
	Fingerprint        string            `json:"fingerprint,omitempty"` // of the full normalized content
}

// NewSuggestion assembles the persisted form of a classification.
func NewSuggestion(id string, at time.Time, rec content.Record, res intent.Result, learned []string, actionTaken string) Suggestion {
	fields := res.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return Suggestion{
		ID:                 id,
		Timestamp:          content.FormatTimestamp(at),
		ClipboardID:        rec.ID,
		ClipboardTimestamp: content.FormatTimestamp(rec.Timestamp),
		Intent:             res.Intent.String(),
		Confidence:         res.Confidence,
		Reasoning:          res.Summary(),
		SuggestedActions:   intent.ActionIDs(res.Actions),
		ExtractedData:      fields,
		ContentPreview:     res.Preview,
		ActionTaken:        actionTaken,
		Personalized:       learned,
	}
}
