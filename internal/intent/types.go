// ABOUTME: Intent classification types for clipboard content: Intent enum, Result, and Signal
// ABOUTME: Result carries confidence, matched signals, ordered actions, and extracted fields

package intent

import (
	"fmt"
	"strings"
)

// Intent represents what the user probably wants to do with captured content.
type Intent int

const (
	IntentNone     Intent = iota // No clear intent
	IntentCalendar               // Schedule an event
	IntentReminder               // Remember a task
	IntentError                  // Search for an error
	IntentSearch                 // Look something up
	IntentContact                // Save or reach a contact
	IntentFile                   // Open a file path
	IntentOpenURL                // Open a URL (content type short-circuit)
	IntentImage                  // Inspect an image (content type short-circuit)
)

// String returns the wire name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentCalendar:
		return "calendar"
	case IntentReminder:
		return "reminder"
	case IntentError:
		return "error"
	case IntentSearch:
		return "search"
	case IntentContact:
		return "contact"
	case IntentFile:
		return "file"
	case IntentOpenURL:
		return "open_url"
	case IntentImage:
		return "image"
	default:
		return fmt.Sprintf("unknown(%d)", int(i))
	}
}

// ParseIntent maps a wire name back to an Intent.
func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return IntentNone, nil
	case "calendar":
		return IntentCalendar, nil
	case "reminder":
		return IntentReminder, nil
	case "error":
		return IntentError, nil
	case "search":
		return IntentSearch, nil
	case "contact":
		return IntentContact, nil
	case "file":
		return IntentFile, nil
	case "open_url":
		return IntentOpenURL, nil
	case "image":
		return IntentImage, nil
	default:
		return IntentNone, fmt.Errorf("unknown intent: %q", s)
	}
}

// MarshalText encodes the intent by name.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes an intent name.
func (i *Intent) UnmarshalText(b []byte) error {
	v, err := ParseIntent(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Signal is one matched sub-signal that contributed to a classification.
type Signal struct {
	Name   string  // e.g. "meeting", "time", "email"
	Weight float64 // contribution to the category score
	Detail string  // human-readable description, e.g. "time detected"
}

// Result is the classifier's output for one piece of content.
type Result struct {
	Intent     Intent
	Confidence float64 // 0.0-1.0
	Header     string  // reasoning prefix, e.g. "Calendar event indicators"
	Signals    []Signal
	Actions    []Action          // rule-derived, static per-category order
	Fields     map[string]string // category-specific extracted fields
	Preview    string            // bounded excerpt of the classified content
}

// Reasoning returns the matched-signal descriptions in match order.
func (r Result) Reasoning() []string {
	out := make([]string, 0, len(r.Signals))
	for _, s := range r.Signals {
		out = append(out, s.Detail)
	}
	return out
}

// Summary renders the reasoning as one human-readable line.
func (r Result) Summary() string {
	if r.Intent == IntentNone {
		return "No clear intent detected"
	}
	reasons := r.Reasoning()
	if r.Header == "" {
		return strings.Join(reasons, ", ")
	}
	return r.Header + ": " + strings.Join(reasons, ", ")
}

// IsNone reports whether the result carries no actionable intent.
func (r Result) IsNone() bool {
	return r.Intent == IntentNone
}

// noneResult is the first-class "nothing to do" classification.
func noneResult() Result {
	return Result{
		Intent:     IntentNone,
		Confidence: 0,
		Actions:    []Action{},
		Fields:     map[string]string{},
	}
}
