// ABOUTME: Behavior events: one row per processed clipboard item in the rolling history
// ABOUTME: JSON shape matches the behavior log's clipboard_events entries

package behavior

import (
	"encoding/json"
	"time"

	"github.com/mauromedda/concierge-go/internal/content"
)

// MaxContentLength bounds the content stored on an event.
const MaxContentLength = 200

// Event records that some content was seen and what was done with it.
type Event struct {
	Timestamp time.Time
	Content   string // clipped to MaxContentLength grapheme clusters
	Signature string
	Action    string // e.g. "classified_as_error"
}

type eventJSON struct {
	Timestamp string `json:"timestamp"`
	Content   string `json:"clipboard_content"`
	Signature string `json:"signature"`
	Action    string `json:"action"`
}

// MarshalJSON encodes the event in the behavior log format.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Timestamp: content.FormatTimestamp(e.Timestamp),
		Content:   e.Content,
		Signature: e.Signature,
		Action:    e.Action,
	})
}

// UnmarshalJSON decodes an event, tolerating zoneless or missing timestamps.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, _ := content.ParseTimestamp(raw.Timestamp)
	*e = Event{Timestamp: ts, Content: raw.Content, Signature: raw.Signature, Action: raw.Action}
	return nil
}

// ClassifiedAs is the action string recorded for a classified item.
func ClassifiedAs(intentName string) string {
	return "classified_as_" + intentName
}
