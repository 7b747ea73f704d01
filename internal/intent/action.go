// ABOUTME: Action tagged variant: every action identifier the classifier can emit
// ABOUTME: Stable wire ids plus a static display-label table with raw-id fallback

package intent

import (
	"fmt"
	"strings"
)

// Action identifies a follow-up the execution collaborator can perform.
type Action int

const (
	ActionUnknown Action = iota
	ActionCreateCalendarEvent
	ActionSetReminder
	ActionCreateReminder
	ActionAddToTodoList
	ActionSearchStackOverflow
	ActionSearchGoogle
	ActionSearchGitHub
	ActionSearchWikipedia
	ActionSearchImage
	ActionSaveContact
	ActionSendEmail
	ActionCallPhone
	ActionOpenFile
	ActionShowInFolder
	ActionOpenFileLocation
	ActionOpenInBrowser
	ActionExtractText

	actionCount // sentinel; keep last
)

var actionIDs = [actionCount]string{
	ActionUnknown:             "unknown",
	ActionCreateCalendarEvent: "create_calendar_event",
	ActionSetReminder:         "set_reminder",
	ActionCreateReminder:      "create_reminder",
	ActionAddToTodoList:       "add_to_todo_list",
	ActionSearchStackOverflow: "search_stackoverflow",
	ActionSearchGoogle:        "search_google",
	ActionSearchGitHub:        "search_github",
	ActionSearchWikipedia:     "search_wikipedia",
	ActionSearchImage:         "search_image",
	ActionSaveContact:         "save_contact",
	ActionSendEmail:           "send_email",
	ActionCallPhone:           "call_phone",
	ActionOpenFile:            "open_file",
	ActionShowInFolder:        "show_in_folder",
	ActionOpenFileLocation:    "open_file_location",
	ActionOpenInBrowser:       "open_in_browser",
	ActionExtractText:         "extract_text",
}

// defaultLabels is the display table. Actions absent here render as their id.
var defaultLabels = map[Action]string{
	ActionCreateCalendarEvent: "Add to Calendar",
	ActionSetReminder:         "Set Reminder",
	ActionCreateReminder:      "Create Reminder",
	ActionAddToTodoList:       "Add to Todo",
	ActionSearchStackOverflow: "Search Stack Overflow",
	ActionSearchGoogle:        "Google Search",
	ActionSearchGitHub:        "Search GitHub",
	ActionSearchWikipedia:     "Search Wikipedia",
	ActionSearchImage:         "Search Images",
	ActionSaveContact:         "Save Contact",
	ActionSendEmail:           "Send Email",
	ActionCallPhone:           "Call Phone",
	ActionOpenFile:            "Open File",
	ActionShowInFolder:        "Show in Folder",
	ActionOpenFileLocation:    "Show in Folder",
	ActionOpenInBrowser:       "Open in Browser",
	ActionExtractText:         "Extract Text (OCR)",
}

// String returns the stable wire identifier.
func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return fmt.Sprintf("unknown(%d)", int(a))
	}
	return actionIDs[a]
}

// Label returns the display label, falling back to the raw identifier.
func (a Action) Label() string {
	if l, ok := defaultLabels[a]; ok {
		return l
	}
	return a.String()
}

// ParseAction maps a wire identifier to an Action.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := ActionUnknown + 1; i < actionCount; i++ {
		if actionIDs[i] == s {
			return i, nil
		}
	}
	return ActionUnknown, fmt.Errorf("unknown action: %q", s)
}

// AllActions returns every known action in declaration order.
func AllActions() []Action {
	out := make([]Action, 0, actionCount-1)
	for i := ActionUnknown + 1; i < actionCount; i++ {
		out = append(out, i)
	}
	return out
}

// MarshalText encodes the action by wire id.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a wire id.
func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ActionIDs converts actions to their wire identifiers.
func ActionIDs(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.String()
	}
	return out
}
