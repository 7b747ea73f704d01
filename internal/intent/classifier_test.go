// ABOUTME: Tests for the classifier orchestrator: short-circuits, winner selection, and floors.
// ABOUTME: Covers the documented scenarios, exact-tie priority order, and idempotence.

package intent

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mauromedda/concierge-go/internal/content"
)

func TestClassifier_Scenarios(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{})

	tests := []struct {
		name        string
		input       string
		typ         content.Type
		wantIntent  Intent
		wantConf    float64
		wantActions []Action
	}{
		{"calendar meeting", "Meeting with design team tomorrow at 3:30 PM", content.TypeText, IntentCalendar, 1.0,
			[]Action{ActionCreateCalendarEvent, ActionSetReminder}},
		{"contact email", "you can reach me at john.doe@example.com", content.TypeText, IntentContact, 0.6,
			[]Action{ActionSaveContact, ActionSendEmail}},
		{"contact phone", "Call me at +1-555-123-4567 when you get a chance", content.TypeText, IntentContact, 0.6,
			[]Action{ActionSaveContact, ActionCallPhone}},
		{"reminder beats calendar", "Don't forget to call mom about dinner plans this weekend", content.TypeText, IntentReminder, 0.5,
			[]Action{ActionCreateReminder, ActionAddToTodoList}},
		{"error", "ERROR: NullPointerException at com.example.Service.processData(Service.java:142)", content.TypeText, IntentError, 1.0,
			[]Action{ActionSearchStackOverflow, ActionSearchGoogle, ActionSearchGitHub}},
		{"search", "How do I center a div in CSS flexbox?", content.TypeText, IntentSearch, 0.7,
			[]Action{ActionSearchGoogle, ActionSearchWikipedia}},
		{"file path in text", `The file is at C:\Users\Documents\Projects\report.pdf`, content.TypeText, IntentFile, 0.7,
			[]Action{ActionOpenFile, ActionOpenFileLocation}},
		{"url type", "https://docs.python.org/3/library/re.html", content.TypeURL, IntentOpenURL, 1.0,
			[]Action{ActionOpenInBrowser}},
		{"file type", `C:\Users\me\notes.txt`, content.TypeFile, IntentFile, 1.0,
			[]Action{ActionOpenFile, ActionShowInFolder}},
		{"image type", "<binary>", content.TypeImage, IntentImage, 0.7,
			[]Action{ActionExtractText, ActionSearchImage}},
		{"nothing to do", "ok thanks", content.TypeText, IntentNone, 0, []Action{}},
		{"blank", "   \n\t", content.TypeText, IntentNone, 0, []Action{}},
		{"blank url", "", content.TypeURL, IntentNone, 0, []Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Classify(tt.input, tt.typ)
			if got.Intent != tt.wantIntent {
				t.Errorf("Intent = %v; want %v", got.Intent, tt.wantIntent)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %.2f; want %.2f", got.Confidence, tt.wantConf)
			}
			if diff := cmp.Diff(tt.wantActions, got.Actions); diff != "" {
				t.Errorf("actions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifier_ExtractedFields(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{})

	got := c.Classify("you can reach me at john.doe@example.com", content.TypeText)
	if got.Fields["email"] != "john.doe@example.com" {
		t.Errorf("email = %q; want john.doe@example.com", got.Fields["email"])
	}

	cal := c.Classify("Meeting with design team tomorrow at 3:30 PM", content.TypeText)
	want := map[string]string{
		"time":  "3:30 PM",
		"date":  "tomorrow",
		"title": "Meeting with design team tomorrow at 3:30 PM",
	}
	if diff := cmp.Diff(want, cal.Fields); diff != "" {
		t.Errorf("calendar fields mismatch (-want +got):\n%s", diff)
	}

	u := c.Classify("https://docs.python.org/3/library/re.html", content.TypeURL)
	if u.Fields["domain"] != "python.org" {
		t.Errorf("domain = %q; want python.org", u.Fields["domain"])
	}
	if u.Fields["url"] != "https://docs.python.org/3/library/re.html" {
		t.Errorf("url = %q", u.Fields["url"])
	}
}

func TestClassifier_Reasoning(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{})
	got := c.Classify("Meeting with design team tomorrow at 3:30 PM", content.TypeText)

	wantReasons := []string{"meeting keyword detected", "time detected", "relative date detected"}
	if diff := cmp.Diff(wantReasons, got.Reasoning()); diff != "" {
		t.Errorf("reasoning mismatch (-want +got):\n%s", diff)
	}
	wantSummary := "Calendar event indicators: meeting keyword detected, time detected, relative date detected"
	if got.Summary() != wantSummary {
		t.Errorf("Summary = %q; want %q", got.Summary(), wantSummary)
	}

	none := c.Classify("ok thanks", content.TypeText)
	if none.Summary() != "No clear intent detected" {
		t.Errorf("none Summary = %q", none.Summary())
	}

	url := c.Classify("https://go.dev", content.TypeURL)
	if url.Summary() != "URL detected in clipboard" {
		t.Errorf("url Summary = %q", url.Summary())
	}
}

func TestClassifier_ExactTieGoesToEarlierCategory(t *testing.T) {
	t.Parallel()

	// calendar: meeting 0.4 + time 0.3 = 0.7; search: "when" 0.4 + "?" 0.3 = 0.7.
	input := "when is the meeting at 3pm?"
	if cs, ss := Score(IntentCalendar, input).Score, Score(IntentSearch, input).Score; cs != ss {
		t.Fatalf("precondition: calendar %.2f != search %.2f", cs, ss)
	}

	got := NewClassifier(ClassifierConfig{}).Classify(input, content.TypeText)
	if got.Intent != IntentCalendar {
		t.Errorf("Intent = %v; want %v (earlier in priority order)", got.Intent, IntentCalendar)
	}
}

func TestClassifier_GlobalFloor(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{GlobalFloor: 0.95})
	got := c.Classify("what is a monad", content.TypeText)
	if got.Intent != IntentNone {
		t.Errorf("Intent = %v; want none under a 0.95 floor", got.Intent)
	}
	if got.Confidence != 0 || len(got.Actions) != 0 {
		t.Errorf("none result should carry no confidence or actions, got %+v", got)
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{})
	inputs := []string{
		"Meeting with design team tomorrow at 3:30 PM",
		"Python error: ModuleNotFoundError: No module named 'pandas'",
		"ok thanks",
		"jane@corp.io / 555-123-4567",
	}
	for _, in := range inputs {
		first := c.Classify(in, content.TypeText)
		second := c.Classify(in, content.TypeText)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Classify(%q) not idempotent:\n%s", in, diff)
		}
	}
}

func TestClassifier_ConfidenceBounds(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{})
	inputs := []string{
		"", "x", "?", "how?", "/a/b", "call", "error", "todo", "a@b.co",
		strings.Repeat("meeting tomorrow at 3pm error traceback what is ", 40),
		"C:\\", "\x00\xff", "\u65e5\u672c\u8a9e\u306e\u30c6\u30ad\u30b9\u30c8",
	}
	for _, in := range inputs {
		got := c.Classify(in, content.TypeText)
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Classify(%q) confidence %.2f out of range", in, got.Confidence)
		}
		if got.Confidence == 0 && (got.Intent != IntentNone || len(got.Actions) != 0) {
			t.Errorf("Classify(%q): zero confidence must mean none with no actions, got %+v", in, got)
		}
	}
}

func TestClassifier_PreviewBounded(t *testing.T) {
	t.Parallel()

	long := "what is " + strings.Repeat("a", 200)
	got := NewClassifier(ClassifierConfig{}).Classify(long, content.TypeText)
	if got.Preview != long[:100]+"..." {
		t.Errorf("Preview = %q", got.Preview)
	}
}

func TestClassifier_DefaultConfig(t *testing.T) {
	t.Parallel()

	c := NewClassifier(ClassifierConfig{})
	if c.config.GlobalFloor != 0.3 {
		t.Errorf("default GlobalFloor = %.2f; want 0.30", c.config.GlobalFloor)
	}
	if c.config.PreviewLength != content.PreviewLength {
		t.Errorf("default PreviewLength = %d; want %d", c.config.PreviewLength, content.PreviewLength)
	}
}

func TestIntent_StringRoundTrip(t *testing.T) {
	t.Parallel()

	for i := IntentNone; i <= IntentImage; i++ {
		got, err := ParseIntent(i.String())
		if err != nil || got != i {
			t.Errorf("ParseIntent(%q) = %v, %v", i.String(), got, err)
		}
	}
	if _, err := ParseIntent("plan"); err == nil {
		t.Error("expected error for unknown intent")
	}
}

func TestAction_IDsAndLabels(t *testing.T) {
	t.Parallel()

	for _, a := range AllActions() {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v", a.String(), got, err)
		}
		if a.Label() == "" {
			t.Errorf("Label(%v) empty", a)
		}
	}
	if ActionCreateCalendarEvent.Label() != "Add to Calendar" {
		t.Errorf("label = %q", ActionCreateCalendarEvent.Label())
	}
	if ActionUnknown.Label() != "unknown" {
		t.Errorf("unmapped label should fall back to id, got %q", ActionUnknown.Label())
	}
	if _, err := ParseAction("launch_rocket"); err == nil {
		t.Error("expected error for unknown action id")
	}
}
