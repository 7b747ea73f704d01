// ABOUTME: Table-driven tests for the per-category signal extractors.
// ABOUTME: Covers weights, floors, score capping, rounding, and winner-only field extraction.

package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		category  Intent
		input     string
		wantScore float64
		wantNames []string
	}{
		// ── Calendar ────────────────────────────────────────────────────
		{"calendar: all three signals", IntentCalendar, "Meeting with design team tomorrow at 3:30 PM", 1.0, []string{"meeting", "time", "date"}},
		{"calendar: call plus time", IntentCalendar, "call at 3pm", 0.7, []string{"meeting", "time"}},
		{"calendar: date alone below floor", IntentCalendar, "tomorrow", 0, nil},
		{"calendar: duration carries no weight", IntentCalendar, "Sync on 10/12/2024 for 30 minutes", 0, nil},
		{"calendar: absolute month date", IntentCalendar, "Zoom call on jan 5 for 30 minutes", 0.7, []string{"meeting", "date", "duration"}},

		// ── Reminder ────────────────────────────────────────────────────
		{"reminder: don't forget", IntentReminder, "Don't forget to call mom about dinner plans this weekend", 0.5, []string{"todo"}},
		{"reminder: verb alone below floor", IntentReminder, "buy milk", 0, nil},
		{"reminder: verb plus priority reaches floor", IntentReminder, "buy milk asap", 0.5, []string{"priority", "imperative"}},
		{"reminder: todo plus priority", IntentReminder, "todo: finish the report, urgent", 0.7, []string{"todo", "priority"}},
		{"reminder: long text has no verb opener", IntentReminder, "call the office and ask them about the lease renewal for next year", 0, nil},

		// ── Error ───────────────────────────────────────────────────────
		{"error: java stack trace", IntentError, "ERROR: NullPointerException at com.example.Service.processData(Service.java:142)", 1.0, []string{"error_keyword", "stack_trace", "language"}},
		{"error: keyword plus language", IntentError, "Python error: ModuleNotFoundError: No module named 'pandas'", 0.5, []string{"error_keyword", "language"}},
		{"error: python traceback", IntentError, "Traceback (most recent call last):\n  File \"app.py\", line 3", 0.5, []string{"stack_trace"}},
		{"error: keyword alone below floor", IntentError, "the build failed", 0, nil},

		// ── Search ──────────────────────────────────────────────────────
		{"search: question with mark", IntentSearch, "How do I center a div in CSS flexbox?", 0.7, []string{"question", "question_mark"}},
		{"search: definition", IntentSearch, "what is a monad", 0.9, []string{"question", "definition"}},
		{"search: define", IntentSearch, "define idempotent", 0.5, []string{"definition"}},
		{"search: all signals capped", IntentSearch, "what is a monad?", 1.0, []string{"question", "definition", "question_mark"}},
		{"search: nothing", IntentSearch, "ok thanks", 0, nil},

		// ── Contact ─────────────────────────────────────────────────────
		{"contact: email", IntentContact, "you can reach me at john.doe@example.com", 0.6, []string{"email"}},
		{"contact: phone", IntentContact, "Call me at +1-555-123-4567 when you get a chance", 0.6, []string{"phone"}},
		{"contact: both capped", IntentContact, "jane@corp.io / 555-123-4567", 1.0, []string{"email", "phone"}},

		// ── File ────────────────────────────────────────────────────────
		{"file: windows path", IntentFile, `The file is at C:\Users\Documents\Projects\report.pdf`, 0.7, []string{"windows_path"}},
		{"file: unix path", IntentFile, "see /usr/local/bin/tool for details", 0.7, []string{"unix_path"}},
		{"file: fractions are not paths", IntentFile, "and/or 3/4 of the time", 0, nil},
		{"file: urls are not paths", IntentFile, "https://example.com/a/b", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Score(tt.category, tt.input)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %.2f; want %.2f", got.Score, tt.wantScore)
			}
			var names []string
			for _, s := range got.Signals {
				names = append(names, s.Name)
			}
			if diff := cmp.Diff(tt.wantNames, names); diff != "" {
				t.Errorf("signals mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScore_NeverExceedsOne(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Meeting call zoom tomorrow 10/10/2024 3pm 4pm for 2 hours",
		"todo task reminder urgent asap critical buy",
		"error exception traceback line 4 python java go",
		"what is what are define meaning of how?",
		"a@b.co c@d.io 555-123-4567",
		`C:\x\y.txt /usr/a/b`,
	}
	for _, in := range inputs {
		for _, cat := range categoryIntents() {
			ps := Score(cat, in)
			if ps.Score < 0 || ps.Score > 1 {
				t.Errorf("Score(%v, %q) = %.2f; want within [0,1]", cat, in, ps.Score)
			}
		}
	}
}

func TestCategoryIntents_PriorityOrder(t *testing.T) {
	t.Parallel()

	want := []Intent{IntentCalendar, IntentReminder, IntentError, IntentSearch, IntentContact, IntentFile}
	if diff := cmp.Diff(want, categoryIntents()); diff != "" {
		t.Errorf("priority order mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category Intent
		input    string
		want     map[string]string
	}{
		{
			"calendar fields",
			IntentCalendar,
			"Standup call 10/12/2024 at 9:30 am for 15 min with the platform and infra folks",
			map[string]string{
				"time":     "9:30 am",
				"date":     "10/12/2024",
				"duration": "15 min",
				"title":    "Standup call 10/12/2024 at 9:30 am for 15",
			},
		},
		{
			"calendar relative date",
			IntentCalendar,
			"Meeting with design team Tomorrow at 3:30 PM",
			map[string]string{"time": "3:30 PM", "date": "tomorrow", "title": "Meeting with design team Tomorrow at 3:30 PM"},
		},
		{
			"reminder task",
			IntentReminder,
			"  remember to water the plants  ",
			map[string]string{"task": "remember to water the plants"},
		},
		{
			"error query after keyword",
			IntentError,
			"Python error: ModuleNotFoundError: No module named 'pandas'",
			map[string]string{"error_query": "modulenotfounderror: no module named 'pandas'"},
		},
		{
			"error query fallback",
			IntentError,
			"Traceback (most recent call last)",
			map[string]string{"error_query": "Traceback (most recent call last)"},
		},
		{
			"contact fields",
			IntentContact,
			"Call me at +1-555-123-4567 or mail jane@corp.io",
			map[string]string{"email": "jane@corp.io", "phone": "1-555-123-4567"},
		},
		{
			"windows path",
			IntentFile,
			`The file is at C:\Users\Documents\Projects\report.pdf`,
			map[string]string{"path": `C:\Users\Documents\Projects\report.pdf`},
		},
		{
			"unix path",
			IntentFile,
			"open ~/src/app/main.go please",
			map[string]string{"path": "~/src/app/main.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, extractFields(tt.category, tt.input)); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScore_NonCategory(t *testing.T) {
	t.Parallel()

	if ps := Score(IntentOpenURL, "https://example.com"); ps.Score != 0 || ps.Signals != nil {
		t.Errorf("Score(open_url) = %+v; want zero", ps)
	}
}
