// ABOUTME: Tests for terminal rendering: plain output layout, truncation, and pattern listing
// ABOUTME: Renders into buffers so styling is off and output is deterministic

package render

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/concierge"
	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/suggest"
)

func classify(text string, typ content.Type) (content.Record, intent.Result) {
	rec := content.Record{ID: "c1", Type: typ, Preview: text}
	return rec, intent.NewClassifier(intent.ClassifierConfig{}).Classify(text, typ)
}

func TestClassification_Layout(t *testing.T) {
	t.Parallel()

	rec, res := classify("Meeting with design team tomorrow at 3:30 PM", content.TypeText)
	plan := suggest.NewComposer(suggest.Options{}).Compose(rec, res, behavior.Patterns{})

	var buf bytes.Buffer
	New(&buf, WithWidth(80)).Classification(rec, res, plan)

	rule := strings.Repeat("=", 70)
	want := []string{
		rule,
		">>> Meeting with design team tomorrow at 3:30 PM",
		rule,
		">>> calendar (100%) Calendar event indicators: meeting keyword detected, time...",
		">>> Suggestions:",
		"   [*] Add to Calendar",
		"   [*] Set Reminder",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestClassification_NoneWithLearnedHints(t *testing.T) {
	t.Parallel()

	rec, res := classify("pip install requests", content.TypeText)
	patterns := behavior.Patterns{Workflows: map[behavior.Pair]int{{From: "pip_install", To: "error_message"}: 3}}
	plan := suggest.NewComposer(suggest.Options{}).Compose(rec, res, patterns)

	var buf bytes.Buffer
	New(&buf, WithWidth(80)).Classification(rec, res, plan)
	out := buf.String()

	for _, s := range []string{
		">>> No clear intent detected",
		"   [P] Test: python -c 'import requests'",
		"   [P] Next: you usually copy error_message (3x)",
	} {
		if !strings.Contains(out, s+"\n") {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, RuleMarker) {
		t.Errorf("none result should have no rule items:\n%s", out)
	}
}

func TestClassification_TruncatesPreview(t *testing.T) {
	t.Parallel()

	long := "what is " + strings.Repeat("x", 100) + "\nsecond line"
	rec, res := classify(long, content.TypeText)

	var buf bytes.Buffer
	New(&buf, WithWidth(40)).Classification(rec, res, suggest.Plan{})

	for i, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if w := len(line); w > 40 {
			t.Errorf("line %d is %d columns wide; want <= 40: %q", i, w, line)
		}
	}
	if strings.Contains(buf.String(), "second line") {
		t.Error("only the first line of the preview should be shown")
	}
}

func TestOutcome_DuplicateAndDispatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, WithWidth(80))

	r.Outcome(concierge.Outcome{Record: content.Record{ID: "dup-1"}, Duplicate: true})
	if got := buf.String(); got != "    dup-1: duplicate of recent content, skipped\n" {
		t.Errorf("duplicate line = %q", got)
	}

	buf.Reset()
	rec, res := classify("https://go.dev", content.TypeURL)
	plan := suggest.NewComposer(suggest.Options{AutoExecute: true}).Compose(rec, res, behavior.Patterns{})
	r.Outcome(concierge.Outcome{Record: rec, Result: res, Plan: plan, DispatchErr: errors.New("no browser")})
	if !strings.Contains(buf.String(), "   ! open_in_browser failed: no browser\n") {
		t.Errorf("dispatch failure not rendered:\n%s", buf.String())
	}

	buf.Reset()
	r.Outcome(concierge.Outcome{Record: rec, Result: res, Plan: plan})
	if !strings.Contains(buf.String(), "   > executed open_in_browser\n") {
		t.Errorf("dispatch success not rendered:\n%s", buf.String())
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	p := behavior.Patterns{
		Workflows: map[behavior.Pair]int{
			{From: "pip_install", To: "error_message"}: 3,
			{From: "error_message", To: "pip_install"}: 2,
			{From: "url", To: "url"}:                   1,
		},
		ContextHints: map[string]int{"/home/me/proj": 4, "/tmp": 1},
		Events:       9,
	}

	var buf bytes.Buffer
	New(&buf, WithWidth(80)).Patterns(p, 2)

	want := []string{
		"Workflows (9 events mined)",
		"  pip_install          -> error_message           3x",
		"  error_message        -> pip_install             2x",
		"",
		"Working directories",
		"     4x /home/me/proj",
		"     1x /tmp",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPatterns_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf).Patterns(behavior.Patterns{}, 10)
	if buf.String() != "Workflows (0 events mined)\n  none yet\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNew_ColorForcedOn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(&buf, WithColor(true), WithWidth(60))
	if r.width != 60 {
		t.Errorf("width = %d; want 60", r.width)
	}
	r.Patterns(behavior.Patterns{}, 1)
	if !strings.Contains(buf.String(), "none yet") {
		t.Errorf("styled output lost text: %q", buf.String())
	}
}

func TestNew_RegularFileIsPlain(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := New(f)
	if r.width != defaultWidth {
		t.Errorf("width = %d; want %d", r.width, defaultWidth)
	}
	r.Patterns(behavior.Patterns{}, 1)
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("a regular file should get unstyled output: %q", data)
	}
}
