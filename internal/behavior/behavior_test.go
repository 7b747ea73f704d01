// ABOUTME: Tests for the behavior store, pattern miner, path hints, and fuzzy recall.

package behavior

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mauromedda/concierge-go/internal/log"
	"github.com/mauromedda/concierge-go/internal/signature"
)

type memLog struct {
	mu       sync.Mutex
	events   []Event
	patterns []Patterns
	err      error
	sinkErr  error
}

func (m *memLog) LoadEvents(context.Context) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...), nil
}

func (m *memLog) AppendEvent(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memLog) StorePatterns(_ context.Context, p Patterns) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sinkErr != nil {
		return m.sinkErr
	}
	m.patterns = append(m.patterns, p)
	return nil
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 10, 12, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newStore(t *testing.T, log Log, opts Options) *Store {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	s, err := Open(context.Background(), log, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestStore_PipInstallThenError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t, &memLog{}, Options{})

	for range 3 {
		if _, err := s.Record(ctx, "pip install llama-cpp-python", "classified_as_none"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Record(ctx, "ERROR: Failed building wheel for llama-cpp-python", "classified_as_error"); err != nil {
			t.Fatal(err)
		}
	}

	p := s.Rebuild(ctx)
	if got := p.Workflows[Pair{signature.PipInstall, signature.ErrorMessage}]; got != 3 {
		t.Errorf("pip_install -> error_message = %d; want 3", got)
	}
	want := []FollowUp{{Signature: signature.ErrorMessage, Count: 3}}
	if diff := cmp.Diff(want, p.SuggestFor(signature.PipInstall)); diff != "" {
		t.Errorf("SuggestFor mismatch (-want +got):\n%s", diff)
	}
}

func TestMine_PairCountsSumToAdjacentPairs(t *testing.T) {
	t.Parallel()

	texts := []string{"a b c", "x.py", "pip install x", "error!", "x.py", "pip install x", "https://go.dev", ""}
	events := make([]Event, len(texts))
	for i, txt := range texts {
		events[i] = Event{Content: txt, Signature: signature.Of(txt)}
	}

	p := Mine(events)
	total := 0
	for _, n := range p.Workflows {
		total += n
	}
	if total != len(events)-1 {
		t.Errorf("pair count total = %d; want %d", total, len(events)-1)
	}
	if p.Events != len(events) {
		t.Errorf("Events = %d; want %d", p.Events, len(events))
	}
	if diff := cmp.Diff(p, Mine(events)); diff != "" {
		t.Errorf("Mine not deterministic:\n%s", diff)
	}
}

func TestMine_LegacyEventsWithoutSignature(t *testing.T) {
	t.Parallel()

	events := []Event{
		{Content: "pip install numpy"},
		{Content: "Traceback (most recent call last):"},
		{Content: "pip install numpy"},
		{Content: "Traceback (most recent call last):"},
	}
	p := Mine(events)
	if got := p.Workflows[Pair{signature.PipInstall, signature.ErrorMessage}]; got != 2 {
		t.Errorf("pair count = %d; want 2", got)
	}
}

func TestMine_Empty(t *testing.T) {
	t.Parallel()

	p := Mine(nil)
	if len(p.Workflows) != 0 || len(p.ContextHints) != 0 || p.Events != 0 {
		t.Errorf("Mine(nil) = %+v; want empty", p)
	}
	if got := p.SuggestFor("anything"); len(got) != 0 {
		t.Errorf("SuggestFor on empty = %v", got)
	}
}

func TestPatterns_SuggestForOrdering(t *testing.T) {
	t.Parallel()

	p := Patterns{Workflows: map[Pair]int{
		{"a", "zeta"}:  2,
		{"a", "alpha"}: 2,
		{"a", "beta"}:  5,
		{"a", "once"}:  1,
		{"b", "beta"}:  9,
	}}
	want := []FollowUp{{"beta", 5}, {"alpha", 2}, {"zeta", 2}}
	if diff := cmp.Diff(want, p.SuggestFor("a")); diff != "" {
		t.Errorf("SuggestFor mismatch (-want +got):\n%s", diff)
	}

	top := p.Top(2)
	if len(top) != 2 || top[0].From != "b" || top[1].To != "beta" {
		t.Errorf("Top(2) = %+v", top)
	}
}

func TestStore_RebuildsEveryTenthAppend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := &memLog{}
	s := newStore(t, log, Options{})

	for i := 1; i <= 9; i++ {
		s.Record(ctx, "buy milk", "classified_as_reminder")
	}
	if got := s.Patterns().Events; got != 0 {
		t.Errorf("patterns rebuilt early: Events = %d", got)
	}
	s.Record(ctx, "buy milk", "classified_as_reminder")
	if got := s.Patterns().Events; got != 10 {
		t.Errorf("after 10th append Events = %d; want 10", got)
	}
	if len(log.patterns) != 1 {
		t.Errorf("pattern snapshots = %d; want 1", len(log.patterns))
	}
}

func TestStore_RebuildCountsLifetimeAppendsWhenCapped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t, nil, Options{MaxEvents: 5})

	for range 10 {
		s.Record(ctx, "hello world", "classified_as_none")
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d; want 5", s.Len())
	}
	if s.Appends() != 10 {
		t.Errorf("Appends = %d; want 10", s.Appends())
	}
	if got := s.Patterns().Events; got != 5 {
		t.Errorf("rebuild at capacity did not fire: Events = %d", got)
	}
}

func TestStore_FIFOEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t, nil, Options{MaxEvents: 3})
	for _, txt := range []string{"one", "two", "three", "four"} {
		s.Record(ctx, txt, "x")
	}

	var got []string
	for _, e := range s.Events() {
		got = append(got, e.Content)
	}
	if diff := cmp.Diff([]string{"two", "three", "four"}, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RecordClipsContentAndSignsFullText(t *testing.T) {
	t.Parallel()

	long := "pip install " + strings.Repeat("x", 300)
	s := newStore(t, nil, Options{})
	e, err := s.Record(context.Background(), long, "classified_as_none")
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(e.Content)); n != MaxContentLength {
		t.Errorf("content length = %d; want %d", n, MaxContentLength)
	}
	if e.Signature != signature.PipInstall {
		t.Errorf("Signature = %q; want %q", e.Signature, signature.PipInstall)
	}
}

func TestStore_PersistFailureKeepsMemoryUnchanged(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	s := newStore(t, &memLog{err: boom}, Options{})
	if _, err := s.Record(context.Background(), "hello", "x"); !errors.Is(err, boom) {
		t.Fatalf("Record error = %v; want %v", err, boom)
	}
	if s.Len() != 0 || s.Appends() != 0 {
		t.Errorf("failed append leaked into memory: Len=%d Appends=%d", s.Len(), s.Appends())
	}
}

func TestOpen_LoadsAndTruncates(t *testing.T) {
	t.Parallel()

	log := &memLog{}
	for _, txt := range []string{"pip install a", "error x", "pip install a", "error y", "keep me"} {
		log.events = append(log.events, Event{Content: txt, Signature: signature.Of(txt)})
	}
	s := newStore(t, log, Options{MaxEvents: 4})
	if s.Len() != 4 {
		t.Fatalf("Len = %d; want 4", s.Len())
	}
	p := s.Patterns()
	if p.Events != 4 {
		t.Errorf("Patterns.Events = %d; want 4", p.Events)
	}
	if got := p.Workflows[Pair{signature.ErrorMessage, signature.PipInstall}]; got != 1 {
		t.Errorf("error -> pip = %d; want 1", got)
	}
}

func TestDirs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"windows file", `C:\Users\me\proj\run.py`, []string{`C:\Users\me\proj`}},
		{"windows root file", `D:\notes.txt`, []string{`D:\`}},
		{"unix file", "cat /home/me/proj/main.go", []string{"/home/me/proj"}},
		{"unix top-level", "ls /etc/hosts", []string{"/etc"}},
		{"none", "just words and 3/4", nil},
		{"both", "C:\\a\\b.txt\nthen /srv/app/x.log", []string{`C:\a`, "/srv/app"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, Dirs(tt.in)); diff != "" {
				t.Errorf("Dirs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMine_ContextHints(t *testing.T) {
	t.Parallel()

	p := Mine([]Event{
		{Content: `C:\Users\me\proj\run.py`},
		{Content: `C:\Users\me\proj\util.py`},
		{Content: "nothing here"},
	})
	if got := p.ContextHints[`C:\Users\me\proj`]; got != 2 {
		t.Errorf("context hint count = %d; want 2", got)
	}
	if !p.HasContext(`C:\Users\me\proj`) || p.HasContext(`C:\other`) {
		t.Error("HasContext mismatch")
	}
}

func TestStore_Similar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t, nil, Options{})
	s.Record(ctx, "ModuleNotFoundError: No module named 'pandas'", "classified_as_error")
	s.Record(ctx, "ModuleNotFoundError: No module named 'numpy'", "classified_as_error")
	s.Record(ctx, "what is pandas", "classified_as_search")

	got := s.Similar("ModuleNotFoundError: No module named 'pandas'", signature.ErrorMessage, 3)
	if len(got) != 1 || got[0].Content != "ModuleNotFoundError: No module named 'pandas'" {
		t.Errorf("Similar = %+v; want the pandas error only", got)
	}
	if got := s.Similar("something else entirely", signature.ErrorMessage, 3); len(got) != 0 {
		t.Errorf("Similar for unrelated text = %+v; want none", got)
	}
	if got := s.Similar("", signature.ErrorMessage, 3); got != nil {
		t.Errorf("Similar for blank = %+v; want nil", got)
	}
}

func TestEvent_JSON(t *testing.T) {
	t.Parallel()

	data := []byte(`{"timestamp":"2024-10-12T09:15:30.123456","clipboard_content":"pip install x","signature":"pip_install","action":"classified_as_none","extra":1}`)
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Timestamp.IsZero() || e.Timestamp.Minute() != 15 {
		t.Errorf("Timestamp = %v", e.Timestamp)
	}
	if e.Signature != "pip_install" || e.Action != "classified_as_none" {
		t.Errorf("decoded %+v", e)
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"timestamp", "clipboard_content", "signature", "action"} {
		if _, ok := back[k]; !ok {
			t.Errorf("encoded event missing %q: %s", k, out)
		}
	}
}

func TestClassifiedAs(t *testing.T) {
	t.Parallel()

	if got := ClassifiedAs("error"); got != "classified_as_error" {
		t.Errorf("ClassifiedAs = %q", got)
	}
}

// Not parallel: swaps the process-wide log level and writer.
func TestStore_SnapshotFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prevOut := log.SetOutput(&buf)
	prevLevel := log.GetLevel()
	log.SetLevel(log.LevelDebug)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetLevel(prevLevel)
	})

	ml := &memLog{sinkErr: errors.New("disk full")}
	s := newStore(t, ml, Options{RebuildEvery: 1})
	if _, err := s.Record(context.Background(), "pip install requests", "classified_as_none"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if s.Patterns().Events != 1 {
		t.Errorf("Patterns().Events = %d; want 1", s.Patterns().Events)
	}
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("snapshot failure not logged; output = %q", buf.String())
	}
}
