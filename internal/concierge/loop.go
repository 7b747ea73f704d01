// ABOUTME: Poll loop: reads the content history, dedups, classifies, composes, and persists
// ABOUTME: One goroutine owns the processed set, gate, and behavior store; no locking across records

package concierge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/concierge-go/internal/action"
	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/dedup"
	"github.com/mauromedda/concierge-go/internal/eventbus"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/log"
	"github.com/mauromedda/concierge-go/internal/store"
	"github.com/mauromedda/concierge-go/internal/suggest"
)

// Journal records dispatch outcomes. *store.Journal implements it.
type Journal interface {
	Write(typ store.EntryType, data any) error
}

// Deps are the collaborators a Loop drives. Behavior, Executor, and Journal
// may be nil: no behavior persistence, no dispatch, no journal.
type Deps struct {
	Suggestions store.SuggestionLog
	Behavior    behavior.Log
	Executor    action.Executor
	Journal     Journal
}

// Options configures a Loop.
type Options struct {
	HistoryPath string
	Schedule    string // robfig/cron spec, e.g. "@every 2s"
	Watch       bool   // also wake on writes to HistoryPath
	DedupWindow time.Duration
	Classifier  intent.ClassifierConfig
	Composer    suggest.Options // Recall is wired to the behavior store by Load
	Behavior    behavior.Options
	Now         func() time.Time
	NewID       store.IDGenerator
}

// Outcome is published once per handled record.
type Outcome struct {
	Record      content.Record
	Result      intent.Result
	Plan        suggest.Plan
	Suggestion  store.Suggestion
	Duplicate   bool  // suppressed by the dedup gate; nothing persisted
	DispatchErr error // set when auto-execute ran and failed
}

// Stats summarizes one cycle.
type Stats struct {
	Read       int // records in the history file
	New        int // records not yet processed
	Processed  int // suggestions persisted
	Duplicates int
	Dispatched int
	Failed     int // records left unmarked for retry
}

// Loop is the concierge control loop.
type Loop struct {
	deps Deps
	opts Options

	classifier *intent.Classifier
	composer   *suggest.Composer
	gate       *dedup.Gate
	processed  *dedup.Processed
	behavior   *behavior.Store
	bus        *eventbus.Bus[Outcome]
}

// New creates a loop. Call Load before RunOnce or Run.
func New(deps Deps, opts Options) *Loop {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = store.SuggestionIDs()
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	return &Loop{
		deps:       deps,
		opts:       opts,
		classifier: intent.NewClassifier(opts.Classifier),
		gate:       dedup.NewGate(opts.DedupWindow, dedup.WithClock(opts.Now)),
		processed:  dedup.NewProcessed(),
		bus:        eventbus.New[Outcome](),
	}
}

// Events returns the bus that receives one Outcome per handled record.
func (l *Loop) Events() *eventbus.Bus[Outcome] { return l.bus }

// Patterns returns the behavior patterns currently used for suggestions.
func (l *Loop) Patterns() behavior.Patterns {
	if l.behavior == nil {
		return behavior.Patterns{}
	}
	return l.behavior.Patterns()
}

// Processed returns how many record ids are marked as handled.
func (l *Loop) Processed() int { return l.processed.Len() }

// seedLimit bounds how many recent suggestions re-arm the dedup gate at Load.
const seedLimit = 256

// Load restores the processed-id set and the dedup gate from the suggestion
// log and the behavior history from its log, concurrently.
func (l *Loop) Load(ctx context.Context) error {
	var (
		ids    []string
		recent []store.Suggestion
		bs     *behavior.Store
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ids, err = l.deps.Suggestions.ProcessedIDs(gctx)
		if err != nil {
			return fmt.Errorf("loading processed ids: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = l.deps.Suggestions.Recent(gctx, seedLimit)
		if err != nil {
			return fmt.Errorf("loading recent suggestions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bs, err = behavior.Open(gctx, l.deps.Behavior, l.opts.Behavior)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	l.processed = dedup.NewProcessed(ids...)
	l.seedGate(recent)
	l.behavior = bs

	copts := l.opts.Composer
	copts.Recall = bs
	l.composer = suggest.NewComposer(copts)

	log.Info("concierge: %d processed ids, %d behavior events, %d workflows",
		l.processed.Len(), bs.Len(), len(bs.Patterns().Workflows))
	return nil
}

// seedGate records the fingerprints of recent suggestions, oldest first, so
// content repeated across a restart is still suppressed.
func (l *Loop) seedGate(recent []store.Suggestion) {
	for i := len(recent) - 1; i >= 0; i-- {
		sg := recent[i]
		if sg.Fingerprint == "" {
			continue
		}
		at, ok := content.ParseTimestamp(sg.ClipboardTimestamp)
		if !ok || at.IsZero() {
			if at, ok = content.ParseTimestamp(sg.Timestamp); !ok {
				continue
			}
		}
		l.gate.Seen(sg.Fingerprint, at)
	}
}

// RunOnce processes every unprocessed record in the history file, in file
// order, then flushes the stores. Cancellation is honored between records.
// An unreadable history is logged and treated as empty.
func (l *Loop) RunOnce(ctx context.Context) (Stats, error) {
	if l.composer == nil {
		return Stats{}, errors.New("concierge: Load must be called before RunOnce")
	}

	var stats Stats
	records, err := content.ReadHistory(l.opts.HistoryPath)
	if err != nil {
		log.Warn("concierge: %v", err)
	}
	stats.Read = len(records)

	defer l.flush()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if rec.ID == "" || l.processed.Has(rec.ID) {
			continue
		}
		stats.New++
		l.handle(ctx, rec, &stats)
	}

	if stats.New > 0 {
		log.Debug("concierge: cycle read=%d new=%d processed=%d duplicates=%d dispatched=%d failed=%d",
			stats.Read, stats.New, stats.Processed, stats.Duplicates, stats.Dispatched, stats.Failed)
	}
	return stats, nil
}

// handle runs one record through dedup, classification, composition,
// optional dispatch, and persistence.
func (l *Loop) handle(ctx context.Context, rec content.Record, stats *Stats) {
	rec.Preview = content.Normalize(rec.Preview)

	at := rec.Timestamp
	if at.IsZero() {
		at = l.opts.Now()
	}
	fp := content.Fingerprint(rec.Preview)
	if l.gate.Seen(fp, at) {
		l.processed.Mark(rec.ID)
		stats.Duplicates++
		log.Debug("concierge: %s duplicate of recent content", rec.ID)
		l.bus.Publish(Outcome{Record: rec, Duplicate: true})
		return
	}

	res := l.classifier.Classify(rec.Preview, rec.Type)
	plan := l.composer.Compose(rec, res, l.behavior.Patterns())
	id := l.opts.NewID()

	var dispatchErr error
	if plan.ShouldDispatch() && l.deps.Executor != nil {
		dispatchErr = l.dispatch(ctx, id, rec, res, plan)
		stats.Dispatched++
	}

	sug := store.NewSuggestion(id, l.opts.Now(), rec, res, learnedLabels(plan), plan.ActionTaken())
	sug.Fingerprint = fp
	if err := l.deps.Suggestions.Append(ctx, sug); err != nil {
		l.gate.Forget(fp)
		stats.Failed++
		log.Error("concierge: persisting suggestion for %s: %v", rec.ID, err)
		return
	}
	stats.Processed++

	if _, err := l.behavior.Record(ctx, rec.Preview, behavior.ClassifiedAs(res.Intent.String())); err != nil {
		log.Warn("concierge: %v", err)
	}

	l.processed.Mark(rec.ID)
	l.bus.Publish(Outcome{Record: rec, Result: res, Plan: plan, Suggestion: sug, DispatchErr: dispatchErr})
}

func (l *Loop) dispatch(ctx context.Context, id string, rec content.Record, res intent.Result, plan suggest.Plan) error {
	err := l.deps.Executor.Execute(ctx, plan.Dispatch, res.Fields, rec.Preview)
	if err != nil {
		log.Warn("concierge: %s on %s failed: %v", plan.Dispatch, rec.ID, err)
	} else {
		log.Info("concierge: executed %s for %s", plan.Dispatch, rec.ID)
	}

	if l.deps.Journal != nil {
		data := store.DispatchData{
			SuggestionID: id,
			ClipboardID:  rec.ID,
			Action:       plan.Dispatch.String(),
			OK:           err == nil,
		}
		if err != nil {
			data.Error = err.Error()
		}
		if jerr := l.deps.Journal.Write(store.EntryDispatch, data); jerr != nil {
			log.Warn("concierge: journal: %v", jerr)
		}
	}
	return err
}

type flusher interface {
	Flush() error
}

func (l *Loop) flush() {
	if err := l.deps.Suggestions.Flush(); err != nil {
		log.Error("concierge: flushing suggestions: %v", err)
	}
	if f, ok := l.deps.Behavior.(flusher); ok {
		if err := f.Flush(); err != nil {
			log.Error("concierge: flushing behavior: %v", err)
		}
	}
}

func learnedLabels(p suggest.Plan) []string {
	var out []string
	for _, it := range p.Items {
		if it.Provenance == suggest.Learned {
			out = append(out, it.Label)
		}
	}
	return out
}
