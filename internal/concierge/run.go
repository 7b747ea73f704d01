// ABOUTME: Continuous mode: cycles on a cron schedule, optionally woken early by file writes
// ABOUTME: Cancellation stops the loop after the in-flight record and flushes the stores

package concierge

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mauromedda/concierge-go/internal/config"
	"github.com/mauromedda/concierge-go/internal/log"
	"github.com/mauromedda/concierge-go/internal/store"
)

// DefaultSchedule wakes the loop every two seconds.
const DefaultSchedule = "@every 2s"

// ParseSchedule validates a cron spec ("@every 2s", "*/5 * * * *").
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Run cycles until ctx is cancelled. A cancelled context is a normal stop
// and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	sched, err := ParseSchedule(l.opts.Schedule)
	if err != nil {
		return err
	}

	wake := make(chan struct{}, 1)
	if l.opts.Watch {
		stop := l.watch(ctx, wake)
		defer stop()
	}

	l.journal(store.EntryStart)
	defer l.journal(store.EntryStop)

	log.Info("concierge: watching %s (%s)", l.opts.HistoryPath, l.opts.Schedule)

	for {
		if _, err := l.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		now := l.opts.Now()
		timer := time.NewTimer(sched.Next(now).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("concierge: stopped, %d records processed", l.processed.Len())
			return nil
		case <-timer.C:
		case <-wake:
			timer.Stop()
			log.Debug("concierge: woken by history write")
		}
	}
}

// watch starts an fsnotify watcher on the history file. Failures degrade to
// schedule-only polling.
func (l *Loop) watch(ctx context.Context, wake chan<- struct{}) func() {
	w, err := config.NewWatcher([]string{l.opts.HistoryPath}, func(string) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	if err != nil {
		log.Warn("concierge: %v; polling only", err)
		return func() {}
	}
	if err := w.Start(ctx); err != nil {
		log.Warn("concierge: %v; polling only", err)
		w.Stop()
		return func() {}
	}
	return w.Stop
}

func (l *Loop) journal(typ store.EntryType) {
	if l.deps.Journal == nil {
		return
	}
	if err := l.deps.Journal.Write(typ, nil); err != nil {
		log.Warn("concierge: journal: %v", err)
	}
}
