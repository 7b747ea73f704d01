// ABOUTME: run subcommand: wires stores, executor, journal, and renderer into the poll loop
// ABOUTME: --once processes everything new and exits; otherwise cycles until interrupted

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mauromedda/concierge-go/internal/action"
	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/concierge"
	"github.com/mauromedda/concierge-go/internal/config"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/log"
	"github.com/mauromedda/concierge-go/internal/render"
	"github.com/mauromedda/concierge-go/internal/store"
	"github.com/mauromedda/concierge-go/internal/suggest"
)

type runFlags struct {
	once        bool
	autoExecute bool
	watch       bool
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the content history and suggest follow-ups for new records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := *a.settings
			if cmd.Flags().Changed("auto-execute") {
				s.AutoExecute = f.autoExecute
			}
			if cmd.Flags().Changed("watch") {
				s.Watch = f.watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runLoop(ctx, cmd, &s, a.labels(), f.once)
		},
	}
	cmd.Flags().BoolVar(&f.once, "once", false, "process every new record once and exit")
	cmd.Flags().BoolVar(&f.autoExecute, "auto-execute", false, "execute the first suggested action for each record")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "also wake on writes to the history file")
	return cmd
}

func openStores(s *config.Settings) (*store.Stores, error) {
	return store.Open(store.Config{
		Backend:         s.Storage.Backend,
		SuggestionsPath: s.Storage.SuggestionsPath,
		BehaviorPath:    s.Storage.BehaviorPath,
		DBPath:          s.Storage.DBPath,
		FlushEvery:      s.Storage.FlushEvery,
		MaxEntries:      s.Storage.MaxSuggestions,
		MaxEvents:       s.MaxEvents,
	})
}

func behaviorOptions(s *config.Settings) behavior.Options {
	return behavior.Options{MaxEvents: s.MaxEvents, RebuildEvery: s.RebuildEvery}
}

func runLoop(ctx context.Context, cmd *cobra.Command, s *config.Settings, labels map[intent.Action]string, once bool) (err error) {
	stores, err := openStores(s)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stores.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	journal, err := store.OpenJournal(s.Storage.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	loop := concierge.New(concierge.Deps{
		Suggestions: stores.Suggestions,
		Behavior:    stores.Behavior,
		Executor:    action.NewLocal(s.ActionsDir),
		Journal:     journal,
	}, concierge.Options{
		HistoryPath: s.HistoryPath,
		Schedule:    s.Schedule,
		Watch:       s.Watch,
		DedupWindow: s.DedupWindow,
		Classifier:  intent.ClassifierConfig{GlobalFloor: s.GlobalFloor},
		Composer: suggest.Options{
			ProjectKeyword: s.ProjectKeyword,
			AutoExecute:    s.AutoExecute,
			Labels:         labels,
		},
		Behavior: behaviorOptions(s),
	})
	if err := loop.Load(ctx); err != nil {
		return err
	}

	r := render.New(cmd.OutOrStdout())
	unsub := loop.Events().Subscribe(r.Outcome)
	defer unsub()

	if !once {
		return loop.Run(ctx)
	}

	stats, err := loop.RunOnce(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d new, %d processed, %d duplicates, %d dispatched, %d failed\n",
		stats.New, stats.Processed, stats.Duplicates, stats.Dispatched, stats.Failed)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if stats.Failed > 0 {
		log.Warn("%d records could not be persisted and will be retried", stats.Failed)
	}
	return nil
}
