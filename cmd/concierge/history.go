// ABOUTME: Read-only inspection subcommands: patterns, recent, dispatches
// ABOUTME: They open the configured stores without touching the history file

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/log"
	"github.com/mauromedda/concierge-go/internal/render"
	"github.com/mauromedda/concierge-go/internal/store"
)

// openBehavior loads the behavior store from the configured backend.
func (a *app) openBehavior(cmd *cobra.Command) (*behavior.Store, func(), error) {
	stores, err := openStores(a.settings)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := stores.Close(); err != nil {
			log.Warn("closing stores: %v", err)
		}
	}
	bs, err := behavior.Open(cmd.Context(), stores.Behavior, behaviorOptions(a.settings))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return bs, closeFn, nil
}

func newPatternsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show the workflows and working directories mined from behavior history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bs, closeFn, err := a.openBehavior(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			render.New(cmd.OutOrStdout()).Patterns(bs.Patterns(), limit)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries per section (0 for all)")
	return cmd
}

func newRecentCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently persisted suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stores, err := openStores(a.settings)
			if err != nil {
				return err
			}
			defer stores.Close()

			recent, err := stores.Suggestions.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recent) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no suggestions yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tINTENT\tCONF\tACTION\tPREVIEW")
			for _, s := range recent {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
					s.Timestamp, s.Intent, s.Confidence, s.ActionTaken, content.Truncate(content.NormalizeSpaces(s.ContentPreview), 40))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of suggestions (0 for all)")
	return cmd
}

func newDispatchesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatches",
		Short: "List auto-executed actions recorded in the dispatch journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := store.ReadJournal(a.settings.Storage.JournalPath)
			if err != nil {
				return err
			}
			ds := store.Dispatches(entries)
			if len(ds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no dispatches recorded")
				return nil
			}
			for _, d := range ds {
				status := "ok"
				if !d.OK {
					status = "failed: " + d.Error
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s %s\n", d.ClipboardID, d.Action, status)
			}
			return nil
		},
	}
}
