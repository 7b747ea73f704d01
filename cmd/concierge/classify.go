// ABOUTME: classify and exec subcommands: one-shot classification of text given on the command line
// ABOUTME: Learned hints come from the persisted behavior log when it exists

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mauromedda/concierge-go/internal/action"
	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/render"
	"github.com/mauromedda/concierge-go/internal/suggest"
)

// classification is the --json shape of a classify run.
type classification struct {
	Intent      string            `json:"intent"`
	Confidence  float64           `json:"confidence"`
	Reasoning   string            `json:"reasoning"`
	Actions     []string          `json:"suggested_actions"`
	Fields      map[string]string `json:"extracted_data"`
	Signature   string            `json:"signature"`
	Suggestions []string          `json:"suggestions"`
}

type classifyFlags struct {
	typ      string
	asJSON   bool
	learned  bool
	actionID string
}

func newClassifyCmd(a *app) *cobra.Command {
	var f classifyFlags
	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Classify text and show the suggestions the loop would make",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, res, plan, err := a.classify(cmd, args, f)
			if err != nil {
				return err
			}
			if !f.asJSON {
				render.New(cmd.OutOrStdout()).Classification(rec, res, plan)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(classification{
				Intent:      res.Intent.String(),
				Confidence:  res.Confidence,
				Reasoning:   res.Summary(),
				Actions:     intent.ActionIDs(res.Actions),
				Fields:      res.Fields,
				Signature:   plan.Signature,
				Suggestions: plan.Labels(),
			})
		},
	}
	cmd.Flags().StringVarP(&f.typ, "type", "t", string(content.TypeText), "content type: text, url, file, image")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&f.learned, "learned", true, "include hints learned from the behavior log")
	return cmd
}

func newExecCmd(a *app) *cobra.Command {
	var f classifyFlags
	cmd := &cobra.Command{
		Use:   "exec <text...>",
		Short: "Classify text and run one of its actions",
		Long: "Classify text and run the first suggested action, or the one named by --action.\n" +
			"Side effects land in the configured actions directory or the desktop opener.\n\n" +
			"Actions:\n  " + strings.Join(intent.ActionIDs(intent.AllActions()), "\n  "),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.learned = false
			rec, res, _, err := a.classify(cmd, args, f)
			if err != nil {
				return err
			}

			act := intent.ActionUnknown
			if f.actionID != "" {
				if act, err = intent.ParseAction(f.actionID); err != nil {
					return err
				}
			} else if len(res.Actions) > 0 {
				act = res.Actions[0]
			}
			if act == intent.ActionUnknown {
				return fmt.Errorf("no action for %s content", res.Intent)
			}

			ex := action.NewLocal(a.settings.ActionsDir)
			if err := ex.Execute(cmd.Context(), act, res.Fields, rec.Preview); err != nil {
				return fmt.Errorf("%s: %w", act, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "executed %s\n", act)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.typ, "type", "t", string(content.TypeText), "content type: text, url, file, image")
	cmd.Flags().StringVar(&f.actionID, "action", "", "action id to run instead of the first suggested one")
	return cmd
}

func (a *app) classify(cmd *cobra.Command, args []string, f classifyFlags) (content.Record, intent.Result, suggest.Plan, error) {
	text := strings.Join(args, " ")
	typ := content.ParseType(f.typ)
	rec := content.Record{ID: "cli", Timestamp: time.Now(), Type: typ, Preview: text}

	res := intent.NewClassifier(intent.ClassifierConfig{GlobalFloor: a.settings.GlobalFloor}).Classify(text, typ)

	opts := suggest.Options{ProjectKeyword: a.settings.ProjectKeyword, Labels: a.labels()}
	var patterns behavior.Patterns
	if f.learned {
		bs, closeFn, err := a.openBehavior(cmd)
		if err != nil {
			return rec, res, suggest.Plan{}, err
		}
		defer closeFn()
		patterns = bs.Patterns()
		opts.Recall = bs
	}

	plan := suggest.NewComposer(opts).Compose(rec, res, patterns)
	return rec, res, plan, nil
}
