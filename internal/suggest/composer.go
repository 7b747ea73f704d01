// ABOUTME: Suggestion composer: learned hints from behavior patterns first, then rule actions
// ABOUTME: Learned hints are templates keyed by content signature; rule items go through the label table

package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/signature"
)

// Provenance tags where a suggestion came from.
type Provenance string

const (
	Learned Provenance = "learned"
	Rule    Provenance = "rule"
)

// Action-taken values recorded on persisted suggestions.
const (
	ActionSuggested    = "suggested"
	ActionAutoExecuted = "auto_executed"
)

// Defaults for Options.
const (
	DefaultProjectKeyword = "llama-cpp-python"
	DefaultMaxRuleItems   = 3
	DefaultMaxFollowUps   = 2
)

// Placeholder used when a pip command names no package.
const packagePlaceholder = "<package>"

// errorHintLength bounds the error text quoted in the search hint.
const errorHintLength = 60

var (
	pyScript   = regexp.MustCompile(`(\w+)\.py\b`)
	pipPackage = regexp.MustCompile(`(?i)pip3?\s+install\s+(.+)`)
	versionCut = regexp.MustCompile(`[\[=<>~!;]`)
)

// Item is one displayable suggestion.
type Item struct {
	Label      string
	Provenance Provenance
	Action     intent.Action // set for rule items only
}

// Plan is the composer's output for one record.
type Plan struct {
	Signature   string
	Items       []Item
	AutoExecute bool
	Dispatch    intent.Action // first rule action when AutoExecute; ActionUnknown otherwise
}

// ShouldDispatch reports whether an action must be executed before persisting.
func (p Plan) ShouldDispatch() bool {
	return p.AutoExecute && p.Dispatch != intent.ActionUnknown
}

// ActionTaken is the status persisted with the suggestion. It depends only
// on the mode, never on the dispatch outcome.
func (p Plan) ActionTaken() string {
	if p.AutoExecute {
		return ActionAutoExecuted
	}
	return ActionSuggested
}

// Labels returns the item labels in order.
func (p Plan) Labels() []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Label
	}
	return out
}

// Recall finds earlier content resembling text. *behavior.Store implements it.
type Recall interface {
	Similar(text, sig string, limit int) []behavior.Event
}

// Options configures a Composer.
type Options struct {
	ProjectKeyword string
	AutoExecute    bool
	MaxRuleItems   int
	MaxFollowUps   int
	Labels         map[intent.Action]string // overrides the built-in label table
	Recall         Recall
}

// Composer merges learned and rule suggestions.
type Composer struct {
	opts Options
}

// NewComposer creates a composer, applying defaults.
func NewComposer(opts Options) *Composer {
	if opts.ProjectKeyword == "" {
		opts.ProjectKeyword = DefaultProjectKeyword
	}
	if opts.MaxRuleItems <= 0 {
		opts.MaxRuleItems = DefaultMaxRuleItems
	}
	if opts.MaxFollowUps <= 0 {
		opts.MaxFollowUps = DefaultMaxFollowUps
	}
	return &Composer{opts: opts}
}

// Compose builds the plan for rec given its classification and the current
// patterns. Learned hints are produced even when res is none.
func (c *Composer) Compose(rec content.Record, res intent.Result, p behavior.Patterns) Plan {
	text := rec.Preview
	sig := signature.Of(text)

	plan := Plan{Signature: sig, AutoExecute: c.opts.AutoExecute}
	for _, label := range c.learned(text, sig, res, p) {
		plan.Items = append(plan.Items, Item{Label: label, Provenance: Learned})
	}

	for i, a := range res.Actions {
		if i == c.opts.MaxRuleItems {
			break
		}
		plan.Items = append(plan.Items, Item{Label: c.label(a), Provenance: Rule, Action: a})
	}

	if c.opts.AutoExecute && len(res.Actions) > 0 {
		plan.Dispatch = res.Actions[0]
	}
	return plan
}

func (c *Composer) learned(text, sig string, res intent.Result, p behavior.Patterns) []string {
	var out []string

	switch sig {
	case signature.PythonFilename:
		if m := pyScript.FindStringSubmatch(text); m != nil {
			out = append(out, fmt.Sprintf("Run: python %s.py", m[1]))
		}
	case signature.PipInstall:
		out = append(out, fmt.Sprintf("Test: python -c 'import %s'", importName(text)))
	case signature.ErrorMessage:
		out = append(out, "Check: Did you have this error before?")
		out = append(out, c.searchHint(text, res))
		if c.opts.Recall != nil {
			if prior := c.opts.Recall.Similar(text, sig, 1); len(prior) > 0 {
				out = append(out, "Seen before: "+content.Truncate(firstLine(prior[0].Content), errorHintLength))
			}
		}
	}

	for i, f := range p.SuggestFor(sig) {
		if i == c.opts.MaxFollowUps {
			break
		}
		out = append(out, fmt.Sprintf("Next: you usually copy %s (%dx)", f.Signature, f.Count))
	}

	if dirs := behavior.Dirs(text); len(dirs) > 0 && p.HasContext(dirs[0]) {
		out = append(out, "Working in: "+dirs[0])
	}
	return out
}

func (c *Composer) searchHint(text string, res intent.Result) string {
	query := res.Fields["error_query"]
	if query == "" {
		query = firstLine(text)
	}
	query = content.Truncate(strings.TrimSpace(query), errorHintLength)
	return fmt.Sprintf("Search: %s + '%s'", query, c.opts.ProjectKeyword)
}

func (c *Composer) label(a intent.Action) string {
	if l, ok := c.opts.Labels[a]; ok && l != "" {
		return l
	}
	return a.Label()
}

// optionTakesValue lists pip options whose next argument is not a package.
var optionTakesValue = map[string]bool{
	"-r": true, "--requirement": true,
	"-c": true, "--constraint": true,
	"-e": true, "--editable": true,
	"-i": true, "--index-url": true,
	"-t": true, "--target": true,
}

// importName guesses the module name a pip command installs:
// "pip install scikit-learn==1.4" -> "scikit_learn".
func importName(text string) string {
	m := pipPackage.FindStringSubmatch(firstLine(text))
	if m == nil {
		return packagePlaceholder
	}
	skipNext := false
	for _, arg := range strings.Fields(m[1]) {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			skipNext = optionTakesValue[arg]
			continue
		}
		if i := versionCut.FindStringIndex(arg); i != nil {
			arg = arg[:i[0]]
		}
		if arg == "" || arg == "." {
			continue
		}
		return strings.ReplaceAll(strings.ToLower(arg), "-", "_")
	}
	return packagePlaceholder
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
