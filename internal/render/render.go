// ABOUTME: Terminal rendering of loop outcomes, classifications, and mined patterns
// ABOUTME: lipgloss styles bound to the output writer; plain text when it is not a TTY

package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/mauromedda/concierge-go/internal/behavior"
	"github.com/mauromedda/concierge-go/internal/concierge"
	"github.com/mauromedda/concierge-go/internal/content"
	"github.com/mauromedda/concierge-go/internal/intent"
	"github.com/mauromedda/concierge-go/internal/suggest"
)

const (
	defaultWidth = 80
	maxRule      = 70
)

// Markers prefix suggestion lines by provenance.
const (
	LearnedMarker = "[P]"
	RuleMarker    = "[*]"
)

// paint has the shape of lipgloss.Style.Render.
type paint func(strs ...string) string

type styles struct {
	rule     paint
	preview  paint
	intent   paint
	learned  paint
	ruleItem paint
	dim      paint
	warn     paint
}

func plainStyles() styles {
	p := func(strs ...string) string { return strings.Join(strs, " ") }
	return styles{rule: p, preview: p, intent: p, learned: p, ruleItem: p, dim: p, warn: p}
}

func colorStyles(r *lipgloss.Renderer) styles {
	return styles{
		rule:     r.NewStyle().Foreground(lipgloss.Color("240")).Render,
		preview:  r.NewStyle().Bold(true).Render,
		intent:   r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Render,
		learned:  r.NewStyle().Foreground(lipgloss.Color("208")).Render,
		ruleItem: r.NewStyle().Foreground(lipgloss.Color("252")).Render,
		dim:      r.NewStyle().Faint(true).Render,
		warn:     r.NewStyle().Foreground(lipgloss.Color("196")).Render,
	}
}

// Renderer writes human-readable output.
type Renderer struct {
	w     io.Writer
	width int
	st    styles
}

// Option configures a Renderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	color *bool
	width int
}

// WithColor forces styling on or off instead of detecting a TTY.
func WithColor(on bool) Option { return func(c *rendererConfig) { c.color = &on } }

// WithWidth sets the column budget instead of querying the terminal.
func WithWidth(n int) Option { return func(c *rendererConfig) { c.width = n } }

// New creates a renderer for w. When w is a terminal its width is used and
// styling is enabled.
func New(w io.Writer, opts ...Option) *Renderer {
	var cfg rendererConfig
	for _, o := range opts {
		o(&cfg)
	}

	f, isFile := w.(*os.File)
	tty := isFile && term.IsTerminal(int(f.Fd()))

	width := cfg.width
	if width <= 0 && tty {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	if width <= 0 {
		width = defaultWidth
	}

	color := tty
	if cfg.color != nil {
		color = *cfg.color
	}
	st := plainStyles()
	if color {
		st = colorStyles(lipgloss.NewRenderer(w))
	}
	return &Renderer{w: w, width: width, st: st}
}

// Outcome renders one loop outcome.
func (r *Renderer) Outcome(o concierge.Outcome) {
	if o.Duplicate {
		r.line(r.st.dim(r.fit(fmt.Sprintf("    %s: duplicate of recent content, skipped", o.Record.ID), 0)))
		return
	}
	r.Classification(o.Record, o.Result, o.Plan)
	if o.DispatchErr != nil {
		r.line(r.st.warn(r.fit(fmt.Sprintf("   ! %s failed: %v", o.Plan.Dispatch, o.DispatchErr), 0)))
	} else if o.Plan.ShouldDispatch() {
		r.line(r.st.dim(fmt.Sprintf("   > executed %s", o.Plan.Dispatch)))
	}
}

// Classification renders a record's classification and suggestion plan.
func (r *Renderer) Classification(rec content.Record, res intent.Result, plan suggest.Plan) {
	rule := r.st.rule(strings.Repeat("=", min(r.width, maxRule)))

	r.line(rule)
	r.line(r.st.preview(r.fit(">>> "+firstLine(rec.Preview), 0)))
	r.line(rule)

	if res.IsNone() {
		r.line(r.st.dim(">>> No clear intent detected"))
	} else {
		head := fmt.Sprintf(">>> %s (%d%%)", res.Intent, int(res.Confidence*100+0.5))
		r.line(r.st.intent(head) + " " + r.fit(res.Summary(), runewidth.StringWidth(head)+1))
	}

	if len(plan.Items) == 0 {
		return
	}
	r.line(">>> Suggestions:")
	for _, it := range plan.Items {
		if it.Provenance == suggest.Learned {
			r.line(r.st.learned(r.fit("   "+LearnedMarker+" "+it.Label, 0)))
		} else {
			r.line(r.st.ruleItem(r.fit("   "+RuleMarker+" "+it.Label, 0)))
		}
	}
}

// Patterns renders the top workflows and context directories.
func (r *Renderer) Patterns(p behavior.Patterns, limit int) {
	top := p.Top(limit)
	r.line(r.st.intent(fmt.Sprintf("Workflows (%d events mined)", p.Events)))
	if len(top) == 0 {
		r.line(r.st.dim("  none yet"))
	}
	for _, w := range top {
		r.line(r.fit(fmt.Sprintf("  %-20s -> %-20s %4dx", w.From, w.To, w.Count), 0))
	}

	dirs := contextDirs(p.ContextHints, limit)
	if len(dirs) == 0 {
		return
	}
	r.line("")
	r.line(r.st.intent("Working directories"))
	for _, d := range dirs {
		r.line(r.fit(fmt.Sprintf("  %4dx %s", p.ContextHints[d], d), 0))
	}
}

// fit truncates s so that, after used columns, it stays within the width.
func (r *Renderer) fit(s string, used int) string {
	avail := r.width - used
	if avail <= 3 {
		return s
	}
	return runewidth.Truncate(s, avail, "...")
}

func (r *Renderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func firstLine(s string) string {
	line, _, cut := strings.Cut(strings.TrimSpace(s), "\n")
	line = content.NormalizeSpaces(strings.TrimSpace(line))
	if cut {
		line += " ..."
	}
	return line
}

func contextDirs(hints map[string]int, limit int) []string {
	dirs := make([]string, 0, len(hints))
	for d := range hints {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool {
		if hints[dirs[i]] != hints[dirs[j]] {
			return hints[dirs[i]] > hints[dirs[j]]
		}
		return dirs[i] < dirs[j]
	})
	if limit > 0 && len(dirs) > limit {
		dirs = dirs[:limit]
	}
	return dirs
}
