// ABOUTME: Mined behavior patterns: adjacent signature pair counts and directory context hints
// ABOUTME: A Patterns value is fully determined by the event sequence it was built from

package behavior

import (
	"sort"

	"github.com/mauromedda/concierge-go/internal/signature"
)

// MinFollowUpCount is how often a pair must occur before it is suggested.
const MinFollowUpCount = 2

// Pair is an ordered (earlier, later) signature pair of adjacent events.
type Pair struct {
	From string
	To   string
}

// FollowUp is a signature that historically followed another one.
type FollowUp struct {
	Signature string
	Count     int
}

// Patterns is the mined view of a behavior history.
type Patterns struct {
	Workflows    map[Pair]int
	ContextHints map[string]int
	Events       int
}

// Mine builds patterns from events in one pass. Events without a stored
// signature (legacy rows) are signed from their content.
func Mine(events []Event) Patterns {
	p := Patterns{
		Workflows:    make(map[Pair]int),
		ContextHints: make(map[string]int),
		Events:       len(events),
	}

	prev := ""
	for i, e := range events {
		sig := e.Signature
		if sig == "" {
			sig = signature.Of(e.Content)
		}
		if i > 0 {
			p.Workflows[Pair{From: prev, To: sig}]++
		}
		prev = sig

		for _, d := range Dirs(e.Content) {
			p.ContextHints[d]++
		}
	}
	return p
}

// SuggestFor returns the follow-ups of sig seen at least MinFollowUpCount
// times, most frequent first, then by signature.
func (p Patterns) SuggestFor(sig string) []FollowUp {
	var out []FollowUp
	for pair, n := range p.Workflows {
		if pair.From == sig && n >= MinFollowUpCount {
			out = append(out, FollowUp{Signature: pair.To, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Signature < out[j].Signature
	})
	return out
}

// HasContext reports whether dir was seen as a working directory.
func (p Patterns) HasContext(dir string) bool {
	return p.ContextHints[dir] > 0
}

// Top returns up to limit workflow pairs, most frequent first. A
// non-positive limit returns all of them.
func (p Patterns) Top(limit int) []Workflow {
	out := make([]Workflow, 0, len(p.Workflows))
	for pair, n := range p.Workflows {
		out = append(out, Workflow{Pair: pair, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Workflow is a counted pair, used for listing.
type Workflow struct {
	Pair
	Count int
}
