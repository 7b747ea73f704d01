// ABOUTME: Regex signal extractors: six categories of weighted sub-signals with per-category floors
// ABOUTME: Pure functions; categories are evaluated in a fixed priority order used for tie-breaks

package intent

import (
	"math"
	"regexp"
	"strings"
)

// Calendar cues.
var (
	meetingPattern  = regexp.MustCompile(`(?i)\b(?:meet|meeting|call|zoom|teams|skype|interview|appointment)\b`)
	timePattern     = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s*(?:am|pm)|\d{1,2}\s*(?:am|pm))\b`)
	relDatePattern  = regexp.MustCompile(`(?i)\b(today|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	absDatePattern  = regexp.MustCompile(`(?i)\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*\d{1,2})\b`)
	numDatePattern  = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	durationPattern = regexp.MustCompile(`(?i)\b(\d+\s*(?:min|hour|hr|minutes|hours))\b`)
)

// Reminder cues.
var (
	todoPattern     = regexp.MustCompile(`(?i)\b(?:todo|task|reminder|remember|don['\x{2019}]t forget|make sure|need to)\b`)
	priorityPattern = regexp.MustCompile(`(?i)\b(?:urgent|important|asap|priority|critical)\b`)
)

// imperativeVerbs open short todo-like snippets ("buy milk", "call Bob").
var imperativeVerbs = map[string]bool{
	"buy": true, "call": true, "email": true, "send": true,
	"finish": true, "complete": true, "start": true,
}

// Error cues.
var (
	errorKeywordPattern = regexp.MustCompile(`(?i)\b(?:error|exception|failed|failure|bug|issue|problem|crash)\b`)
	stackTracePattern   = regexp.MustCompile(`(?i)\b(?:at\s+[\w.]+\(|traceback|file\s+"|line\s+\d+)\b`)
	languagePattern     = regexp.MustCompile(`(?i)\b(?:python|javascript|java|cpp|c\+\+|typescript|go|rust|sql)\b`)
	errorQueryPattern   = regexp.MustCompile(`(?i)error[:\s]+([^\n]+)`)
)

// Search cues.
var (
	questionPattern   = regexp.MustCompile(`(?i)\b(?:how|what|when|where|who|why|which|can you|is there|are there)\b`)
	definitionPattern = regexp.MustCompile(`(?i)\b(?:define|meaning of|what is|what are)\b`)
)

// Contact cues.
var (
	emailPattern = regexp.MustCompile(`\b[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
)

// File cues. Unix paths need a leading boundary and at least two segments so
// that fractions, dates, and "and/or" never read as paths.
var (
	windowsPathPattern = regexp.MustCompile(`[A-Z]:\\(?:[^\\/:*?"<>|\r\n]+\\)*[^\\/:*?"<>|\r\n]*`)
	unixPathPattern    = regexp.MustCompile(`(?:^|[\s"'(=])(~?/[\w.@+-]+(?:/[\w.@+-]+)+/?)`)
)

// titleWords bounds the derived calendar title.
const titleWords = 8

// errorQueryLength bounds the fallback error search query.
const errorQueryLength = 100

// PartialScore is one extractor's verdict for a piece of text.
type PartialScore struct {
	Score   float64  // capped at 1.0; 0 when the category floor is not met
	Signals []Signal // matched sub-signals in evaluation order
}

// signal is one weighted sub-signal. match returns the human-readable
// description on a hit and "" otherwise.
type signal struct {
	name   string
	weight float64
	match  func(text string) string
}

// category bundles a category's sub-signals, floor, and winner-only extraction.
type category struct {
	intent  Intent
	header  string
	floor   float64
	signals []signal
	extract func(text string) map[string]string
	actions func(fields map[string]string) []Action
}

// priority is the fixed evaluation order. On an exact score tie the
// category listed first wins.
var priority = []category{
	{
		intent: IntentCalendar,
		header: "Calendar event indicators",
		floor:  0.4,
		signals: []signal{
			rx("meeting", 0.4, meetingPattern, "meeting keyword detected"),
			rx("time", 0.3, timePattern, "time detected"),
			{name: "date", weight: 0.3, match: matchDate},
			rx("duration", 0, durationPattern, "duration detected"),
		},
		extract: extractCalendar,
		actions: static(ActionCreateCalendarEvent, ActionSetReminder),
	},
	{
		intent: IntentReminder,
		header: "Reminder indicators",
		floor:  0.5,
		signals: []signal{
			rx("todo", 0.5, todoPattern, "todo keyword detected"),
			rx("priority", 0.2, priorityPattern, "priority keyword detected"),
			{name: "imperative", weight: 0.3, match: matchImperative},
		},
		extract: func(text string) map[string]string {
			return map[string]string{"task": strings.TrimSpace(text)}
		},
		actions: static(ActionCreateReminder, ActionAddToTodoList),
	},
	{
		intent: IntentError,
		header: "Error indicators",
		floor:  0.5,
		signals: []signal{
			rx("error_keyword", 0.3, errorKeywordPattern, "error keyword detected"),
			rx("stack_trace", 0.5, stackTracePattern, "stack trace pattern detected"),
			rx("language", 0.2, languagePattern, "programming language detected"),
		},
		extract: extractError,
		actions: static(ActionSearchStackOverflow, ActionSearchGoogle, ActionSearchGitHub),
	},
	{
		intent: IntentSearch,
		header: "Search indicators",
		floor:  0.4,
		signals: []signal{
			rx("question", 0.4, questionPattern, "question word detected"),
			rx("definition", 0.5, definitionPattern, "definition pattern detected"),
			{name: "question_mark", weight: 0.3, match: func(text string) string {
				if strings.HasSuffix(strings.TrimSpace(text), "?") {
					return "question mark detected"
				}
				return ""
			}},
		},
		extract: func(text string) map[string]string {
			return map[string]string{"query": strings.TrimSpace(text)}
		},
		actions: static(ActionSearchGoogle, ActionSearchWikipedia),
	},
	{
		intent: IntentContact,
		header: "Contact indicators",
		floor:  0.6,
		signals: []signal{
			rx("email", 0.6, emailPattern, "email detected"),
			rx("phone", 0.6, phonePattern, "phone number detected"),
		},
		extract: extractContact,
		actions: func(fields map[string]string) []Action {
			actions := []Action{ActionSaveContact}
			if fields["email"] != "" {
				actions = append(actions, ActionSendEmail)
			}
			if fields["phone"] != "" {
				actions = append(actions, ActionCallPhone)
			}
			return actions
		},
	},
	{
		intent: IntentFile,
		header: "File path indicators",
		floor:  0.7,
		signals: []signal{
			rx("windows_path", 0.7, windowsPathPattern, "Windows path detected"),
			{name: "unix_path", weight: 0.7, match: func(text string) string {
				if unixPathPattern.MatchString(text) {
					return "Unix path detected"
				}
				return ""
			}},
		},
		extract: extractFile,
		actions: static(ActionOpenFile, ActionOpenFileLocation),
	},
}

// categoryIntents returns the extractor categories in priority order.
func categoryIntents() []Intent {
	out := make([]Intent, len(priority))
	for i, c := range priority {
		out[i] = c.intent
	}
	return out
}

// Score runs a single category's extractor over text. Non-category intents
// score zero.
func Score(in Intent, text string) PartialScore {
	for _, c := range priority {
		if c.intent == in {
			return c.score(text)
		}
	}
	return PartialScore{}
}

// extractFields returns the structured fields for a category.
func extractFields(in Intent, text string) map[string]string {
	for _, c := range priority {
		if c.intent == in {
			return c.extract(text)
		}
	}
	return map[string]string{}
}

func (c category) score(text string) PartialScore {
	var total float64
	var signals []Signal
	for _, s := range c.signals {
		detail := s.match(text)
		if detail == "" {
			continue
		}
		total += s.weight
		signals = append(signals, Signal{Name: s.name, Weight: s.weight, Detail: detail})
	}

	total = roundScore(total)
	if total < c.floor {
		return PartialScore{}
	}
	return PartialScore{Score: math.Min(total, 1.0), Signals: signals}
}

// roundScore removes float drift so that e.g. 0.4+0.3+0.3 compares equal to 1.0.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

func rx(name string, weight float64, re *regexp.Regexp, detail string) signal {
	return signal{name: name, weight: weight, match: func(text string) string {
		if re.MatchString(text) {
			return detail
		}
		return ""
	}}
}

func static(actions ...Action) func(map[string]string) []Action {
	return func(map[string]string) []Action {
		out := make([]Action, len(actions))
		copy(out, actions)
		return out
	}
}

func matchDate(text string) string {
	if relDatePattern.MatchString(text) {
		return "relative date detected"
	}
	if absDatePattern.MatchString(text) {
		return "absolute date detected"
	}
	return ""
}

func matchImperative(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 || len(words) >= 10 {
		return ""
	}
	if imperativeVerbs[strings.ToLower(words[0])] {
		return "action verb detected"
	}
	return ""
}

func extractCalendar(text string) map[string]string {
	fields := make(map[string]string)
	if m := timePattern.FindStringSubmatch(text); m != nil {
		fields["time"] = m[1]
	}
	switch {
	case numDatePattern.MatchString(text):
		fields["date"] = numDatePattern.FindStringSubmatch(text)[1]
	case absDatePattern.MatchString(text):
		fields["date"] = absDatePattern.FindStringSubmatch(text)[1]
	case relDatePattern.MatchString(text):
		fields["date"] = strings.ToLower(relDatePattern.FindStringSubmatch(text)[1])
	}
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		fields["duration"] = m[1]
	}
	words := strings.Fields(text)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	fields["title"] = strings.Join(words, " ")
	return fields
}

func extractError(text string) map[string]string {
	query := ""
	if m := errorQueryPattern.FindStringSubmatch(text); m != nil {
		query = strings.ToLower(m[1])
	} else {
		query = clipRunes(text, errorQueryLength)
	}
	return map[string]string{"error_query": strings.TrimSpace(query)}
}

func extractContact(text string) map[string]string {
	fields := make(map[string]string)
	if m := emailPattern.FindString(text); m != "" {
		fields["email"] = m
	}
	if m := phonePattern.FindString(text); m != "" {
		fields["phone"] = m
	}
	return fields
}

func extractFile(text string) map[string]string {
	fields := make(map[string]string)
	if m := windowsPathPattern.FindString(text); m != "" {
		fields["path"] = strings.TrimSpace(m)
	} else if m := unixPathPattern.FindStringSubmatch(text); m != nil {
		fields["path"] = m[1]
	}
	return fields
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
