// ABOUTME: iCalendar rendering for calendar-event actions via golang-ical
// ABOUTME: Start time parsed from extracted date/time fields with olebedev/when; one hour by default

package action

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/mauromedda/concierge-go/internal/log"
)

const (
	productID       = "-//concierge//Clipboard Concierge//EN"
	defaultDuration = time.Hour
	defaultLead     = time.Hour
	defaultHour     = 9 // start for events with a day but no time
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// eventWindow derives start and end from calendar fields. Unparseable
// fields fall back to now+1h for one hour.
func eventWindow(fields map[string]string, now time.Time) (time.Time, time.Time) {
	day, dayKnown := parseWhen(fields["date"], now)
	if !dayKnown {
		day = now
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())

	var start time.Time
	if at, ok := parseWhen(fields["time"], midnight); ok {
		start = at
	} else if dayKnown {
		start = midnight.Add(defaultHour * time.Hour)
	} else {
		start = now.Add(defaultLead)
	}
	return start, start.Add(eventLength(fields["duration"], start))
}

// eventLength reads a duration such as "30 minutes" as a deadline from start.
func eventLength(s string, start time.Time) time.Duration {
	if strings.TrimSpace(s) == "" {
		return defaultDuration
	}
	end, ok := parseWhen("in "+s, start)
	if !ok || !end.After(start) {
		return defaultDuration
	}
	return end.Sub(start)
}

func parseWhen(s string, base time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	r, err := dateParser.Parse(s, base)
	if err != nil {
		log.Debug("calendar: parsing %q: %v", s, err)
		return time.Time{}, false
	}
	if r == nil {
		return time.Time{}, false
	}
	return r.Time, true
}

// renderICS renders a single-event calendar.
func renderICS(uid, summary, description string, now, start, end time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)

	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(now)
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(summary)
	ev.SetDescription(description)
	return cal.Serialize()
}

func icsUID(id string) string {
	return fmt.Sprintf("%s@concierge.local", id)
}
