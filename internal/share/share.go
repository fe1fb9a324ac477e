// Package share serializes a filtered event list into the deterministic
// plain-text summary handed to the clipboard by the caller.
package share

import (
	"sort"
	"strings"
	"time"

	"calshare/internal/agenda"
	"calshare/internal/model"
)

// Format controls the composed text layout. Zero-value fields fall back to
// the defaults below.
type Format struct {
	// HeadingFormat is the Go time layout for per-day headings.
	HeadingFormat string
	// TimeFormat is the Go time layout for per-event start times.
	TimeFormat string
}

const (
	defaultHeadingFormat = "Mon, 02 Jan 2006"
	defaultTimeFormat    = "15:04"
)

// Compose renders one line per event, grouped by day in chronological order,
// each day under a heading, events within a day ordered by start time
// ascending (stable for equal starts). Identical input always yields
// byte-identical output; an empty or all-malformed input yields "", which
// callers treat as "nothing to copy".
func Compose(events []model.Event, loc *time.Location, f Format) string {
	if loc == nil {
		loc = time.Local
	}
	if f.HeadingFormat == "" {
		f.HeadingFormat = defaultHeadingFormat
	}
	if f.TimeFormat == "" {
		f.TimeFormat = defaultTimeFormat
	}

	buckets := agenda.EventsByDay(events, loc)
	if len(buckets) == 0 {
		return ""
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, string(k))
	}
	// Day keys are YYYY-MM-DD, so lexicographic order is chronological.
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		day, ok := agenda.DayKey(key).Time(loc)
		if !ok {
			continue
		}

		dayEvents := buckets[agenda.DayKey(key)]
		sort.SliceStable(dayEvents, func(a, c int) bool {
			return dayEvents[a].Start.Before(dayEvents[c].Start)
		})

		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(day.Format(f.HeadingFormat))
		b.WriteString("\n")

		for _, ev := range dayEvents {
			writeEventLine(&b, ev, loc, f.TimeFormat)
		}
	}
	return b.String()
}

// writeEventLine appends "<start time> - <title>[ (unconfirmed)][ @ <place>]\n".
func writeEventLine(b *strings.Builder, ev model.Event, loc *time.Location, timeFormat string) {
	b.WriteString(ev.Start.In(loc).Format(timeFormat))
	b.WriteString(" - ")
	b.WriteString(ev.Title)
	if ev.Unconfirmed {
		b.WriteString(" (unconfirmed)")
	}
	if place := placeOf(ev); place != "" {
		b.WriteString(" @ ")
		b.WriteString(place)
	}
	b.WriteString("\n")
}

// placeOf prefers the venue and falls back to the city.
func placeOf(ev model.Event) string {
	if ev.Location == nil {
		return ""
	}
	if ev.Location.Venue != "" {
		return ev.Location.Venue
	}
	return ev.Location.City
}
