// Package agenda derives the calendar view structures: day buckets, the
// bounding event range, month columns and free-day detection. Everything here
// is a pure function of the event snapshot it is handed.
package agenda

import (
	"time"

	"calshare/internal/model"
)

// DayKey identifies one calendar day as "YYYY-MM-DD" in the display timezone.
type DayKey string

const dayKeyLayout = "2006-01-02"

// KeyFor truncates t to its calendar day in loc and returns the day key.
func KeyFor(t time.Time, loc *time.Location) DayKey {
	return DayKey(t.In(loc).Format(dayKeyLayout))
}

// Time returns midnight of the keyed day in loc. The bool is false for a key
// that does not parse.
func (k DayKey) Time(loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(dayKeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DayStart truncates t to midnight of its calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// EventsByDay buckets events by the calendar day of their start time,
// ignoring time-of-day. Events spanning midnight land only under their start
// day. Input order within a day is preserved. Records with a zero start are
// skipped so one malformed event cannot blank the calendar.
func EventsByDay(events []model.Event, loc *time.Location) map[DayKey][]model.Event {
	buckets := make(map[DayKey][]model.Event)
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		key := KeyFor(ev.Start, loc)
		buckets[key] = append(buckets[key], ev)
	}
	return buckets
}
