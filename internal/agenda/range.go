package agenda

import (
	"time"

	"calshare/internal/model"
)

// Range bounds the days that contain data, both truncated to day start.
type Range struct {
	First time.Time
	Last  time.Time
}

// EventRange returns the day-truncated minimum and maximum start across all
// events. The bool is false when no event carries a usable start; callers
// default that case to the current month rather than treating it as an error.
func EventRange(events []model.Event, loc *time.Location) (Range, bool) {
	var r Range
	found := false
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		day := DayStart(ev.Start, loc)
		if !found {
			r.First, r.Last = day, day
			found = true
			continue
		}
		if day.Before(r.First) {
			r.First = day
		}
		if day.After(r.Last) {
			r.Last = day
		}
	}
	return r, found
}

// CurrentMonthRange is the caller-side default for an empty event set: the
// first and last day of the month containing now.
func CurrentMonthRange(now time.Time, loc *time.Location) Range {
	lt := now.In(loc)
	first := time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return Range{First: first, Last: last}
}
