package agenda

import "calshare/internal/model"

// IsDayFree reports whether a day counts as free: no events at all, or
// nothing on it that is publicly confirmed and substantive. Private events,
// unconfirmed drafts and free-marker-category events do not block a free day.
func IsDayFree(dayEvents []model.Event) bool {
	for _, ev := range dayEvents {
		if ev.Private || ev.Unconfirmed || ev.Category.FreeMarker {
			continue
		}
		return false
	}
	return true
}

// CountFreeDays counts free days across the given buckets plus any days in
// the range that have no bucket at all.
func CountFreeDays(buckets map[DayKey][]model.Event, days []DayKey) int {
	n := 0
	for _, day := range days {
		if IsDayFree(buckets[day]) {
			n++
		}
	}
	return n
}
