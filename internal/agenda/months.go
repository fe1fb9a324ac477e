package agenda

import "time"

// MonthColumn describes one calendar month of the generated grid.
type MonthColumn struct {
	// MonthStart is midnight on the first day of the month.
	MonthStart time.Time
	// Label is the human-readable column heading, e.g. "June 2023".
	Label string
	// DayCount is the number of days in the month (28-31).
	DayCount int
}

// MonthColumns produces one column per calendar month from the month
// containing first through the month containing last, inclusive, in
// chronological order. If both fall in the same month exactly one column is
// produced. A last before first yields an empty slice.
func MonthColumns(first, last time.Time) []MonthColumn {
	if last.Before(first) {
		return []MonthColumn{}
	}

	loc := first.Location()
	cur := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, loc)
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, loc)

	cols := make([]MonthColumn, 0, 4)
	for !cur.After(end) {
		cols = append(cols, MonthColumn{
			MonthStart: cur,
			Label:      cur.Format("January 2006"),
			// Last day of the month; AddDate works on calendar fields, so
			// DST transitions cannot skew the count.
			DayCount: cur.AddDate(0, 1, -1).Day(),
		})
		cur = cur.AddDate(0, 1, 0)
	}
	return cols
}

// Days iterates the column's calendar days, one midnight per day. Cells
// beyond DayCount are never produced.
func (m MonthColumn) Days() []time.Time {
	days := make([]time.Time, 0, m.DayCount)
	for i := 0; i < m.DayCount; i++ {
		days = append(days, m.MonthStart.AddDate(0, 0, i))
	}
	return days
}

// Day returns the n-th day of the month (1-based). The bool is false when n
// is outside [1, DayCount].
func (m MonthColumn) Day(n int) (time.Time, bool) {
	if n < 1 || n > m.DayCount {
		return time.Time{}, false
	}
	return m.MonthStart.AddDate(0, 0, n-1), true
}
