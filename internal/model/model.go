package model

import "time"

// Category classifies an event. Icon is a display hint and is opaque to the
// engine. FreeMarker tags the distinguished "free" category used by free-day
// detection; matching on the flag instead of the display name keeps the
// engine stable when category names are localized or renamed.
type Category struct {
	ID         string
	Name       string
	Icon       string
	FreeMarker bool
}

// UserRef is a weak reference to a user: relation plus lookup, no lifecycle.
type UserRef struct {
	ID   string
	Name string
}

// Location is an optional venue/city pair attached to an event.
type Location struct {
	Venue string
	City  string
}

// RecurrencePattern describes how an event repeats. It is stored as-is;
// expansion into concrete instances happens in internal/recur, never in the
// engine itself.
type RecurrencePattern struct {
	// Frequency is one of "daily", "weekly", "monthly", "yearly".
	Frequency string
	// Interval is the step between occurrences; values below 1 mean 1.
	Interval  int
	StartDate time.Time
	// EndDate, when non-zero, bounds the recurrence (inclusive).
	EndDate time.Time
}

// Recurrence is the optional recurrence descriptor carried by an event.
type Recurrence struct {
	IsRecurring bool
	Pattern     *RecurrencePattern
}

// Event is one calendar entry. Start is the day-bucketing key; a zero Start
// marks a malformed record that aggregation stages skip rather than reject.
type Event struct {
	ID    string
	Title string
	Start time.Time
	// End, when non-zero, must not precede Start.
	End         time.Time
	Category    Category
	Location    *Location
	Description string
	CreatedBy   UserRef
	// Private events are visible only to their owner.
	Private bool
	// Unconfirmed marks a draft; it affects free-day detection.
	Unconfirmed bool
	Recurrence  *Recurrence
}

// Connection is another user the viewer shares events with, subject to a
// per-connection visibility toggle.
type Connection struct {
	ID         string
	Name       string
	HideEvents bool
}

// HasEnd reports whether the event carries an explicit end time.
func (e Event) HasEnd() bool {
	return !e.End.IsZero()
}

// Duration returns End-Start, or zero when no end is set.
func (e Event) Duration() time.Duration {
	if !e.HasEnd() {
		return 0
	}
	return e.End.Sub(e.Start)
}

// IsRecurring reports whether the event carries an expandable recurrence
// descriptor.
func (e Event) IsRecurring() bool {
	return e.Recurrence != nil && e.Recurrence.IsRecurring && e.Recurrence.Pattern != nil
}
