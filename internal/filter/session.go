// Package filter holds the search criteria for one calendar view session and
// derives the visible event list plus the removable applied-filter summary.
// Derived state is recomputed whole from the snapshot and criteria after
// every mutation; it is never patched in place.
package filter

import (
	"fmt"
	"strings"
	"time"

	"calshare/internal/agenda"
	"calshare/internal/model"
)

// Type names one removable criterion in the applied-filter summary.
type Type string

const (
	TypeQuery      Type = "query"
	TypeStartDate  Type = "startDate"
	TypeEndDate    Type = "endDate"
	TypeCategory   Type = "category"
	TypeLocation   Type = "location"
	TypeEventsFree Type = "eventsFree"
)

// ShiftUnit is the quick window-shift button: day, week or month.
type ShiftUnit string

const (
	ShiftNone  ShiftUnit = ""
	ShiftDay   ShiftUnit = "D"
	ShiftWeek  ShiftUnit = "W"
	ShiftMonth ShiftUnit = "M"
)

// Criteria is the mutable filter state of one session. Date bounds are
// calendar dates, inclusive on both ends; a zero time means unset.
type Criteria struct {
	Query      string
	StartDate  time.Time
	EndDate    time.Time
	CategoryID string
	Location   string
	FreeOnly   bool

	// Offset and ActiveButton carry the quick D/W/M shift state. Repeated
	// presses of the active button step the window further out; clearing
	// resets both together with the date bounds.
	Offset       int
	ActiveButton ShiftUnit
}

// AppliedFilter is one human-readable, removable entry of the active
// criteria summary.
type AppliedFilter struct {
	Label string
	Type  Type
}

// Options configures a session at construction time.
type Options struct {
	// Location is the display timezone; nil means time.Local.
	Location *time.Location
	// WeekStart is the first day of the week for the W quick filter.
	WeekStart time.Weekday
	// Categories backs the id-to-name lookup for filter labels.
	Categories []model.Category
}

// Session owns the criteria of one view and the derived filtered events and
// applied-filter list. Each concurrent view must own its own Session; the
// struct is not safe for shared mutation.
type Session struct {
	loc        *time.Location
	weekStart  time.Weekday
	categories map[string]model.Category

	events   []model.Event
	criteria Criteria

	filtered []model.Event
	applied  []AppliedFilter
}

// NewSession builds a session over an already-visibility-filtered snapshot
// and computes the initial derived state.
func NewSession(events []model.Event, opts Options) *Session {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	cats := make(map[string]model.Category, len(opts.Categories))
	for _, c := range opts.Categories {
		cats[c.ID] = c
	}
	s := &Session{
		loc:        loc,
		weekStart:  opts.WeekStart,
		categories: cats,
		events:     events,
	}
	s.recompute()
	return s
}

// ReplaceEvents swaps in a fresh snapshot, keeping the criteria.
func (s *Session) ReplaceEvents(events []model.Event) {
	s.events = events
	s.recompute()
}

// Criteria returns a copy of the current criteria.
func (s *Session) Criteria() Criteria {
	return s.criteria
}

// FilteredEvents returns the current derived event list. The slice is
// rebuilt on every mutation; callers must not modify it.
func (s *Session) FilteredEvents() []model.Event {
	return s.filtered
}

// AppliedFilters returns the current applied-filter summary, ordered by
// criterion declaration order.
func (s *Session) AppliedFilters() []AppliedFilter {
	return s.applied
}

func (s *Session) SetQuery(q string) {
	s.criteria.Query = q
	s.recompute()
}

// SetStartDate sets the inclusive lower date bound; a zero time clears it.
func (s *Session) SetStartDate(t time.Time) {
	s.criteria.StartDate = t
	s.recompute()
}

// SetEndDate sets the inclusive upper date bound; a zero time clears it.
func (s *Session) SetEndDate(t time.Time) {
	s.criteria.EndDate = t
	s.recompute()
}

func (s *Session) SetCategory(id string) {
	s.criteria.CategoryID = id
	s.recompute()
}

func (s *Session) SetLocation(name string) {
	s.criteria.Location = name
	s.recompute()
}

func (s *Session) SetShowEventsFree(on bool) {
	s.criteria.FreeOnly = on
	s.recompute()
}

// SetOffset sets the quick-shift offset directly.
func (s *Session) SetOffset(n int) {
	s.criteria.Offset = n
	s.recompute()
}

// UpdateOffset applies a functional update to the quick-shift offset.
func (s *Session) UpdateOffset(fn func(int) int) {
	s.criteria.Offset = fn(s.criteria.Offset)
	s.recompute()
}

// SetActiveButton sets the active quick-shift unit without moving the
// window; ShiftNone deactivates it.
func (s *Session) SetActiveButton(unit ShiftUnit) {
	s.criteria.ActiveButton = unit
	s.recompute()
}

// PressShift handles one press of a D/W/M quick button: pressing the active
// unit again steps the window one unit further from now, pressing a
// different unit starts over at the current day/week/month.
func (s *Session) PressShift(unit ShiftUnit, now time.Time) {
	if unit == ShiftNone {
		return
	}
	if s.criteria.ActiveButton == unit {
		s.criteria.Offset++
	} else {
		s.criteria.ActiveButton = unit
		s.criteria.Offset = 0
	}
	start, end := s.shiftWindow(unit, s.criteria.Offset, now)
	s.criteria.StartDate = start
	s.criteria.EndDate = end
	s.recompute()
}

// ClearShift resets the date bounds, offset and active button in one
// transition.
func (s *Session) ClearShift() {
	s.criteria.StartDate = time.Time{}
	s.criteria.EndDate = time.Time{}
	s.criteria.Offset = 0
	s.criteria.ActiveButton = ShiftNone
	s.recompute()
}

func (s *Session) shiftWindow(unit ShiftUnit, offset int, now time.Time) (time.Time, time.Time) {
	today := agenda.DayStart(now, s.loc)
	switch unit {
	case ShiftDay:
		day := today.AddDate(0, 0, offset)
		return day, day
	case ShiftWeek:
		back := (int(today.Weekday()) - int(s.weekStart) + 7) % 7
		weekStart := today.AddDate(0, 0, -back+offset*7)
		return weekStart, weekStart.AddDate(0, 0, 6)
	case ShiftMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
		first = first.AddDate(0, offset, 0)
		return first, first.AddDate(0, 1, -1)
	}
	return time.Time{}, time.Time{}
}

// RemoveFilter resets exactly the one criterion named by t to its default
// and leaves all others untouched.
func (s *Session) RemoveFilter(t Type) {
	switch t {
	case TypeQuery:
		s.criteria.Query = ""
	case TypeStartDate:
		s.criteria.StartDate = time.Time{}
	case TypeEndDate:
		s.criteria.EndDate = time.Time{}
	case TypeCategory:
		s.criteria.CategoryID = ""
	case TypeLocation:
		s.criteria.Location = ""
	case TypeEventsFree:
		s.criteria.FreeOnly = false
	default:
		return
	}
	s.recompute()
}

// ClearAllFilters resets every criterion to default in a single transition.
func (s *Session) ClearAllFilters() {
	s.criteria = Criteria{}
	s.recompute()
}

// recompute rebuilds the derived state from the snapshot and criteria.
func (s *Session) recompute() {
	s.filtered = Apply(s.events, s.criteria, s.loc)
	s.applied = s.appliedFilters()
}

// Apply evaluates the criteria against a snapshot. Predicates are ANDed in
// declaration order: query, start bound, end bound, category, location, free
// toggle. An inverted date range is not rejected; it simply matches nothing.
func Apply(events []model.Event, c Criteria, loc *time.Location) []model.Event {
	if loc == nil {
		loc = time.Local
	}

	query := strings.ToLower(strings.TrimSpace(c.Query))

	var startBound, endBound time.Time
	if !c.StartDate.IsZero() {
		startBound = agenda.DayStart(c.StartDate, loc)
	}
	if !c.EndDate.IsZero() {
		// Inclusive date bound: anything before midnight of the next day.
		endBound = agenda.DayStart(c.EndDate, loc).AddDate(0, 0, 1)
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if query != "" && !matchesQuery(ev, query) {
			continue
		}
		if !startBound.IsZero() && ev.Start.Before(startBound) {
			continue
		}
		if !endBound.IsZero() && !ev.Start.Before(endBound) {
			continue
		}
		if c.CategoryID != "" && ev.Category.ID != c.CategoryID {
			continue
		}
		if c.Location != "" && !matchesLocation(ev, c.Location) {
			continue
		}
		if c.FreeOnly {
			if !ev.Category.FreeMarker {
				continue
			}
		} else if ev.Category.FreeMarker {
			// Free-marker entries are placeholders; the default view hides
			// them and only the free toggle surfaces them.
			continue
		}
		out = append(out, ev)
	}
	return out
}

func matchesQuery(ev model.Event, query string) bool {
	if strings.Contains(strings.ToLower(ev.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(ev.Description), query) {
		return true
	}
	if ev.Location != nil {
		if strings.Contains(strings.ToLower(ev.Location.Venue), query) {
			return true
		}
		if strings.Contains(strings.ToLower(ev.Location.City), query) {
			return true
		}
	}
	return false
}

func matchesLocation(ev model.Event, sel string) bool {
	if ev.Location == nil {
		return false
	}
	return ev.Location.City == sel || ev.Location.Venue == sel
}

const labelDateLayout = "2006-01-02"

// appliedFilters derives the summary from the current criteria values. One
// entry per non-default criterion, in criterion declaration order.
func (s *Session) appliedFilters() []AppliedFilter {
	c := s.criteria
	out := make([]AppliedFilter, 0, 6)

	if strings.TrimSpace(c.Query) != "" {
		out = append(out, AppliedFilter{Label: fmt.Sprintf("%q", c.Query), Type: TypeQuery})
	}
	if !c.StartDate.IsZero() {
		out = append(out, AppliedFilter{
			Label: "From: " + c.StartDate.In(s.loc).Format(labelDateLayout),
			Type:  TypeStartDate,
		})
	}
	if !c.EndDate.IsZero() {
		out = append(out, AppliedFilter{
			Label: "To: " + c.EndDate.In(s.loc).Format(labelDateLayout),
			Type:  TypeEndDate,
		})
	}
	if c.CategoryID != "" {
		name := c.CategoryID
		if cat, ok := s.categories[c.CategoryID]; ok && cat.Name != "" {
			name = cat.Name
		}
		out = append(out, AppliedFilter{Label: "Category: " + name, Type: TypeCategory})
	}
	if c.Location != "" {
		out = append(out, AppliedFilter{Label: "Location: " + c.Location, Type: TypeLocation})
	}
	if c.FreeOnly {
		out = append(out, AppliedFilter{Label: "Showing free days", Type: TypeEventsFree})
	}
	return out
}
