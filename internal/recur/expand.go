// Package recur expands stored recurrence descriptors into concrete event
// instances inside a bounded window. It is a separate pipeline stage that
// runs before grouping and filtering; the engine downstream never expands.
package recur

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	appLog "calshare/internal/log"
	"calshare/internal/model"
)

const defaultMaxPerEvent = 1000

// ExpandConfig controls how expansion is performed.
type ExpandConfig struct {
	// Location is the display timezone for resulting instances. If nil,
	// time.Local is used.
	Location *time.Location

	// RangeStart / RangeEnd define the inclusive expansion window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxPerEvent caps occurrences per recurring event to avoid unbounded
	// expansions. Zero means defaultMaxPerEvent.
	MaxPerEvent int
}

// Result carries the expanded event list plus the ids of recurring events
// whose expansion hit the cap.
type Result struct {
	Events       []model.Event
	TruncatedIDs []string
}

// Expand returns the concrete instances of all events inside the window.
// Non-recurring events pass through untouched when they overlap the window;
// recurring ones are replaced by per-occurrence instances with derived ids
// and a nil recurrence descriptor. A malformed descriptor degrades to the
// base event alone rather than erasing it.
func Expand(events []model.Event, cfg ExpandConfig) (Result, error) {
	var result Result

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxPerEvent <= 0 {
		cfg.MaxPerEvent = defaultMaxPerEvent
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !ev.IsRecurring() {
			if overlapsWindow(ev, cfg) {
				out = append(out, ev)
			}
			continue
		}

		instances, hitCap := expandRecurring(ev, cfg)
		out = append(out, instances...)
		if hitCap {
			result.TruncatedIDs = append(result.TruncatedIDs, ev.ID)
			appLog.Warn("expand: occurrences truncated at cap",
				"id", ev.ID, "cap", cfg.MaxPerEvent)
		}
	}

	result.Events = out
	return result, nil
}

func expandRecurring(ev model.Event, cfg ExpandConfig) ([]model.Event, bool) {
	p := ev.Recurrence.Pattern

	dtstart := p.StartDate
	if dtstart.IsZero() {
		dtstart = ev.Start
	}
	if dtstart.IsZero() {
		appLog.Warn("expand: recurring event without a start, skipped", "id", ev.ID)
		return nil, false
	}

	freq, ok := parseFrequency(p.Frequency)
	if !ok {
		// Unknown frequency: fall back to the base event so a bad pattern
		// cannot blank the calendar.
		appLog.Warn("expand: unknown recurrence frequency, keeping base event",
			"id", ev.ID, "frequency", p.Frequency)
		if overlapsWindow(ev, cfg) {
			return []model.Event{plainInstance(ev, cfg.Location)}, false
		}
		return nil, false
	}

	interval := p.Interval
	if interval < 1 {
		interval = 1
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  dtstart,
	}
	if !p.EndDate.IsZero() {
		opt.Until = p.EndDate
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		appLog.Error("expand: rule construction failed, keeping base event", err, "id", ev.ID)
		if overlapsWindow(ev, cfg) {
			return []model.Event{plainInstance(ev, cfg.Location)}, false
		}
		return nil, false
	}

	// Keep window comparison in the rule's own timezone, as the occurrence
	// times come back in dtstart's location.
	rangeStart := cfg.RangeStart.In(dtstart.Location())
	rangeEnd := cfg.RangeEnd.In(dtstart.Location())

	occTimes := r.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(occTimes) > cfg.MaxPerEvent {
		occTimes = occTimes[:cfg.MaxPerEvent]
		hitCap = true
	}

	duration := ev.Duration()
	baseID := ev.ID
	if baseID == "" {
		baseID = uuid.NewString()
	}

	instances := make([]model.Event, 0, len(occTimes))
	for _, occStart := range occTimes {
		inst := ev
		inst.Start = occStart.In(cfg.Location)
		if ev.HasEnd() {
			inst.End = inst.Start.Add(duration)
		} else {
			inst.End = time.Time{}
		}
		inst.ID = baseID + "@" + inst.Start.Format(time.RFC3339)
		inst.Recurrence = nil
		instances = append(instances, inst)
	}
	return instances, hitCap
}

// plainInstance normalizes a pass-through event into the display timezone
// and strips the descriptor, mirroring what expansion does to instances.
func plainInstance(ev model.Event, loc *time.Location) model.Event {
	out := ev
	out.Start = ev.Start.In(loc)
	if ev.HasEnd() {
		out.End = ev.End.In(loc)
	}
	out.Recurrence = nil
	return out
}

func parseFrequency(s string) (rrule.Frequency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return rrule.DAILY, true
	case "weekly":
		return rrule.WEEKLY, true
	case "monthly":
		return rrule.MONTHLY, true
	case "yearly":
		return rrule.YEARLY, true
	}
	return 0, false
}

// overlapsWindow reports whether a non-recurring event intersects the
// expansion window. Events without an end are treated as points.
func overlapsWindow(ev model.Event, cfg ExpandConfig) bool {
	if ev.Start.IsZero() {
		return false
	}
	end := ev.End
	if end.IsZero() {
		end = ev.Start
	}
	if end.Before(cfg.RangeStart) {
		return false
	}
	if ev.Start.After(cfg.RangeEnd) {
		return false
	}
	return true
}
