package source

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	appLog "calshare/internal/log"
	"calshare/internal/model"
)

// ParseICS parses a single ICS payload into model events. Individual
// malformed VEVENTs are logged and skipped so one bad record cannot sink the
// whole feed.
//
// Mapping:
//   - SUMMARY/DESCRIPTION/LOCATION -> Title/Description/Location
//   - CLASS:PRIVATE -> Private
//   - STATUS:TENTATIVE -> Unconfirmed
//   - CATEGORIES -> resolved against the configured category table
//   - RRULE FREQ/INTERVAL/UNTIL -> stored recurrence descriptor (expansion
//     happens later, in internal/recur)
func ParseICS(src Source, body []byte, table CategoryTable) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(src, ve, table)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent, table CategoryTable) (model.Event, error) {
	var out model.Event
	out.CreatedBy = src.Owner
	out.Category = table.Default()

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		out.ID = p.Value
	} else {
		out.ID = uuid.NewString()
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if out.Title == "" {
		return out, errors.New("missing SUMMARY")
	}

	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil && p.Value != "" {
		out.Location = parseLocation(p.Value)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	// A missing DTEND just leaves the end open.
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	}

	// Raw property names to avoid constant variants across library versions.
	if p := ve.GetProperty("CLASS"); p != nil {
		out.Private = strings.EqualFold(p.Value, "PRIVATE")
	}
	if p := ve.GetProperty("STATUS"); p != nil {
		out.Unconfirmed = strings.EqualFold(p.Value, "TENTATIVE")
	}
	if p := ve.GetProperty("CATEGORIES"); p != nil && p.Value != "" {
		// Only the first category is significant; every event belongs to
		// exactly one.
		first := strings.SplitN(p.Value, ",", 2)[0]
		out.Category = table.Resolve(first)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		if rec, ok := parseRRule(p.Value, out.Start); ok {
			out.Recurrence = rec
		} else {
			appLog.Warn("ics rrule ignored", "id", out.ID, "rrule", p.Value)
		}
	}

	return out, nil
}

// parseLocation splits "Venue, City" on the first comma; a value without a
// comma is treated as the venue alone. ICS comma escapes are undone first.
func parseLocation(v string) *model.Location {
	v = strings.ReplaceAll(v, `\,`, ",")
	parts := strings.SplitN(v, ",", 2)
	loc := &model.Location{Venue: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		loc.City = strings.TrimSpace(parts[1])
	}
	return loc
}

// parseRRule converts a raw RRULE value into the stored descriptor. Only the
// frequencies the descriptor can express survive; anything else is dropped.
func parseRRule(raw string, dtstart time.Time) (*model.Recurrence, bool) {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return nil, false
	}

	var freq string
	switch opt.Freq {
	case rrule.DAILY:
		freq = "daily"
	case rrule.WEEKLY:
		freq = "weekly"
	case rrule.MONTHLY:
		freq = "monthly"
	case rrule.YEARLY:
		freq = "yearly"
	default:
		return nil, false
	}

	p := &model.RecurrencePattern{
		Frequency: freq,
		Interval:  opt.Interval,
		StartDate: dtstart,
	}
	if !opt.Until.IsZero() {
		p.EndDate = opt.Until
	}
	return &model.Recurrence{IsRecurring: true, Pattern: p}, true
}
