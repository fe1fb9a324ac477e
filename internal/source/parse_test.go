package source_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calshare/internal/model"
	"calshare/internal/source"
)

var testCategories = []model.Category{
	{ID: "general", Name: "General"},
	{ID: "work", Name: "Work"},
	{ID: "free", Name: "Free", FreeMarker: true},
}

func icsBody(lines ...string) []byte {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//calshare//test//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

func TestParseICS(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:ev-1",
		"DTSTART:20230601T100000Z",
		"DTEND:20230601T110000Z",
		"SUMMARY:Standup",
		"DESCRIPTION:Daily sync",
		"LOCATION:Office",
		"CATEGORIES:work",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ev-2",
		"DTSTART:20230601T140000Z",
		"SUMMARY:Maybe picnic",
		"STATUS:TENTATIVE",
		"CLASS:PRIVATE",
		"CATEGORIES:somethingelse",
		"END:VEVENT",
	)

	src := source.Source{ID: "cal1", Owner: model.UserRef{ID: "u1", Name: "User One"}}
	table := source.NewCategoryTable(testCategories)

	events, err := source.ParseICS(src, body, table)
	require.NoError(t, err)
	require.Len(t, events, 2)

	e1 := events[0]
	require.Equal(t, "ev-1", e1.ID)
	require.Equal(t, "Standup", e1.Title)
	require.Equal(t, "Daily sync", e1.Description)
	require.Equal(t, time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC), e1.Start.UTC())
	require.True(t, e1.HasEnd())
	require.Equal(t, "work", e1.Category.ID)
	require.NotNil(t, e1.Location)
	require.Equal(t, "Office", e1.Location.Venue)
	require.Equal(t, model.UserRef{ID: "u1", Name: "User One"}, e1.CreatedBy)
	require.False(t, e1.Private)
	require.False(t, e1.Unconfirmed)

	e2 := events[1]
	require.True(t, e2.Private)
	require.True(t, e2.Unconfirmed)
	require.False(t, e2.HasEnd())
	// Unknown categories resolve to the default.
	require.Equal(t, "general", e2.Category.ID)
}

func TestParseICSSkipsMalformedEvents(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:no-summary",
		"DTSTART:20230601T100000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ok",
		"DTSTART:20230602T100000Z",
		"SUMMARY:Fine",
		"END:VEVENT",
	)

	events, err := source.ParseICS(source.Source{ID: "cal1"}, body, source.NewCategoryTable(testCategories))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "ok", events[0].ID)
}

func TestParseICSRecurrenceDescriptor(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:rec-1",
		"DTSTART:20250106T100000Z",
		"SUMMARY:Weekly standup",
		"RRULE:FREQ=WEEKLY;INTERVAL=2;UNTIL=20250301T000000Z",
		"END:VEVENT",
	)

	events, err := source.ParseICS(source.Source{ID: "cal1"}, body, source.NewCategoryTable(testCategories))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	require.True(t, ev.IsRecurring())
	require.Equal(t, "weekly", ev.Recurrence.Pattern.Frequency)
	require.Equal(t, 2, ev.Recurrence.Pattern.Interval)
	require.Equal(t, ev.Start, ev.Recurrence.Pattern.StartDate)
	require.False(t, ev.Recurrence.Pattern.EndDate.IsZero())
}

func TestParseICSEmptyBody(t *testing.T) {
	_, err := source.ParseICS(source.Source{ID: "cal1"}, nil, source.NewCategoryTable(testCategories))
	require.Error(t, err)
}

func TestParseICSMissingUIDGetsGenerated(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"DTSTART:20230601T100000Z",
		"SUMMARY:Anonymous",
		"END:VEVENT",
	)

	events, err := source.ParseICS(source.Source{ID: "cal1"}, body, source.NewCategoryTable(testCategories))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotEmpty(t, events[0].ID)
}

func TestCategoryTable(t *testing.T) {
	table := source.NewCategoryTable(testCategories)

	require.Equal(t, "work", table.Resolve("Work").ID)
	require.Equal(t, "work", table.Resolve("WORK").ID)
	require.Equal(t, "general", table.Resolve("unheard of").ID)
	require.Equal(t, "general", table.Default().ID)

	freeCat, ok := table.Free()
	require.True(t, ok)
	require.True(t, freeCat.FreeMarker)

	_, ok = source.NewCategoryTable(nil).Free()
	require.False(t, ok)
}

func TestParseLocationSplitsCity(t *testing.T) {
	body := icsBody(
		"BEGIN:VEVENT",
		"UID:loc-1",
		"DTSTART:20230601T100000Z",
		"SUMMARY:Concert",
		"LOCATION:Arena\\, Hamburg",
		"END:VEVENT",
	)

	events, err := source.ParseICS(source.Source{ID: "cal1"}, body, source.NewCategoryTable(testCategories))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Location)
	require.Equal(t, "Arena", events[0].Location.Venue)
	require.Equal(t, "Hamburg", events[0].Location.City)
}
