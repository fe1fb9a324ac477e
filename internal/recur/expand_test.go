package recur_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calshare/internal/model"
	"calshare/internal/recur"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func weeklyEvent() model.Event {
	return model.Event{
		ID:    "standup",
		Title: "Weekly standup",
		Start: utc(2025, 1, 6, 10, 0),
		End:   utc(2025, 1, 6, 10, 30),
		Recurrence: &model.Recurrence{
			IsRecurring: true,
			Pattern: &model.RecurrencePattern{
				Frequency: "weekly",
				Interval:  1,
				StartDate: utc(2025, 1, 6, 10, 0),
			},
		},
	}
}

func TestExpandWeekly(t *testing.T) {
	res, err := recur.Expand([]model.Event{weeklyEvent()}, recur.ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(2025, 1, 1, 0, 0),
		RangeEnd:   utc(2025, 2, 2, 23, 59),
	})
	require.NoError(t, err)
	require.Empty(t, res.TruncatedIDs)

	// Mondays Jan 6, 13, 20, 27.
	require.Len(t, res.Events, 4)
	for i, ev := range res.Events {
		require.Equal(t, utc(2025, 1, 6+7*i, 10, 0), ev.Start)
		// Duration is preserved.
		require.Equal(t, 30*time.Minute, ev.Duration())
		// Instances carry no descriptor and a derived, unique id.
		require.Nil(t, ev.Recurrence)
		require.Equal(t, "standup@"+ev.Start.Format(time.RFC3339), ev.ID)
		require.Equal(t, "Weekly standup", ev.Title)
	}
}

func TestExpandHonorsUntil(t *testing.T) {
	ev := weeklyEvent()
	ev.Recurrence.Pattern.EndDate = utc(2025, 1, 20, 10, 0)

	res, err := recur.Expand([]model.Event{ev}, recur.ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(2025, 1, 1, 0, 0),
		RangeEnd:   utc(2025, 3, 1, 0, 0),
	})
	require.NoError(t, err)
	// Jan 6, 13, 20 — the until bound is inclusive.
	require.Len(t, res.Events, 3)
	require.Equal(t, utc(2025, 1, 20, 10, 0), res.Events[2].Start)
}

func TestExpandInterval(t *testing.T) {
	ev := weeklyEvent()
	ev.Recurrence.Pattern.Interval = 2

	res, err := recur.Expand([]model.Event{ev}, recur.ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(2025, 1, 1, 0, 0),
		RangeEnd:   utc(2025, 2, 2, 23, 59),
	})
	require.NoError(t, err)
	// Jan 6 and Jan 20 only.
	require.Len(t, res.Events, 2)
	require.Equal(t, utc(2025, 1, 20, 10, 0), res.Events[1].Start)
}

func TestExpandCap(t *testing.T) {
	ev := weeklyEvent()
	ev.Recurrence.Pattern.Frequency = "daily"

	res, err := recur.Expand([]model.Event{ev}, recur.ExpandConfig{
		Location:    time.UTC,
		RangeStart:  utc(2025, 1, 6, 0, 0),
		RangeEnd:    utc(2025, 1, 31, 0, 0),
		MaxPerEvent: 5,
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 5)
	require.Equal(t, []string{"standup"}, res.TruncatedIDs)
}

func TestExpandPassesThroughNonRecurring(t *testing.T) {
	inside := model.Event{ID: "in", Title: "Inside", Start: utc(2025, 1, 10, 9, 0)}
	outside := model.Event{ID: "out", Title: "Outside", Start: utc(2024, 6, 1, 9, 0)}

	res, err := recur.Expand([]model.Event{inside, outside}, recur.ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(2025, 1, 1, 0, 0),
		RangeEnd:   utc(2025, 2, 1, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	require.Equal(t, "in", res.Events[0].ID)
}

func TestExpandUnknownFrequencyKeepsBaseEvent(t *testing.T) {
	ev := weeklyEvent()
	ev.Recurrence.Pattern.Frequency = "fortnightly"

	res, err := recur.Expand([]model.Event{ev}, recur.ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(2025, 1, 1, 0, 0),
		RangeEnd:   utc(2025, 2, 1, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	require.Equal(t, "standup", res.Events[0].ID)
	require.Nil(t, res.Events[0].Recurrence)
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	_, err := recur.Expand(nil, recur.ExpandConfig{
		RangeStart: utc(2025, 2, 1, 0, 0),
		RangeEnd:   utc(2025, 1, 1, 0, 0),
	})
	require.Error(t, err)
}

func TestExpandSkipsMalformedRecurring(t *testing.T) {
	ev := model.Event{
		ID: "ghost", Title: "No start",
		Recurrence: &model.Recurrence{
			IsRecurring: true,
			Pattern:     &model.RecurrencePattern{Frequency: "daily"},
		},
	}

	res, err := recur.Expand([]model.Event{ev}, recur.ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc(2025, 1, 1, 0, 0),
		RangeEnd:   utc(2025, 2, 1, 0, 0),
	})
	require.NoError(t, err)
	require.Empty(t, res.Events)
}
