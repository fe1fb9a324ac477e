package share_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calshare/internal/model"
	"calshare/internal/share"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestComposeEmpty(t *testing.T) {
	require.Equal(t, "", share.Compose(nil, time.UTC, share.Format{}))
	require.Equal(t, "", share.Compose([]model.Event{}, time.UTC, share.Format{}))
	// Malformed-only input also yields "nothing to copy".
	require.Equal(t, "", share.Compose([]model.Event{{ID: "bad", Title: "No start"}}, time.UTC, share.Format{}))
}

func TestComposeSingleEvent(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Sprint review", Start: utc(2023, 6, 1, 10, 0)},
	}

	out := share.Compose(events, time.UTC, share.Format{})

	require.Equal(t, "Thu, 01 Jun 2023\n10:00 - Sprint review\n", out)
}

func TestComposeGroupsAndOrders(t *testing.T) {
	events := []model.Event{
		// Deliberately out of order across and within days.
		{ID: "e3", Title: "Concert", Start: utc(2023, 6, 10, 20, 0),
			Location: &model.Location{Venue: "Arena", City: "Hamburg"}},
		{ID: "e2", Title: "Picnic", Start: utc(2023, 6, 1, 14, 0), Unconfirmed: true,
			Location: &model.Location{City: "Berlin"}},
		{ID: "e1", Title: "Standup", Start: utc(2023, 6, 1, 10, 0)},
	}

	out := share.Compose(events, time.UTC, share.Format{})

	want := strings.Join([]string{
		"Thu, 01 Jun 2023",
		"10:00 - Standup",
		"14:00 - Picnic (unconfirmed) @ Berlin",
		"",
		"Sat, 10 Jun 2023",
		"20:00 - Concert @ Arena",
		"",
	}, "\n")
	require.Equal(t, want, out)
}

func TestComposeDeterministic(t *testing.T) {
	events := []model.Event{
		{ID: "a", Title: "One", Start: utc(2023, 6, 1, 9, 0)},
		{ID: "b", Title: "Two", Start: utc(2023, 6, 1, 9, 0)},
		{ID: "c", Title: "Three", Start: utc(2023, 6, 2, 9, 0)},
	}

	first := share.Compose(events, time.UTC, share.Format{})
	second := share.Compose(events, time.UTC, share.Format{})
	require.Equal(t, first, second)

	// Equal start times keep input order (stable sort).
	require.True(t, strings.Index(first, "One") < strings.Index(first, "Two"))
}

func TestComposeCustomFormats(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Standup", Start: utc(2023, 6, 1, 10, 30)},
	}

	out := share.Compose(events, time.UTC, share.Format{
		HeadingFormat: "2006-01-02",
		TimeFormat:    "3:04 PM",
	})
	require.Equal(t, "2023-06-01\n10:30 AM - Standup\n", out)
}
