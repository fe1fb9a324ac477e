package visibility_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"calshare/internal/model"
	"calshare/internal/visibility"
)

func TestFilterUserEvents(t *testing.T) {
	start := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: "own", Start: start, CreatedBy: model.UserRef{ID: "viewer"}},
		{ID: "own-private", Start: start, CreatedBy: model.UserRef{ID: "viewer"}, Private: true},
		{ID: "shown", Start: start, CreatedBy: model.UserRef{ID: "alice"}},
		{ID: "hidden", Start: start, CreatedBy: model.UserRef{ID: "bob"}},
		{ID: "stranger", Start: start, CreatedBy: model.UserRef{ID: "mallory"}},
		{ID: "no-owner", Start: start},
	}
	connections := []model.Connection{
		{ID: "alice", Name: "Alice", HideEvents: false},
		{ID: "bob", Name: "Bob", HideEvents: true},
	}

	out := visibility.FilterUserEvents(events, "viewer", connections)

	got := make([]string, 0, len(out))
	for _, ev := range out {
		got = append(got, ev.ID)
	}
	// Owner always sees their own events, including private ones; order is
	// preserved.
	require.Equal(t, []string{"own", "own-private", "shown"}, got)
}

func TestFilterUserEventsNoConnections(t *testing.T) {
	events := []model.Event{
		{ID: "own", CreatedBy: model.UserRef{ID: "viewer"}},
		{ID: "other", CreatedBy: model.UserRef{ID: "alice"}},
	}

	out := visibility.FilterUserEvents(events, "viewer", nil)
	require.Len(t, out, 1)
	require.Equal(t, "own", out[0].ID)
}

func TestFilterUserEventsEmpty(t *testing.T) {
	out := visibility.FilterUserEvents(nil, "viewer", nil)
	require.NotNil(t, out)
	require.Empty(t, out)
}
