// Package visibility applies per-connection event visibility rules before
// events reach the aggregation and filtering stages.
package visibility

import "calshare/internal/model"

// FilterUserEvents retains an event when the viewer owns it, or when its
// owner is a connection that has not hidden their events. Events from
// connections with HideEvents set and events from unknown owners are dropped.
// Pure filter; input order is preserved.
func FilterUserEvents(events []model.Event, viewerID string, connections []model.Connection) []model.Event {
	visible := make(map[string]bool, len(connections))
	for _, c := range connections {
		visible[c.ID] = !c.HideEvents
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.CreatedBy.ID == viewerID {
			out = append(out, ev)
			continue
		}
		if visible[ev.CreatedBy.ID] {
			out = append(out, ev)
		}
	}
	return out
}
