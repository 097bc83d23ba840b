package flightlog

import (
	"cmp"
	"slices"

	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/models/dtos"
)

// ExtractEvents projects MODE, EV and ERR records into events in the order they
// were logged. Events are not sorted by their time field; use MergeChronological
// for that.
func ExtractEvents(store *MessageStore) []dtos.Event {
	events := []dtos.Event{}
	if store == nil {
		return events
	}

	pos := make([]int, len(constants.EventTypes))
	for {
		next := -1
		for i, typ := range constants.EventTypes {
			seqs := store.seqs[typ]
			if pos[i] >= len(seqs) {
				continue
			}
			if next < 0 || seqs[pos[i]] < store.seqs[constants.EventTypes[next]][pos[next]] {
				next = i
			}
		}
		if next < 0 {
			return events
		}

		typ := constants.EventTypes[next]
		rec := store.records[typ][pos[next]]
		pos[next]++

		// A malformed time field degrades to 0 like a missing one.
		t, _, _ := timestamp(rec.Fields)
		events = append(events, dtos.Event{
			Type: typ,
			Time: t,
			Data: rec.Fields,
		})
	}
}

// MergeChronological returns a copy of events ordered by time. Events with equal
// times keep their relative order.
func MergeChronological(events []dtos.Event) []dtos.Event {
	out := slices.Clone(events)
	if out == nil {
		out = []dtos.Event{}
	}
	slices.SortStableFunc(out, func(a, b dtos.Event) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return out
}
