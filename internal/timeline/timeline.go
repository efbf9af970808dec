// Package timeline groups captured timestamps by participant.
package timeline

import (
	"fmt"
	"slices"

	"autoprotocol/internal/participants"
	"autoprotocol/internal/timepoint"
)

// Timeline maps a participant number to the timestamps recorded for it, in
// ascending order. Duplicates are kept since a participant may cross the same
// point on several laps.
type Timeline map[int][]int64

// IDs returns the participant numbers in ascending order.
func (t Timeline) IDs() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the total number of timestamps across all participants.
func (t Timeline) Len() int {
	n := 0
	for _, stamps := range t {
		n += len(stamps)
	}
	return n
}

// Aggregate distributes each record's timestamp to every participant its range
// text names and sorts each participant's series. Range text is sanitized
// before expansion. A record whose range expands to nothing is skipped. The
// first record that cannot be expanded aborts the whole pass.
func Aggregate(records []timepoint.Record) (Timeline, error) {
	out := Timeline{}
	for i, record := range records {
		set, err := participants.Expand(participants.Sanitize(record.Participants))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for id := range set {
			out[id] = append(out[id], record.Timestamp)
		}
	}
	for _, stamps := range out {
		slices.Sort(stamps)
	}
	return out, nil
}
