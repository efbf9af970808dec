package timepoint

import (
	"cmp"
	"slices"
)

// Record is one captured checkpoint event. Timestamp is in milliseconds.
type Record struct {
	Timestamp    int64
	Participants string
	set          bool
}

// Placeholder returns an empty record waiting for a timestamp.
func Placeholder() Record {
	return Record{}
}

// New returns a record with both timestamp and participant text assigned.
func New(timestamp int64, participants string) Record {
	return Record{Timestamp: timestamp, Participants: participants, set: true}
}

// IsEmpty reports whether no timestamp has been assigned yet.
func (r Record) IsEmpty() bool {
	return !r.set
}

// IsReady reports whether the record has a timestamp and participant text.
func (r Record) IsReady() bool {
	return r.set && r.Participants != ""
}

// SetTime assigns the timestamp.
func (r *Record) SetTime(timestamp int64) {
	r.Timestamp = timestamp
	r.set = true
}

// SetParticipants assigns the participant range text.
func (r *Record) SetParticipants(text string) {
	r.Participants = text
}

// Clock renders the timestamp as HH:mm:ss.SSS, or a dash placeholder for an
// empty record.
func (r Record) Clock() string {
	if !r.set {
		return emptyClock
	}
	return FormatElapsed(r.Timestamp)
}

// CompareByTimestamp orders records by timestamp only. Participant text and
// readiness do not take part.
func CompareByTimestamp(a, b Record) int {
	return cmp.Compare(a.Timestamp, b.Timestamp)
}

// SortByTimestamp sorts records in place by ascending timestamp, keeping the
// input order of equal timestamps.
func SortByTimestamp(records []Record) {
	slices.SortStableFunc(records, CompareByTimestamp)
}
