package eventconf

import "autoprotocol/internal/blocktext"

// Event block markers and keys.
const (
	EventStart = "%MOBILE_START%"
	EventEnd   = "%MOBILE_END%"

	KeyEventName       = "EVENT_NAME"
	KeyMaxParticipant  = "MAX_PARTICIPANT"
	KeyAutoSyncDelay   = "AUTO_SYNC_DELAY"
	KeyManualSyncDelay = "MANUAL_SYNC_DELAY"
	KeyLapsCount       = "LAPS_COUNT"
	KeyCheckpoints     = "CHECKPOINTS_COUNT"

	// EventExtension is the file extension of saved event configurations.
	EventExtension = ".apc"
)

// Event describes a timed event.
type Event struct {
	Name string
	// MaxParticipant is the highest participant number; zero means no
	// ceiling.
	MaxParticipant int
	// AutoSyncDelay is in minutes.
	AutoSyncDelay int
	// ManualSyncDelay is in seconds.
	ManualSyncDelay int
	Laps            int
	Checkpoints     int
}

var eventSchema = schema[Event]{
	record: "event configuration",
	start:  EventStart,
	end:    EventEnd,
	fields: []field[Event]{
		stringField(KeyEventName, func(e *Event) *string { return &e.Name }),
		intField(KeyMaxParticipant, func(e *Event) *int { return &e.MaxParticipant }),
		intField(KeyAutoSyncDelay, func(e *Event) *int { return &e.AutoSyncDelay }),
		intField(KeyManualSyncDelay, func(e *Event) *int { return &e.ManualSyncDelay }),
		intField(KeyLapsCount, func(e *Event) *int { return &e.Laps }),
		intField(KeyCheckpoints, func(e *Event) *int { return &e.Checkpoints }),
	},
}

// DefaultEvent returns an event with every field at its default.
func DefaultEvent() Event {
	return Event{
		Name:            "New event",
		MaxParticipant:  0,
		AutoSyncDelay:   1,
		ManualSyncDelay: 10,
		Laps:            1,
		Checkpoints:     1,
	}
}

// Ceiling returns the participant ceiling and whether one is configured.
func (e Event) Ceiling() (int, bool) {
	return e.MaxParticipant, e.MaxParticipant > 0
}

// Set assigns one field by key using the same conversion rules as decoding.
// Empty values are rejected. On error e is unchanged.
func (e *Event) Set(key, value string) error {
	return eventSchema.set(e, key, value)
}

// Pairs returns the fields in their canonical order.
func (e Event) Pairs() []blocktext.Pair {
	return eventSchema.pairs(e)
}

// EventKeys lists the keys of an event block in canonical order.
func EventKeys() []string {
	return eventSchema.keys()
}

// EncodeEvent renders e as a marker delimited block.
func EncodeEvent(e Event) string {
	return eventSchema.encode(e)
}

// DecodeEvent reads the event block from text. Missing keys keep their
// defaults. When no block is present the defaults are returned with
// ErrNoBlock.
func DecodeEvent(text string) (Event, error) {
	return eventSchema.decode(text, DefaultEvent())
}
