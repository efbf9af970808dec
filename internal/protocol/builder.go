package protocol

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"autoprotocol/internal/blocktext"
	"autoprotocol/internal/eventconf"
	"autoprotocol/internal/faults"
	"autoprotocol/internal/timeline"
	"autoprotocol/internal/timepoint"
)

var (
	errBadMetaKey    = errors.New("key must be non-empty without '=' or line breaks")
	errMetaLineBreak = errors.New("value must not contain line breaks")
)

// Builder collects meta pairs before a document is built. Setting a key twice
// replaces the value in place.
type Builder struct {
	meta    []blocktext.Pair
	invalid []faults.FieldError
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Set records one meta pair. A pair that would not survive a round trip
// through the text form is held back and reported by Build.
func (b *Builder) Set(key, value string) *Builder {
	switch {
	case key == "" || strings.ContainsAny(key, "=\r\n"):
		b.invalid = append(b.invalid, faults.FieldError{Key: key, Value: value, Err: errBadMetaKey})
		return b
	case strings.ContainsAny(value, "\r\n"):
		b.invalid = append(b.invalid, faults.FieldError{Key: key, Value: value, Err: errMetaLineBreak})
		return b
	}
	for i := range b.meta {
		if b.meta[i].Key == key {
			b.meta[i].Value = value
			return b
		}
	}
	b.meta = append(b.meta, blocktext.Pair{Key: key, Value: value})
	return b
}

// Event records the event name, lap count and checkpoint count.
func (b *Builder) Event(e eventconf.Event) *Builder {
	return b.Set(KeyEventName, e.Name).
		Set(KeyLapsCount, strconv.Itoa(e.Laps)).
		Set(KeyCheckpoints, strconv.Itoa(e.Checkpoints))
}

// Point records the point id.
func (b *Builder) Point(p eventconf.Point) *Builder {
	return b.Set(KeyPointID, strconv.Itoa(p.ID))
}

// Build aggregates records and returns the finished document. The time
// pattern and zone are appended to the meta block. The builder can be reused.
func (b *Builder) Build(records []timepoint.Record) (Document, error) {
	if len(b.invalid) > 0 {
		return Document{}, &faults.ValidationError{Record: "protocol meta", Fields: slices.Clone(b.invalid)}
	}
	agg, err := timeline.Aggregate(records)
	if err != nil {
		return Document{}, err
	}
	meta := slices.Clone(b.meta)
	meta = setPair(meta, KeyTimePattern, timepoint.TimePattern)
	meta = setPair(meta, KeyTimeZone, timepoint.TimeZone)
	return Document{meta: meta, timeline: agg}, nil
}

func setPair(pairs []blocktext.Pair, key, value string) []blocktext.Pair {
	for i := range pairs {
		if pairs[i].Key == key {
			pairs[i].Value = value
			return pairs
		}
	}
	return append(pairs, blocktext.Pair{Key: key, Value: value})
}
