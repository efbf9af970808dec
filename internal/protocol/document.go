package protocol

import (
	"slices"
	"strconv"
	"strings"

	"autoprotocol/internal/blocktext"
	"autoprotocol/internal/timeline"
)

// Markers and meta keys of a protocol document.
const (
	MetaStart = "%META_START%"
	MetaEnd   = "%META_END%"

	KeyEventName   = "EVENT_NAME"
	KeyLapsCount   = "LAPS_COUNT"
	KeyCheckpoints = "CHECKPOINTS_COUNT"
	KeyPointID     = "POINT_ID"
	KeyTimePattern = "TIME_PATTERN"
	KeyTimeZone    = "TIME_ZONE"

	// Extension is the file extension of stored protocols.
	Extension = ".apd"

	timeSeparator = ";"
)

// Document is an immutable protocol. The zero value is an empty document.
type Document struct {
	meta     []blocktext.Pair
	timeline timeline.Timeline
}

// Meta returns a copy of the meta pairs in document order.
func (d Document) Meta() []blocktext.Pair {
	return slices.Clone(d.meta)
}

// MetaValue returns the first meta value stored under key.
func (d Document) MetaValue(key string) (string, bool) {
	return blocktext.Block{Pairs: d.meta}.Lookup(key)
}

// Timeline returns a copy of the per-participant timestamps.
func (d Document) Timeline() timeline.Timeline {
	out := make(timeline.Timeline, len(d.timeline))
	for id, stamps := range d.timeline {
		out[id] = slices.Clone(stamps)
	}
	return out
}

// String renders the document text.
func (d Document) String() string {
	var b strings.Builder
	blocktext.Write(&b, MetaStart, MetaEnd, d.meta)
	for _, id := range d.timeline.IDs() {
		b.WriteString(strconv.Itoa(id))
		b.WriteByte('=')
		for _, ts := range d.timeline[id] {
			b.WriteString(strconv.FormatInt(ts, 10))
			b.WriteString(timeSeparator)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
