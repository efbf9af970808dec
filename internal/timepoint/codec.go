package timepoint

import (
	"strconv"
	"strings"

	"autoprotocol/internal/faults"
)

// Delimiter separates participant text from the timestamp in an encoded
// record. Sanitized participant text never contains it.
const Delimiter = "%"

// Encode renders r as "participants%timestamp" with no trailing newline.
func Encode(r Record) string {
	return r.Participants + Delimiter + strconv.FormatInt(r.Timestamp, 10)
}

// Decode parses a line produced by Encode. The split happens at the first
// delimiter; the left side may be empty. A trailing line break is ignored.
func Decode(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	participants, raw, found := strings.Cut(line, Delimiter)
	if !found {
		return Record{}, &faults.DecodeError{Unit: "time record", Input: line, Reason: "missing " + Delimiter + " delimiter"}
	}
	timestamp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Record{}, &faults.DecodeError{Unit: "time record", Input: line, Reason: "timestamp is not an integer", Err: err}
	}
	return New(timestamp, participants), nil
}
