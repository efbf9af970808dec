package protocol

import (
	"bufio"
	"slices"
	"strconv"
	"strings"

	"autoprotocol/internal/blocktext"
	"autoprotocol/internal/faults"
	"autoprotocol/internal/timeline"
)

// Parse reads a document produced by Document.String. Lines after the meta
// block must be "id=t;...;" data lines; blank lines are skipped. Any other
// shape fails with a DecodeError.
func Parse(text string) (Document, error) {
	block, err := blocktext.Decode(text, MetaStart, MetaEnd)
	if err != nil {
		return Document{}, err
	}
	if !block.Found {
		return Document{}, &faults.DecodeError{Unit: "protocol", Input: firstLine(text), Reason: "missing " + MetaStart}
	}

	data := timeline.Timeline{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	inMeta, pastMeta := false, false
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case !inMeta && !pastMeta:
			inMeta = line == MetaStart
			continue
		case inMeta:
			if line == MetaEnd {
				inMeta, pastMeta = false, true
			}
			continue
		}
		if line == "" {
			continue
		}
		id, stamps, err := parseDataLine(line)
		if err != nil {
			return Document{}, err
		}
		data[id] = append(data[id], stamps...)
	}
	if err := scanner.Err(); err != nil {
		return Document{}, err
	}
	for _, stamps := range data {
		slices.Sort(stamps)
	}
	return Document{meta: block.Pairs, timeline: data}, nil
}

func parseDataLine(line string) (int, []int64, error) {
	rawID, rawTimes, ok := strings.Cut(line, "=")
	if !ok {
		return 0, nil, &faults.DecodeError{Unit: "protocol line", Input: line, Reason: "missing ="}
	}
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 0 {
		return 0, nil, &faults.DecodeError{Unit: "protocol line", Input: line, Reason: "participant id is not a number", Err: err}
	}
	if rawTimes != "" && !strings.HasSuffix(rawTimes, timeSeparator) {
		return 0, nil, &faults.DecodeError{Unit: "protocol line", Input: line, Reason: "missing trailing " + timeSeparator}
	}
	parts := strings.Split(strings.TrimSuffix(rawTimes, timeSeparator), timeSeparator)
	stamps := make([]int64, 0, len(parts))
	for _, part := range parts {
		if part == "" && rawTimes == "" {
			break
		}
		ts, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, nil, &faults.DecodeError{Unit: "protocol line", Input: line, Reason: "timestamp is not an integer", Err: err}
		}
		stamps = append(stamps, ts)
	}
	return id, stamps, nil
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}
