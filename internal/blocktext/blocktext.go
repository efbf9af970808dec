// Package blocktext encodes ordered key=value pairs between a start and an
// end marker line, and finds such a block again in arbitrary text.
//
// The format is line oriented and LF terminated. Only the first "=" on a
// line separates key from value, so values may contain "=" themselves.
// Neither keys nor values may contain a line break.
package blocktext

import (
	"bufio"
	"io"
	"strings"

	"autoprotocol/internal/faults"
)

// Pair is one key=value line.
type Pair struct {
	Key   string
	Value string
}

// Block is the result of a decode. Found is false when the start marker never
// appeared, which callers treat as "no recognised block" rather than an error.
type Block struct {
	Found bool
	Pairs []Pair
}

// Lookup returns the value of the first pair with the given key.
func (b Block) Lookup(key string) (string, bool) {
	for _, p := range b.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the start marker, one line per pair in order and the end
// marker, each terminated by "\n".
func Encode(start, end string, pairs []Pair) string {
	var b strings.Builder
	Write(&b, start, end, pairs)
	return b.String()
}

// Write is Encode for an existing builder.
func Write(b *strings.Builder, start, end string, pairs []Pair) {
	b.WriteString(start)
	b.WriteByte('\n')
	for _, p := range pairs {
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
		b.WriteByte('\n')
	}
	b.WriteString(end)
	b.WriteByte('\n')
}

// Decode scans text for the block between start and end.
func Decode(text, start, end string) (Block, error) {
	return DecodeReader(strings.NewReader(text), start, end)
}

// DecodeReader scans r line by line. Lines before the start marker are
// ignored and scanning stops at the first end marker after it. A missing end
// marker consumes the rest of the input. Blank lines inside the block are
// skipped and a non-blank line without "=" fails with a DecodeError.
func DecodeReader(r io.Reader, start, end string) (Block, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var block Block
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if !block.Found {
			if line == start {
				block.Found = true
			}
			continue
		}
		if line == end {
			return block, nil
		}
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Block{}, &faults.DecodeError{Unit: "block line", Input: line, Reason: "missing ="}
		}
		block.Pairs = append(block.Pairs, Pair{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return Block{}, err
	}
	return block, nil
}
