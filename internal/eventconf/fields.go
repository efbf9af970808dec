package eventconf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"autoprotocol/internal/blocktext"
	"autoprotocol/internal/faults"
)

// ErrNoBlock is returned when decoded text does not contain the record's
// start marker.
var ErrNoBlock = errors.New("configuration block not found")

var (
	errEmptyValue = errors.New("value must not be empty")
	errNotCount   = errors.New("must be a non-negative integer")
	errUnknownKey = errors.New("unknown key")
	errLineBreak  = errors.New("must not contain line breaks")
)

type field[T any] struct {
	key string
	get func(*T) string
	set func(*T, string) error
}

func intField[T any](key string, ptr func(*T) *int) field[T] {
	return field[T]{
		key: key,
		get: func(v *T) string { return strconv.Itoa(*ptr(v)) },
		set: func(v *T, raw string) error {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("%w: %w", errNotCount, err)
			}
			if n < 0 {
				return errNotCount
			}
			*ptr(v) = n
			return nil
		},
	}
}

func stringField[T any](key string, ptr func(*T) *string) field[T] {
	return field[T]{
		key: key,
		get: func(v *T) string { return *ptr(v) },
		set: func(v *T, raw string) error {
			// Encoded records are line oriented.
			if strings.ContainsAny(raw, "\r\n") {
				return errLineBreak
			}
			*ptr(v) = raw
			return nil
		},
	}
}

type schema[T any] struct {
	record string
	start  string
	end    string
	fields []field[T]
}

func (s schema[T]) pairs(v T) []blocktext.Pair {
	pairs := make([]blocktext.Pair, 0, len(s.fields))
	for _, f := range s.fields {
		pairs = append(pairs, blocktext.Pair{Key: f.key, Value: f.get(&v)})
	}
	return pairs
}

func (s schema[T]) encode(v T) string {
	return blocktext.Encode(s.start, s.end, s.pairs(v))
}

func (s schema[T]) lookup(key string) (field[T], bool) {
	for _, f := range s.fields {
		if f.key == key {
			return f, true
		}
	}
	return field[T]{}, false
}

// decode applies the block found in text over base. On any conversion failure
// base is returned unchanged together with a ValidationError naming every
// failed field.
func (s schema[T]) decode(text string, base T) (T, error) {
	block, err := blocktext.Decode(text, s.start, s.end)
	if err != nil {
		return base, err
	}
	if !block.Found {
		return base, ErrNoBlock
	}
	updated := base
	var failed []faults.FieldError
	for _, pair := range block.Pairs {
		f, ok := s.lookup(pair.Key)
		if !ok {
			continue
		}
		if err := f.set(&updated, pair.Value); err != nil {
			failed = append(failed, faults.FieldError{Key: pair.Key, Value: pair.Value, Err: err})
		}
	}
	if len(failed) > 0 {
		return base, &faults.ValidationError{Record: s.record, Fields: failed}
	}
	return updated, nil
}

// set applies one field by key. Empty values are rejected.
func (s schema[T]) set(v *T, key, value string) error {
	f, ok := s.lookup(strings.ToUpper(strings.TrimSpace(key)))
	if !ok {
		return &faults.ValidationError{Record: s.record, Fields: []faults.FieldError{{Key: key, Value: value, Err: errUnknownKey}}}
	}
	if strings.TrimSpace(value) == "" {
		return &faults.ValidationError{Record: s.record, Fields: []faults.FieldError{{Key: f.key, Value: value, Err: errEmptyValue}}}
	}
	updated := *v
	if err := f.set(&updated, value); err != nil {
		return &faults.ValidationError{Record: s.record, Fields: []faults.FieldError{{Key: f.key, Value: value, Err: err}}}
	}
	*v = updated
	return nil
}

func (s schema[T]) keys() []string {
	keys := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		keys = append(keys, f.key)
	}
	return keys
}
