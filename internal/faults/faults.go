package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds reported by ErrorKind.
const (
	KindParse      = "parse"
	KindDecode     = "decode"
	KindValidation = "validation"
)

// Classifier lets an error declare which failure kind it belongs to.
type Classifier interface {
	ErrorKind() string
}

// Kind returns the classification of err, or "" when nothing in the chain
// implements Classifier.
func Kind(err error) string {
	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return ""
}

// ParseError reports a participant-range token that could not be expanded.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse participant token %q: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("parse participant token %q", e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) ErrorKind() string { return KindParse }

// DecodeError reports a unit of persisted text that does not have the
// expected shape.
type DecodeError struct {
	// Unit names what was being decoded, e.g. "time record" or "block line".
	Unit string
	// Input is the offending text.
	Input  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode ")
	if e.Unit != "" {
		b.WriteString(e.Unit)
	} else {
		b.WriteString("input")
	}
	fmt.Fprintf(&b, " %q", e.Input)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) ErrorKind() string { return KindDecode }

// FieldError describes one configuration field that failed conversion.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s=%q: %v", f.Key, f.Value, f.Err)
}

// ValidationError collects every field that failed conversion during a
// configuration decode. No field is applied when one is returned.
type ValidationError struct {
	Record string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	name := e.Record
	if name == "" {
		name = "configuration"
	}
	return fmt.Sprintf("invalid %s: %s", name, strings.Join(parts, "; "))
}

func (e *ValidationError) ErrorKind() string { return KindValidation }

// Keys returns the keys of the failed fields in the order they were found.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}
