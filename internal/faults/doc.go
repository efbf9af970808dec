// Package faults defines the typed failures returned by the protocol core.
//
// Three kinds exist: ParseError for a participant-range token that is not a
// number or a number pair, DecodeError for a persisted unit (record line,
// block line, protocol data line) that cannot be split into its expected
// shape, and ValidationError for configuration fields that fail typed
// conversion as a set. The core never logs or retries; it hands one of these
// back and lets the boundary decide.
//
// Every type implements ErrorKind so callers can classify wrapped errors with
// Kind without importing each concrete type.
package faults
