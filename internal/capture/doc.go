// Package capture drives a time capture session at one checkpoint.
//
// The operator marks crossings, attaches participant ranges and hides ready
// records. Hiding persists a record to the pending scope of the blob store
// right away, so a crash loses at most the visible, unfinished records. When
// the session stops, every pending record is read back and merged with the
// visible ones into a single time ordered review list that the protocol
// publisher consumes.
package capture
