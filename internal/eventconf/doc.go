// Package eventconf holds the event and point configuration records, their
// block text form and the stores that keep them.
//
// Each record type declares an ordered field table. Encoding walks the table;
// decoding applies recognized keys from a block over defaults and either
// applies every one of them or none. Unknown keys are ignored so files from
// newer versions still load.
//
// The active event and point configurations are not globals. Callers inject a
// Store for each, usually one backed by the blob store's objects scope.
package eventconf
