// Package timepoint models a single captured checkpoint time and its
// one-line persisted form.
//
// A Record starts as an empty placeholder, gains a timestamp when the
// operator marks a crossing and becomes ready once participant range text is
// attached. Ready records are written as "range%timestamp" lines, one per
// blob, and read back in bulk when the protocol is finalized.
package timepoint
