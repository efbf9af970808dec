// Package participants turns free-form participant range text into concrete
// participant numbers.
//
// Processing is split into independent stages so each can be tested alone:
//
//   - Sanitize cleans raw operator input down to digits, commas and hyphens.
//   - Clamp lowers every number above the configured participant ceiling to
//     the ceiling, comparing parsed integers token by token.
//   - Expand turns sanitized text such as "1-3,5" into the set {1,2,3,5}.
//
// Normalize composes the three for the capture boundary. Expand assumes its
// input is already sanitized and reports anything else as a
// faults.ParseError instead of skipping it.
package participants
