// Package preflight provides readiness checks for the directories and the
// blob store autoprotocol depends on.
//
// The CLI "autoprotocol check" command runs RunAll and prints one line per
// result. Checks never modify user data; the store probe writes and removes
// a single scratch blob.
package preflight
