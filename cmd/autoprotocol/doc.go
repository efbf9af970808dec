// Package main hosts the autoprotocol CLI entrypoint and command graph.
//
// The Cobra command tree manages event and point configurations, runs the
// interactive capture session, and builds, lists and prints protocols. It
// centralizes configuration resolution, blob store access and logging setup
// so subcommands only deal with presentation.
//
// Keep this package thin: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main
