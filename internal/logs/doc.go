// Package logs reads the autoprotocol log file for the CLI: the last lines
// on demand, and new lines as they are appended.
package logs
