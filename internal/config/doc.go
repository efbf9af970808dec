// Package config loads, normalizes, and validates autoprotocol settings.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the AUTOPROTOCOL_DATA_DIR environment override. The
// Config type gathers the storage backend, capture behaviour and logging
// knobs the CLI needs in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical enum values, and clear validation errors.
package config
