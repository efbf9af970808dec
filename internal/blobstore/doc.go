// Package blobstore provides the key-addressed storage every persisted
// artifact lives in: protocols, saved event configurations, the active
// configurations and pending capture records.
//
// Blobs are addressed by a scope (a slash separated directory-like path such
// as "tmp/timepoints") and a flat name. Two backends exist. The file system
// backend maps scopes to directories under a root and guards mutations with an
// advisory file lock per scope so a listing never observes a half written
// record. The SQLite backend keeps every blob in one table.
//
// Enumeration order is unspecified; callers that need an order sort.
package blobstore
