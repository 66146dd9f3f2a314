// Package cache keeps generated study content for the lifetime of a session.
//
// Entries are stored as zstd-compressed byte slices keyed by a digest of the
// input that produced them. Nothing is written to disk; the cache is dropped
// when the process exits.
package cache
