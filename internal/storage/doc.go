// Package storage persists the board.
//
// It owns two encodings that share the ItemRecord schema: the durable record
// kept under the mediaRankerData key, and the versioned interchange file
// produced by export and accepted by import. The durable store is a small
// key/value table in SQLite guarded by an exclusive file lock, so only one
// process writes the data directory at a time.
package storage
