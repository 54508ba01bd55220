// Package main hosts the mediaranker CLI entrypoint and command graph.
//
// The Cobra-based command tree opens the board store for the duration of a
// single command, applies the requested change through a session, and
// prints tables or JSON. Long-running surfaces (the HTTP API and the
// terminal board) are started by `serve` and `tui`; both hold the data
// directory lock until they exit, so one-shot commands fail fast while
// either is running.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// only surfaced here through commands and flags.
package main
