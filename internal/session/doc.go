// Package session glues the board, drag controller, persistence and notices
// together for one user.
//
// A mutex serialises every operation, so board mutations run to completion
// one at a time regardless of which surface (CLI, HTTP, terminal UI) issued
// them. Every command that changes the board is saved before the call returns.
package session
