// Package board holds the authoritative ranking state: a pending tray plus six
// fixed tiers, each an ordered list of item references.
//
// Items live in an arena keyed by Ref. A separate index records which
// collection holds each ref, so every placed item belongs to exactly one
// collection. Moves relocate refs and never copy items.
//
// Board is not safe for concurrent use. Callers serialise access (see the
// session package).
package board
