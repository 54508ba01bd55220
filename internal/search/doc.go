// Package search turns typed queries into catalog lookups and selected
// results into board additions.
//
// Input is debounced. Every dispatched lookup carries a sequence number, and a
// response whose sequence is no longer the latest is dropped on arrival, so a
// slow early response never replaces a later one. Catalog failures never
// escape: they become an empty result set and a notice.
package search
