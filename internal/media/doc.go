// Package media converts raw catalog records into the canonical Item placed
// on the board.
//
// Normalization happens once at the catalog boundary. Downstream packages only
// ever see Item values and never re-inspect provider fields.
package media
