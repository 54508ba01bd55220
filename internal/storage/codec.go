package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mediaranker/internal/board"
)

// ExportVersion is written to every interchange file.
const ExportVersion = "1.0"

var (
	// ErrInvalidFormat rejects import bytes that do not parse or lack tiers.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrMissingTiers is the InvalidFormat case of a file that parses but has
	// no tiers object.
	ErrMissingTiers = fmt.Errorf("%w: tiers missing", ErrInvalidFormat)
	// ErrCorrupt marks a stored record that cannot be decoded.
	ErrCorrupt = errors.New("stored board is corrupt")
)

// envelope detects whether tiers is present.
type envelope struct {
	Tiers json.RawMessage `json:"tiers"`
}

// hasTiers reports whether tiers is present with a value other than null,
// false, zero or the empty string. Any other shape counts, including an array.
func hasTiers(data []byte) (bool, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return false, err
	}
	raw := bytes.TrimSpace(e.Tiers)
	switch string(raw) {
	case "", "null", "false", `""`:
		return false, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n == 0 {
		return false, nil
	}
	return true, nil
}

// EncodeState renders the durable record for snap.
func EncodeState(snap board.Snapshot) ([]byte, error) {
	data, err := json.Marshal(StateFromSnapshot(snap))
	if err != nil {
		return nil, fmt.Errorf("encode board state: %w", err)
	}
	return data, nil
}

// DecodeState parses a durable record. Malformed JSON or a missing tiers key
// yields ErrCorrupt.
func DecodeState(data []byte) (board.Snapshot, error) {
	ok, err := hasTiers(data)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !ok {
		return board.Snapshot{}, fmt.Errorf("%w: tiers missing", ErrCorrupt)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return state.Snapshot(), nil
}

// EncodeExport renders the interchange file, pretty-printed with two-space
// indentation.
func EncodeExport(snap board.Snapshot, now time.Time) ([]byte, error) {
	state := StateFromSnapshot(snap)
	doc := Export{
		Tiers:        state.Tiers,
		PendingItems: state.PendingItems,
		Version:      ExportVersion,
		ExportedAt:   now.UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// DecodeImport parses an interchange file. Anything with a tiers key is
// accepted. A tiers value that is not an object imports as empty, and record
// fields of the wrong type read as blank. pendingItems is optional and unknown
// keys are ignored.
func DecodeImport(data []byte) (board.Snapshot, error) {
	ok, err := hasTiers(data)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if !ok {
		return board.Snapshot{}, ErrMissingTiers
	}
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return State{Tiers: doc.Tiers, PendingItems: doc.PendingItems}.Snapshot(), nil
}
