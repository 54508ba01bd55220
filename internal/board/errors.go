package board

import (
	"errors"

	"mediaranker/internal/media"
)

var (
	// ErrNotFound reports a stale reference: the item is not in the
	// collection the caller expected.
	ErrNotFound = errors.New("item not found in collection")
	// ErrUnknownCollection reports a collection outside Pending and the six tiers.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrNotPlaceable rejects items without a poster.
	ErrNotPlaceable = media.ErrNotPlaceable
)
