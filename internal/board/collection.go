package board

import (
	"fmt"
	"strings"
)

// CollectionID names Pending or one of the six tiers.
type CollectionID string

// TierID identifies a tier. Tier IDs are valid CollectionIDs.
type TierID = CollectionID

// Pending is the staging tray for newly added items.
const Pending CollectionID = "pending"

const (
	Masterpiece TierID = "masterpiece"
	Great       TierID = "great"
	Good        TierID = "good"
	Decent      TierID = "decent"
	Mediocre    TierID = "mediocre"
	Bad         TierID = "bad"
)

var tierOrder = []TierID{Masterpiece, Great, Good, Decent, Mediocre, Bad}

var tierLetters = map[TierID]string{
	Masterpiece: "S",
	Great:       "A",
	Good:        "B",
	Decent:      "C",
	Mediocre:    "D",
	Bad:         "F",
}

// Tiers returns the tier IDs in rank order, best first.
func Tiers() []TierID {
	return append([]TierID(nil), tierOrder...)
}

// Collections returns Pending followed by the tiers.
func Collections() []CollectionID {
	return append([]CollectionID{Pending}, tierOrder...)
}

// IsTier reports whether id is one of the six tiers.
func (id CollectionID) IsTier() bool {
	_, ok := tierLetters[id]
	return ok
}

// Valid reports whether id is Pending or a tier.
func (id CollectionID) Valid() bool {
	return id == Pending || id.IsTier()
}

// Letter returns S..F for tiers and "" otherwise.
func (id CollectionID) Letter() string {
	return tierLetters[id]
}

// Label is the display name: "S Tier" for tiers, "your selection" for Pending.
func (id CollectionID) Label() string {
	if id == Pending {
		return "your selection"
	}
	if letter, ok := tierLetters[id]; ok {
		return letter + " Tier"
	}
	return string(id)
}

func (id CollectionID) String() string { return string(id) }

// ParseCollection accepts "pending", tier IDs and tier letters, case-insensitive.
func ParseCollection(raw string) (CollectionID, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch key {
	case "pending", "selection", "p":
		return Pending, nil
	}
	for _, tier := range tierOrder {
		if key == string(tier) || key == strings.ToLower(tierLetters[tier]) {
			return tier, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, raw)
}
