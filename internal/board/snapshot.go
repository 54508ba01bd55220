package board

import (
	"sort"
	"strings"

	"mediaranker/internal/media"
)

// Snapshot is a detached, ordered dump of the board. Tiers is keyed by tier
// ID; keys outside the fixed set are ignored by ReplaceAll.
type Snapshot struct {
	Pending []media.Item
	Tiers   map[string][]media.Item
}

// ReplaceReport summarises what ReplaceAll accepted.
type ReplaceReport struct {
	Loaded         int
	DroppedTiers   []string
	DroppedNoImage int
}

// Empty reports whether the snapshot carries no items in Pending or a known tier.
func (s Snapshot) Empty() bool {
	if len(s.Pending) > 0 {
		return false
	}
	for _, tier := range tierOrder {
		if len(s.Tiers[string(tier)]) > 0 {
			return false
		}
	}
	return true
}

// Snapshot copies the board's contents. All six tiers are always present.
func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{
		Pending: b.collectionItems(Pending),
		Tiers:   make(map[string][]media.Item, len(tierOrder)),
	}
	for _, tier := range tierOrder {
		snap.Tiers[string(tier)] = b.collectionItems(tier)
	}
	return snap
}

func (b *Board) collectionItems(id CollectionID) []media.Item {
	refs := b.order[id]
	out := make([]media.Item, 0, len(refs))
	for _, ref := range refs {
		out = append(out, b.items[ref])
	}
	return out
}

// ReplaceAll discards the current contents and installs snap. Unknown tier
// names and items without a poster are dropped; stored items get the title
// placeholder and the movie kind when those are blank.
func (b *Board) ReplaceAll(snap Snapshot) ReplaceReport {
	b.reset()
	var report ReplaceReport

	accept := func(to CollectionID, items []media.Item) {
		for _, item := range items {
			item = repairStored(item)
			if !item.Placeable() {
				report.DroppedNoImage++
				continue
			}
			b.insert(to, item)
			report.Loaded++
		}
	}

	for _, tier := range tierOrder {
		accept(tier, snap.Tiers[string(tier)])
	}
	for name := range snap.Tiers {
		if !CollectionID(name).IsTier() {
			report.DroppedTiers = append(report.DroppedTiers, name)
		}
	}
	sort.Strings(report.DroppedTiers)
	accept(Pending, snap.Pending)
	return report
}

func repairStored(item media.Item) media.Item {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		item.Title = media.UnknownTitle
	}
	if item.Kind == "" {
		item.Kind = media.KindMovie
	}
	item.Poster = strings.TrimSpace(item.Poster)
	return item
}
