package board

import (
	"fmt"

	"mediaranker/internal/media"
)

// Ref is the board-assigned handle of a placed item. Refs are never reused
// within one Board and are not persisted.
type Ref uint64

func (r Ref) String() string { return fmt.Sprintf("#%d", uint64(r)) }

// AppendIndex places an item at the end of its destination.
const AppendIndex = -1

// Entry pairs a ref with its item.
type Entry struct {
	Ref  Ref
	Item media.Item
}

// Board is Pending plus six tiers.
type Board struct {
	next  Ref
	items map[Ref]media.Item
	where map[Ref]CollectionID
	order map[CollectionID][]Ref
}

// New returns an empty board.
func New() *Board {
	b := &Board{}
	b.reset()
	return b
}

func (b *Board) reset() {
	b.items = make(map[Ref]media.Item)
	b.where = make(map[Ref]CollectionID)
	b.order = make(map[CollectionID][]Ref, len(tierOrder)+1)
	for _, id := range Collections() {
		b.order[id] = nil
	}
}

// AddToPending appends item to the Pending tail.
func (b *Board) AddToPending(item media.Item) (Ref, error) {
	if !item.Placeable() {
		return 0, &media.NotPlaceableError{Title: item.Title}
	}
	return b.insert(Pending, item), nil
}

func (b *Board) insert(to CollectionID, item media.Item) Ref {
	b.next++
	ref := b.next
	b.items[ref] = item
	b.where[ref] = to
	b.order[to] = append(b.order[to], ref)
	return ref
}

// Move relocates ref from one collection to another at index. An index that
// is negative or past the end appends. Moving within one collection reorders.
func (b *Board) Move(ref Ref, from, to CollectionID, index int) error {
	if !from.Valid() {
		return fmt.Errorf("move from %q: %w", from, ErrUnknownCollection)
	}
	if !to.Valid() {
		return fmt.Errorf("move to %q: %w", to, ErrUnknownCollection)
	}
	current, ok := b.where[ref]
	if !ok || current != from {
		return fmt.Errorf("move %s from %s: %w", ref, from, ErrNotFound)
	}

	pos := indexOf(b.order[from], ref)
	b.order[from] = removeAt(b.order[from], pos)

	dest := b.order[to]
	if index < 0 || index > len(dest) {
		index = len(dest)
	}
	b.order[to] = insertAt(dest, index, ref)
	b.where[ref] = to
	return nil
}

// Remove deletes ref from the collection. It reports false when ref is not
// there, which is not an error.
func (b *Board) Remove(ref Ref, from CollectionID) bool {
	current, ok := b.where[ref]
	if !ok || current != from {
		return false
	}
	pos := indexOf(b.order[from], ref)
	b.order[from] = removeAt(b.order[from], pos)
	delete(b.where, ref)
	delete(b.items, ref)
	return true
}

// Entries returns the refs and items of one collection in order.
func (b *Board) Entries(id CollectionID) []Entry {
	refs := b.order[id]
	out := make([]Entry, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Entry{Ref: ref, Item: b.items[ref]})
	}
	return out
}

// Locate returns the item and collection of ref.
func (b *Board) Locate(ref Ref) (media.Item, CollectionID, bool) {
	where, ok := b.where[ref]
	if !ok {
		return media.Item{}, "", false
	}
	return b.items[ref], where, true
}

// Position returns the zero-based index of ref within its collection.
func (b *Board) Position(ref Ref) (CollectionID, int, bool) {
	where, ok := b.where[ref]
	if !ok {
		return "", 0, false
	}
	return where, indexOf(b.order[where], ref), true
}

// Counts returns the number of items per collection.
func (b *Board) Counts() map[CollectionID]int {
	counts := make(map[CollectionID]int, len(b.order))
	for id, refs := range b.order {
		counts[id] = len(refs)
	}
	return counts
}

// Len is the number of items on the board.
func (b *Board) Len() int {
	return len(b.items)
}

// Validate checks the partition invariant and the closed tier set.
func (b *Board) Validate() error {
	if len(b.order) != len(tierOrder)+1 {
		return fmt.Errorf("board has %d collections, want %d", len(b.order), len(tierOrder)+1)
	}
	seen := make(map[Ref]CollectionID, len(b.items))
	for id, refs := range b.order {
		if !id.Valid() {
			return fmt.Errorf("board holds unknown collection %q", id)
		}
		for _, ref := range refs {
			if prev, dup := seen[ref]; dup {
				return fmt.Errorf("ref %s in both %s and %s", ref, prev, id)
			}
			seen[ref] = id
			if b.where[ref] != id {
				return fmt.Errorf("ref %s indexed in %s but listed in %s", ref, b.where[ref], id)
			}
			if _, ok := b.items[ref]; !ok {
				return fmt.Errorf("ref %s listed in %s has no item", ref, id)
			}
		}
	}
	if len(seen) != len(b.items) || len(b.where) != len(b.items) {
		return fmt.Errorf("orphaned items: %d listed, %d indexed, %d stored", len(seen), len(b.where), len(b.items))
	}
	return nil
}

func indexOf(refs []Ref, ref Ref) int {
	for i, r := range refs {
		if r == ref {
			return i
		}
	}
	return -1
}

func removeAt(refs []Ref, i int) []Ref {
	if i < 0 || i >= len(refs) {
		return refs
	}
	out := make([]Ref, 0, len(refs)-1)
	out = append(out, refs[:i]...)
	return append(out, refs[i+1:]...)
}

func insertAt(refs []Ref, i int, ref Ref) []Ref {
	out := make([]Ref, 0, len(refs)+1)
	out = append(out, refs[:i]...)
	out = append(out, ref)
	return append(out, refs[i:]...)
}
