package board

import (
	"context"
	"errors"
	"fmt"

	"mediaranker/internal/media"
)

// Command is one board mutation resolved from a user gesture.
type Command interface {
	Name() string
	apply(b *Board) (Result, error)
}

// Result describes what a command did.
type Result struct {
	Ref  Ref
	Item media.Item
	From CollectionID
	To   CollectionID
	// Changed is false for a stale reference or a same-position move.
	Changed bool
	// Stale is set when the target ref was no longer where the command expected.
	Stale bool
}

// Dispatcher applies commands. Board implements it directly; the session
// wraps it with persistence.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) (Result, error)
}

var _ Dispatcher = (*Board)(nil)

// AddItem appends a new item to Pending.
type AddItem struct {
	Item media.Item
}

// MoveItem relocates Ref from From to To at Index (AppendIndex for the end).
type MoveItem struct {
	Ref   Ref
	From  CollectionID
	To    CollectionID
	Index int
}

// RemoveItem deletes Ref from From.
type RemoveItem struct {
	Ref  Ref
	From CollectionID
}

func (AddItem) Name() string    { return "add" }
func (MoveItem) Name() string   { return "move" }
func (RemoveItem) Name() string { return "remove" }

// Dispatch applies cmd. The context is accepted for interface symmetry with
// persisting dispatchers; board mutations never block.
func (b *Board) Dispatch(_ context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, errors.New("nil command")
	}
	return cmd.apply(b)
}

func (c AddItem) apply(b *Board) (Result, error) {
	ref, err := b.AddToPending(c.Item)
	if err != nil {
		return Result{Item: c.Item, To: Pending}, err
	}
	return Result{Ref: ref, Item: c.Item, To: Pending, Changed: true}, nil
}

func (c MoveItem) apply(b *Board) (Result, error) {
	res := Result{Ref: c.Ref, From: c.From, To: c.To}
	item, where, ok := b.Locate(c.Ref)
	if ok {
		res.Item = item
	}
	if ok && where == c.From && c.From == c.To {
		pos := indexOf(b.order[c.From], c.Ref)
		target := c.Index
		if target < 0 || target >= len(b.order[c.From]) {
			target = len(b.order[c.From]) - 1
		}
		if pos == target {
			return res, nil
		}
	}
	if err := b.Move(c.Ref, c.From, c.To, c.Index); err != nil {
		res.Stale = errors.Is(err, ErrNotFound)
		return res, err
	}
	res.Changed = true
	return res, nil
}

func (c RemoveItem) apply(b *Board) (Result, error) {
	res := Result{Ref: c.Ref, From: c.From}
	if item, _, ok := b.Locate(c.Ref); ok {
		res.Item = item
	}
	if !b.Remove(c.Ref, c.From) {
		res.Stale = true
		return res, nil
	}
	res.Changed = true
	return res, nil
}

// Describe renders a command for logs.
func Describe(cmd Command) string {
	switch c := cmd.(type) {
	case AddItem:
		return fmt.Sprintf("add %q", c.Item.Title)
	case MoveItem:
		return fmt.Sprintf("move %s %s->%s@%d", c.Ref, c.From, c.To, c.Index)
	case RemoveItem:
		return fmt.Sprintf("remove %s from %s", c.Ref, c.From)
	default:
		return fmt.Sprintf("%T", cmd)
	}
}
