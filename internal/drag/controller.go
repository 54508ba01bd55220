package drag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mediaranker/internal/board"
	"mediaranker/internal/logging"
	"mediaranker/internal/media"
	"mediaranker/internal/notices"
)

// State is the gesture state.
type State string

const (
	Idle      State = "idle"
	Dragging  State = "dragging"
	Dropped   State = "dropped"
	Cancelled State = "cancelled"
)

var (
	// ErrEditMode rejects drag initiation while edit mode is on.
	ErrEditMode = errors.New("drag disabled in edit mode")
	// ErrBusy rejects a second gesture while one is active.
	ErrBusy = errors.New("drag already in progress")
	// ErrNotDragging is returned by drop operations with no active gesture.
	ErrNotDragging = errors.New("no drag in progress")
	// ErrNotFound reports a ref that is not on the board.
	ErrNotFound = board.ErrNotFound
)

// EditModeMessage is shown when edit mode turns on.
const EditModeMessage = "Edit mode activated - Click cards to remove them"

// Locator finds where an item currently sits. board.Board implements it.
type Locator interface {
	Locate(ref board.Ref) (media.Item, board.CollectionID, bool)
}

// Outcome is the terminal result of a gesture.
type Outcome struct {
	State  State
	Ref    board.Ref
	Item   media.Item
	From   board.CollectionID
	To     board.CollectionID
	Reason string
	Result board.Result
}

// Controller owns the drag state, the registered surfaces and edit mode.
type Controller struct {
	locator    Locator
	dispatcher board.Dispatcher
	sink       notices.Sink
	logger     *slog.Logger

	state     State
	ref       board.Ref
	item      media.Item
	from      board.CollectionID
	highlight board.CollectionID
	surfaces  []Surface
	editMode  bool
}

// NewController builds a controller that resolves drops through dispatcher.
func NewController(locator Locator, dispatcher board.Dispatcher, sink notices.Sink, logger *slog.Logger) *Controller {
	if sink == nil {
		sink = notices.Nop{}
	}
	return &Controller{
		locator:    locator,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logging.NewComponentLogger(logger, "drag"),
		state:      Idle,
	}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Dragged returns the ref being dragged.
func (c *Controller) Dragged() (board.Ref, bool) {
	return c.ref, c.state == Dragging
}

// Highlighted returns the surface under the pointer, if any.
func (c *Controller) Highlighted() (board.CollectionID, bool) {
	return c.highlight, c.highlight != ""
}

// EditMode reports whether clicks remove cards.
func (c *Controller) EditMode() bool { return c.editMode }

// SetSurfaces replaces the registered drop zones.
func (c *Controller) SetSurfaces(surfaces []Surface) {
	c.surfaces = append(c.surfaces[:0], surfaces...)
}

// Begin starts dragging ref.
func (c *Controller) Begin(ref board.Ref) error {
	if c.editMode {
		return ErrEditMode
	}
	if c.state == Dragging {
		return ErrBusy
	}
	item, where, ok := c.locator.Locate(ref)
	if !ok {
		return fmt.Errorf("begin drag %s: %w", ref, ErrNotFound)
	}
	c.state = Dragging
	c.ref = ref
	c.item = item
	c.from = where
	c.highlight = ""
	c.logger.Debug("drag started",
		logging.ItemRef(uint64(ref)),
		logging.Collection(string(where)))
	return nil
}

// Hover moves the pointer. The surface whose bounds contain p is highlighted;
// outside every surface the highlight clears.
func (c *Controller) Hover(p Point) (board.CollectionID, bool) {
	if c.state != Dragging || c.editMode {
		c.highlight = ""
		return "", false
	}
	c.highlight = c.surfaceAt(p)
	return c.Highlighted()
}

// HoverOn highlights a collection directly, for keyboard-driven surfaces.
func (c *Controller) HoverOn(id board.CollectionID) (board.CollectionID, bool) {
	if c.state != Dragging || c.editMode || !id.Valid() {
		c.highlight = ""
		return "", false
	}
	c.highlight = id
	return c.Highlighted()
}

func (c *Controller) surfaceAt(p Point) board.CollectionID {
	for _, s := range c.surfaces {
		if s.Collection.Valid() && s.Rect.Contains(p) {
			return s.Collection
		}
	}
	return ""
}

// Drop releases the pointer at p.
func (c *Controller) Drop(ctx context.Context, p Point) (Outcome, error) {
	if c.state != Dragging {
		return Outcome{State: Idle}, ErrNotDragging
	}
	target := c.surfaceAt(p)
	if target == "" {
		return c.cancel("released outside any surface"), nil
	}
	return c.DropOn(ctx, target)
}

// DropOn releases onto a collection. The item is appended to the target.
func (c *Controller) DropOn(ctx context.Context, to board.CollectionID) (Outcome, error) {
	if c.state != Dragging {
		return Outcome{State: Idle}, ErrNotDragging
	}
	if c.editMode {
		return c.cancel("edit mode active"), nil
	}
	if !to.Valid() {
		return c.cancel(fmt.Sprintf("invalid target %q", to)), nil
	}

	// The item may have moved since Begin; use where it is now.
	_, from, ok := c.locator.Locate(c.ref)
	if !ok {
		return c.cancel("item no longer on the board"), nil
	}

	cmd := board.MoveItem{Ref: c.ref, From: from, To: to, Index: board.AppendIndex}
	res, err := c.dispatcher.Dispatch(ctx, cmd)
	if err != nil {
		if errors.Is(err, board.ErrNotFound) {
			return c.cancel("stale reference"), nil
		}
		out := c.cancel(err.Error())
		return out, err
	}

	out := Outcome{State: Dropped, Ref: c.ref, Item: c.item, From: from, To: to, Result: res}
	c.reset()
	notices.Success(c.sink, fmt.Sprintf("Moved %q to %s", out.Item.Title, to.Label()))
	return out, nil
}

// Cancel abandons the active gesture.
func (c *Controller) Cancel() Outcome {
	if c.state != Dragging {
		return Outcome{State: Idle}
	}
	return c.cancel("cancelled")
}

func (c *Controller) cancel(reason string) Outcome {
	out := Outcome{State: Cancelled, Ref: c.ref, Item: c.item, From: c.from, Reason: reason}
	c.logger.Debug("drag cancelled",
		logging.ItemRef(uint64(c.ref)),
		logging.String("reason", reason))
	c.reset()
	return out
}

func (c *Controller) reset() {
	c.state = Idle
	c.ref = 0
	c.item = media.Item{}
	c.from = ""
	c.highlight = ""
}

// SetEditMode switches edit mode. Turning it on cancels an active drag and
// returns that gesture's outcome.
func (c *Controller) SetEditMode(on bool) (Outcome, bool) {
	if c.editMode == on {
		return Outcome{}, false
	}
	c.editMode = on
	var (
		out       Outcome
		cancelled bool
	)
	if on {
		if c.state == Dragging {
			out, cancelled = c.cancel("edit mode activated"), true
		}
		notices.Info(c.sink, EditModeMessage)
	}
	c.logger.Debug("edit mode changed", logging.Bool("edit_mode", on))
	return out, cancelled
}

// ToggleEditMode flips edit mode and returns the new value.
func (c *Controller) ToggleEditMode() bool {
	c.SetEditMode(!c.editMode)
	return c.editMode
}

// Click handles a click on a card. In edit mode it removes the card; outside
// edit mode it does nothing.
func (c *Controller) Click(ctx context.Context, ref board.Ref) (board.Result, error) {
	if !c.editMode {
		return board.Result{Ref: ref}, nil
	}
	_, from, ok := c.locator.Locate(ref)
	if !ok {
		c.logger.Debug("click on missing card",
			logging.String(logging.FieldEventType, "stale_reference"),
			logging.ItemRef(uint64(ref)))
		return board.Result{Ref: ref, Stale: true}, nil
	}
	res, err := c.dispatcher.Dispatch(ctx, board.RemoveItem{Ref: ref, From: from})
	if err != nil {
		return res, err
	}
	if res.Changed {
		notices.Info(c.sink, fmt.Sprintf("Removed %q", res.Item.Title))
	}
	return res, nil
}
