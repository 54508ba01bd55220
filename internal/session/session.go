package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediaranker/internal/board"
	"mediaranker/internal/drag"
	"mediaranker/internal/logging"
	"mediaranker/internal/media"
	"mediaranker/internal/notices"
	"mediaranker/internal/storage"
)

// Notice texts.
const (
	MsgImported       = "Ranking imported successfully!"
	MsgImporting      = "Importing data..."
	MsgExported       = "Ranking exported successfully!"
	MsgCleared        = "All data cleared"
	MsgInvalidFile    = "Invalid file format"
	MsgImportFailed   = "Error importing data. Invalid format."
	MsgCorruptStorage = "Saved ranking could not be read; starting with an empty board"
	MsgNotSaved       = "Changes could not be saved; they stay on screen and will be saved with the next change"
)

// Store is the persistence the session writes through to.
type Store interface {
	Load(ctx context.Context) (board.Snapshot, storage.LoadStatus, error)
	Save(ctx context.Context, snap board.Snapshot) error
	Clear(ctx context.Context) error
	Theme(ctx context.Context) (storage.Theme, error)
	SetTheme(ctx context.Context, theme storage.Theme) error
}

var _ Store = (*storage.BoardStore)(nil)

// Observer is told about every change with a fresh view. It runs outside the
// session lock and may call back into the session.
type Observer func(reason string, view View)

// Session owns the board for one user.
type Session struct {
	mu        sync.Mutex
	board     *board.Board
	drag      *drag.Controller
	store     Store
	sink      notices.Sink
	logger    *slog.Logger
	observers []Observer
	status    storage.LoadStatus
	saveErr   error
}

// Open loads stored state into a fresh board. Unreadable stored state is
// reported through notices and the board starts empty.
func Open(ctx context.Context, store Store, sink notices.Sink, logger *slog.Logger) (*Session, error) {
	if sink == nil {
		sink = notices.Nop{}
	}
	s := &Session{
		board:  board.New(),
		store:  store,
		sink:   sink,
		logger: logging.NewComponentLogger(logger, "session"),
	}
	s.drag = drag.NewController(s.board, lockedDispatcher{s}, sink, logger)

	snap, status, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	s.status = status
	switch status {
	case storage.LoadLoaded:
		report := s.board.ReplaceAll(snap)
		s.logReplace("board loaded", report)
	case storage.LoadCorrupt:
		notices.Warn(sink, MsgCorruptStorage)
	}
	return s, nil
}

// LoadStatus reports what Open found in storage.
func (s *Session) LoadStatus() storage.LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Observe registers fn for change notifications.
func (s *Session) Observe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Session) publish(reason string, view View) {
	s.mu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(reason, view)
	}
}

// Dispatch applies one board command and saves the result.
func (s *Session) Dispatch(ctx context.Context, cmd board.Command) (board.Result, error) {
	s.mu.Lock()
	res, err := s.applyLocked(ctx, cmd)
	view := s.viewLocked()
	s.mu.Unlock()

	if res.Changed {
		s.publish(cmd.Name(), view)
	}
	return res, err
}

var _ board.Dispatcher = (*Session)(nil)

// lockedDispatcher lets the drag controller apply commands while the
// session lock is already held.
type lockedDispatcher struct{ s *Session }

func (d lockedDispatcher) Dispatch(ctx context.Context, cmd board.Command) (board.Result, error) {
	return d.s.applyLocked(ctx, cmd)
}

func (s *Session) applyLocked(ctx context.Context, cmd board.Command) (board.Result, error) {
	if cmd == nil {
		return board.Result{}, errors.New("nil command")
	}
	correlationID, ok := logging.CorrelationIDFromContext(ctx)
	if !ok {
		correlationID = uuid.NewString()
		ctx = logging.WithCorrelationID(ctx, correlationID)
	}
	logger := logging.WithContext(ctx, s.logger).With(logging.Command(cmd.Name()))

	res, err := s.board.Dispatch(ctx, cmd)
	if res.Stale {
		logger.Debug("stale reference ignored",
			logging.String(logging.FieldEventType, "stale_reference"),
			logging.ItemRef(uint64(res.Ref)),
			logging.String("detail", board.Describe(cmd)))
	}
	if err != nil {
		return res, err
	}
	if !res.Changed {
		return res, nil
	}

	s.saveLocked(ctx, logger)
	logger.Info("board updated",
		logging.ItemRef(uint64(res.Ref)),
		logging.Collection(string(res.To)),
		logging.String("detail", board.Describe(cmd)))
	return res, nil
}

// saveLocked writes the board through to the store. A failed save keeps the
// change in memory, warns the user and is remembered until a later save
// succeeds.
func (s *Session) saveLocked(ctx context.Context, logger *slog.Logger) {
	err := s.store.Save(ctx, s.board.Snapshot())
	if err == nil {
		s.saveErr = nil
		return
	}
	logging.ErrorWithContext(logger, "write-through save failed", "storage_save_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"),
		logging.String(logging.FieldImpact, "board kept in memory only"))
	if s.saveErr == nil {
		notices.Warn(s.sink, MsgNotSaved)
	}
	s.saveErr = fmt.Errorf("save board: %w", err)
}

// SaveError returns the last write-through failure, or nil once the board
// has been saved again.
func (s *Session) SaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// View returns a render-ready copy of the board.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Snapshot returns a detached copy of the board contents.
func (s *Session) Snapshot() board.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Snapshot()
}

// Locate returns where ref sits.
func (s *Session) Locate(ref board.Ref) (media.Item, board.CollectionID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Locate(ref)
}

// Add appends item to Pending.
func (s *Session) Add(ctx context.Context, item media.Item) (board.Result, error) {
	return s.Dispatch(ctx, board.AddItem{Item: item})
}

// Move relocates ref to the given collection and index, reading the source
// collection from the board.
func (s *Session) Move(ctx context.Context, ref board.Ref, to board.CollectionID, index int) (board.Result, error) {
	_, from, ok := s.Locate(ref)
	if !ok {
		return board.Result{Ref: ref, Stale: true}, fmt.Errorf("move %s: %w", ref, board.ErrNotFound)
	}
	return s.Dispatch(ctx, board.MoveItem{Ref: ref, From: from, To: to, Index: index})
}

// Remove deletes ref wherever it is. Removing a missing ref is a no-op.
func (s *Session) Remove(ctx context.Context, ref board.Ref) (board.Result, error) {
	_, from, ok := s.Locate(ref)
	if !ok {
		return board.Result{Ref: ref, Stale: true}, nil
	}
	return s.Dispatch(ctx, board.RemoveItem{Ref: ref, From: from})
}

// Resolve turns a selector into a ref. Selectors are "collection:position"
// with a 1-based position (pending:1, S:2) or "collection:#id" matching the
// catalog id. A bare "#n" or "n" is taken as a board ref.
func (s *Session) Resolve(selector string) (board.Ref, error) {
	selector = strings.TrimSpace(selector)
	name, pos, found := strings.Cut(selector, ":")
	if !found {
		ref, err := ParseRef(selector)
		if err != nil {
			return 0, fmt.Errorf("selector %q: want collection:position, collection:#id or a ref", selector)
		}
		if _, _, ok := s.Locate(ref); !ok {
			return 0, fmt.Errorf("selector %q: %w", selector, board.ErrNotFound)
		}
		return ref, nil
	}

	id, err := board.ParseCollection(name)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	entries := s.board.Entries(id)
	s.mu.Unlock()

	pos = strings.TrimSpace(pos)
	if catalogID, ok := strings.CutPrefix(pos, "#"); ok {
		for _, e := range entries {
			if e.Item.ID == catalogID {
				return e.Ref, nil
			}
		}
		return 0, fmt.Errorf("selector %q: no item with id %s in %s: %w", selector, catalogID, id, board.ErrNotFound)
	}
	n, err := strconv.Atoi(pos)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("selector %q: position must be a positive number", selector)
	}
	if n > len(entries) {
		return 0, fmt.Errorf("selector %q: %s has %d items: %w", selector, id, len(entries), board.ErrNotFound)
	}
	return entries[n-1].Ref, nil
}

// ParseRef accepts "12" or "#12".
func ParseRef(raw string) (board.Ref, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid ref %q", raw)
	}
	return board.Ref(n), nil
}

// Export encodes the board as an interchange file.
func (s *Session) Export(now time.Time) ([]byte, error) {
	s.mu.Lock()
	snap := s.board.Snapshot()
	s.mu.Unlock()

	data, err := storage.EncodeExport(snap, now)
	if err != nil {
		return nil, err
	}
	notices.Success(s.sink, MsgExported)
	return data, nil
}

// Import replaces the board with the contents of an interchange file. Invalid
// files leave the board untouched. Callers confirm with the user first. The
// stored record is overwritten in one write, so a failed save leaves the
// previous record in place rather than an empty store.
func (s *Session) Import(ctx context.Context, data []byte) (board.ReplaceReport, error) {
	snap, err := storage.DecodeImport(data)
	if err != nil {
		if errors.Is(err, storage.ErrMissingTiers) {
			notices.Error(s.sink, MsgInvalidFile)
		} else {
			notices.Error(s.sink, MsgImportFailed)
		}
		s.logger.Warn("import rejected",
			logging.String(logging.FieldEventType, "import_invalid"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the file must be a mediaranker export with a tiers object"),
			logging.String(logging.FieldImpact, "board left unchanged"))
		return board.ReplaceReport{}, err
	}
	notices.Info(s.sink, MsgImporting)

	s.mu.Lock()
	s.drag.Cancel()
	report := s.board.ReplaceAll(snap)
	s.saveLocked(ctx, s.logger)
	saved := s.saveErr == nil
	view := s.viewLocked()
	s.mu.Unlock()

	s.logReplace("board imported", report)
	s.publish("import", view)
	if saved {
		notices.Success(s.sink, MsgImported)
	}
	return report, nil
}

// Clear empties the board and deletes the stored record.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.drag.Cancel()
	s.board.ReplaceAll(board.Snapshot{})
	err := s.store.Clear(ctx)
	if err == nil {
		s.saveErr = nil
	}
	view := s.viewLocked()
	s.mu.Unlock()

	s.publish("clear", view)
	if err != nil {
		return err
	}
	s.logger.Info("board cleared")
	notices.Info(s.sink, MsgCleared)
	return nil
}

func (s *Session) logReplace(msg string, report board.ReplaceReport) {
	attrs := []logging.Attr{logging.Int("items", report.Loaded)}
	if report.DroppedNoImage > 0 {
		attrs = append(attrs, logging.Int("dropped_no_image", report.DroppedNoImage))
	}
	if len(report.DroppedTiers) > 0 {
		attrs = append(attrs, logging.String("dropped_tiers", strings.Join(report.DroppedTiers, ",")))
	}
	s.logger.Info(msg, logging.Args(attrs...)...)
}

// Theme returns the stored theme preference.
func (s *Session) Theme(ctx context.Context) (storage.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Theme(ctx)
}

// SetTheme stores the theme preference.
func (s *Session) SetTheme(ctx context.Context, theme storage.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetTheme(ctx, theme)
}
