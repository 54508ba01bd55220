package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediaranker/internal/board"
	"mediaranker/internal/logging"
)

const (
	// BoardKey holds the durable board record.
	BoardKey = "mediaRankerData"
	// ThemeKey holds the light/dark preference.
	ThemeKey = "themePreference"
)

// LoadStatus reports what Load found.
type LoadStatus string

const (
	LoadAbsent  LoadStatus = "absent"
	LoadLoaded  LoadStatus = "loaded"
	LoadCorrupt LoadStatus = "corrupt"
	LoadStale   LoadStatus = "stale"
)

// Theme is the UI colour preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(raw string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light or dark)", raw)
	}
}

// Backend is the key/value surface BoardStore needs. KV implements it.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var _ Backend = (*KV)(nil)

// BoardStore persists board snapshots and the theme preference.
type BoardStore struct {
	backend Backend
	logger  *slog.Logger
}

// NewBoardStore wraps backend.
func NewBoardStore(backend Backend, logger *slog.Logger) *BoardStore {
	return &BoardStore{backend: backend, logger: logging.NewComponentLogger(logger, "storage")}
}

// Load reads the durable record. A corrupt record yields an empty snapshot
// and is left in place for manual recovery; a parsed record with nothing in
// Pending or any known tier is deleted as stale.
func (s *BoardStore) Load(ctx context.Context) (board.Snapshot, LoadStatus, error) {
	raw, ok, err := s.backend.Get(ctx, BoardKey)
	if err != nil {
		return board.Snapshot{}, LoadAbsent, err
	}
	if !ok || raw == "" {
		return board.Snapshot{}, LoadAbsent, nil
	}

	snap, err := DecodeState([]byte(raw))
	if err != nil {
		logging.WarnWithContext(s.logger, "stored board unreadable; starting empty", "storage_corrupt",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "export is unaffected; inspect or clear the "+BoardKey+" entry"),
			logging.String(logging.FieldImpact, "board starts empty, stored entry kept"))
		return board.Snapshot{}, LoadCorrupt, nil
	}

	if snap.Empty() {
		if err := s.backend.Delete(ctx, BoardKey); err != nil {
			return board.Snapshot{}, LoadStale, fmt.Errorf("purge stale board: %w", err)
		}
		s.logger.Debug("purged empty stored board", logging.String(logging.FieldEventType, "storage_stale"))
		return board.Snapshot{}, LoadStale, nil
	}
	return snap, LoadLoaded, nil
}

// Save writes snap synchronously.
func (s *BoardStore) Save(ctx context.Context, snap board.Snapshot) error {
	data, err := EncodeState(snap)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, BoardKey, string(data)); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// Clear removes the durable record.
func (s *BoardStore) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, BoardKey); err != nil {
		return fmt.Errorf("clear board: %w", err)
	}
	return nil
}

// Theme returns the stored preference, defaulting to dark.
func (s *BoardStore) Theme(ctx context.Context) (Theme, error) {
	raw, ok, err := s.backend.Get(ctx, ThemeKey)
	if err != nil {
		return ThemeDark, err
	}
	if !ok {
		return ThemeDark, nil
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		return ThemeDark, nil
	}
	return theme, nil
}

// SetTheme stores the preference.
func (s *BoardStore) SetTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return s.backend.Put(ctx, ThemeKey, string(theme))
}

// WriteFileAtomic writes data to path via a temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	if path == "" {
		return errors.New("path must not be empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
