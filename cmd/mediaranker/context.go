package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediaranker/internal/api"
	"mediaranker/internal/catalog"
	"mediaranker/internal/catalog/tmdb"
	"mediaranker/internal/config"
	"mediaranker/internal/logging"
	"mediaranker/internal/notices"
	"mediaranker/internal/search"
	"mediaranker/internal/session"
	"mediaranker/internal/storage"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath, c.configExists = resolved, exists
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// openBoard is a session plus the store handle it holds the lock on.
type openBoard struct {
	*session.Session
	kv     *storage.KV
	logger *slog.Logger
}

func (b *openBoard) Close() error {
	return b.kv.Close()
}

// newLogger builds the command logger. Console mirroring stays off for
// one-shot commands so stdout carries only command output.
func (c *commandContext) newLogger(console bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, console)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// openSession opens the store and loads the board.
func (c *commandContext) openSession(ctx context.Context, sink notices.Sink, logger *slog.Logger) (*openBoard, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, storage.ErrLocked) {
			return nil, fmt.Errorf("%w; stop the running `mediaranker serve` or `mediaranker tui` first", err)
		}
		return nil, err
	}
	sess, err := session.Open(ctx, storage.NewBoardStore(kv, logger), sink, logger)
	if err != nil {
		kv.Close()
		return nil, err
	}
	return &openBoard{Session: sess, kv: kv, logger: logger}, nil
}

// withSession runs fn against an open session and closes the store afterwards.
// Notices are printed to the command's stderr.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*openBoard) error) error {
	logger, err := c.newLogger(false)
	if err != nil {
		return err
	}
	b, err := c.openSession(cmd.Context(), noticePrinter(cmd.ErrOrStderr()), logger)
	if err != nil {
		return err
	}
	defer b.Close()
	if err := fn(b); err != nil {
		return err
	}
	// The process exits next, so a change that was not saved is lost.
	return b.SaveError()
}

// catalogClient returns a TMDB client, or the configuration error explaining
// how to set a key.
func catalogClient(cfg *config.Config) (catalog.Catalog, error) {
	if err := cfg.RequireTMDB(); err != nil {
		return nil, err
	}
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(cfg.TMDBTimeout()),
		tmdb.WithIncludeAdult(cfg.TMDB.IncludeAdult))
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}
	return client, nil
}

// optionalCatalog is catalogClient for surfaces that work without search.
func optionalCatalog(cfg *config.Config, logger *slog.Logger) catalog.Catalog {
	cat, err := catalogClient(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "search disabled", "catalog_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set tmdb.api_key or TMDB_API_KEY"),
			logging.String(logging.FieldImpact, "board editing works; search returns 503"))
		return nil
	}
	return cat
}

func searchOptions(cfg *config.Config) search.Options {
	return search.Options{
		Debounce:          cfg.SearchDebounce(),
		MinQueryLength:    cfg.Search.MinQueryLength,
		ResultLimit:       cfg.Search.ResultLimit,
		PersonCreditLimit: cfg.Search.PersonCreditLimit,
	}
}

func imageResolver(cfg *config.Config) api.Images {
	return api.Images{BaseURL: cfg.TMDB.ImageBaseURL, Placeholder: cfg.TMDB.PlaceholderImage}
}

func noticePrinter(w io.Writer) notices.Sink {
	return notices.Func(func(n notices.Notice) {
		switch n.Level {
		case notices.LevelWarning, notices.LevelError:
			fmt.Fprintf(w, "%s: %s\n", n.Level, n.Message)
		default:
			fmt.Fprintln(w, n.Message)
		}
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
