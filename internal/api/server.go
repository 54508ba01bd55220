package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/drag"
	"mediaranker/internal/events"
	"mediaranker/internal/logging"
	"mediaranker/internal/media"
	"mediaranker/internal/notices"
	"mediaranker/internal/search"
	"mediaranker/internal/session"
	"mediaranker/internal/storage"
)

// maxBodyBytes caps request bodies, including imported files.
const maxBodyBytes = 8 << 20

// Options configure the server.
type Options struct {
	Bind           string
	AllowedOrigins []string
	Images         Images
	ExportFileName string
	Search         search.Options
}

// Deps are the collaborators the server drives. Sink should already feed
// Hub and Notices; the server only reads from them.
type Deps struct {
	Session *session.Session
	Catalog catalog.Catalog
	Hub     *events.Hub
	Notices *notices.Queue
	Sink    notices.Sink
}

// Server holds the HTTP server dependencies.
type Server struct {
	session *session.Session
	search  *search.Orchestrator
	hub     *events.Hub
	notices *notices.Queue
	opts    Options
	logger  *slog.Logger
	router  chi.Router

	listener net.Listener
	server   *http.Server
}

// New wires the router. Board changes and search results are published to
// the hub when one is supplied.
func New(deps Deps, opts Options, logger *slog.Logger) *Server {
	if opts.ExportFileName == "" {
		opts.ExportFileName = "media-ranker-export.json"
	}
	s := &Server{
		session: deps.Session,
		hub:     deps.Hub,
		notices: deps.Notices,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "api"),
		router:  chi.NewRouter(),
	}

	searchOpts := opts.Search
	if s.hub != nil {
		images := opts.Images
		searchOpts.Deliver = func(r search.Results) {
			s.hub.Publish(events.TypeSearch, FromResults(r, images))
		}
		deps.Session.Observe(func(reason string, view session.View) {
			s.hub.Publish(events.TypeBoard, BoardChange{Reason: reason, Board: FromView(view, images)})
		})
	}
	if deps.Catalog != nil {
		s.search = search.New(deps.Catalog, deps.Session, deps.Sink, logger, searchOpts)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Board
		r.Get("/board", s.handleGetBoard)
		r.Post("/items/move", s.handleMoveItem)
		r.Delete("/items/{ref}", s.handleRemoveItem)
		r.Post("/items/{ref}/click", s.handleClickItem)
		r.Post("/edit-mode", s.handleEditMode)

		// Drag gestures
		r.Put("/drag/surfaces", s.handleSetSurfaces)
		r.Post("/drag/start", s.handleDragStart)
		r.Post("/drag/hover", s.handleDragHover)
		r.Post("/drag/drop", s.handleDragDrop)
		r.Post("/drag/cancel", s.handleDragCancel)

		// Search
		r.Get("/search", s.handleGetSearch)
		r.Post("/search/input", s.handleSearchInput)
		r.Post("/search/category", s.handleSearchCategory)
		r.Post("/search/select", s.handleSearchSelect)

		// Transfer
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/clear", s.handleClear)

		// Preferences and feedback
		r.Get("/theme", s.handleGetTheme)
		r.Put("/theme", s.handlePutTheme)
		r.Get("/notices", s.handleNotices)
		if s.hub != nil {
			r.Handle("/ws", s.hub)
		}
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// requestLogger logs each request with the chi request id as correlation id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = logging.WithCorrelationID(ctx, id)
			r = r.WithContext(ctx)
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("duration", time.Since(start)))
	})
}

// Start listens on the configured bind and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and disconnects websocket clients.
func (s *Server) Stop() {
	if s.search != nil {
		s.search.Close()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// respondErr maps package errors to status codes.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, board.ErrNotFound), errors.Is(err, search.ErrNoSuchResult):
		status = http.StatusNotFound
	case errors.Is(err, board.ErrUnknownCollection), errors.Is(err, storage.ErrInvalidFormat):
		status = http.StatusBadRequest
	case errors.Is(err, drag.ErrEditMode), errors.Is(err, drag.ErrBusy), errors.Is(err, drag.ErrNotDragging),
		errors.Is(err, search.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, media.ErrNotPlaceable), errors.Is(err, media.ErrKindMismatch):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Error(err))
	}
	respondError(w, status, err.Error())
}
