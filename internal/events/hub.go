package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mediaranker/internal/logging"
	"mediaranker/internal/notices"
)

// Event types.
const (
	TypeWelcome = "welcome"
	TypeBoard   = "board"
	TypeNotice  = "notice"
	TypeSearch  = "search"
)

const writeTimeout = 2 * time.Second

// Event is one message sent to clients.
type Event struct {
	Seq  uint64    `json:"seq"`
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// Stats reports connected clients.
type Stats struct {
	Clients   int    `json:"clients"`
	Published uint64 `json:"published"`
}

// Hub tracks websocket clients and broadcasts events to them. Writes happen
// under the hub lock so each connection has a single writer.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	seq      uint64
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHub returns an empty hub. allowedOrigins limits browser origins for the
// websocket upgrade; empty allows any origin.
func NewHub(logger *slog.Logger, allowedOrigins ...string) *Hub {
	h := &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logging.NewComponentLogger(logger, "events"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Publish sends an event of the given type to every client and returns its
// sequence number.
func (h *Hub) Publish(eventType string, data any) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	evt := Event{Seq: h.seq, Type: eventType, At: time.Now().UTC(), Data: data}
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("event encode failed",
			logging.String(logging.FieldEventType, "event_encode_failed"),
			logging.String("type", eventType),
			logging.Error(err))
		return evt.Seq
	}
	for ws := range h.clients {
		if err := writeMessage(ws, payload); err != nil {
			h.logger.Debug("dropping websocket client", logging.Error(err))
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
	return evt.Seq
}

// Notify makes the hub a notices.Sink.
func (h *Hub) Notify(n notices.Notice) {
	h.Publish(TypeNotice, n)
}

var _ notices.Sink = (*Hub)(nil)

func writeMessage(ws *websocket.Conn, payload []byte) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ws.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) add(ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	welcome, err := json.Marshal(Event{Seq: h.seq, Type: TypeWelcome, At: time.Now().UTC(), Data: map[string]int{"clients": len(h.clients) + 1}})
	if err != nil {
		return err
	}
	if err := writeMessage(ws, welcome); err != nil {
		return err
	}
	h.clients[ws] = struct{}{}
	return nil
}

func (h *Hub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Stats returns a point-in-time client count.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Clients: len(h.clients), Published: h.seq}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeTimeout))
		_ = ws.Close()
		delete(h.clients, ws)
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away. Incoming messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	if err := h.add(ws); err != nil {
		_ = ws.Close()
		return
	}
	h.logger.Debug("websocket client connected", logging.String("remote", r.RemoteAddr))

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(ws)
	h.logger.Debug("websocket client disconnected", logging.String("remote", r.RemoteAddr))
}
