package notices

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level grades a notice for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one user-facing message.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// New stamps a notice with an id and the current time.
func New(level Level, message string) Notice {
	return Notice{ID: uuid.NewString(), Level: level, Message: message, At: time.Now().UTC()}
}

// Sink receives notices. Implementations must not block.
type Sink interface {
	Notify(n Notice)
}

// Info, Success, Warn and Error are shorthands for Notify(New(level, msg)).
func Info(s Sink, msg string)    { notify(s, LevelInfo, msg) }
func Success(s Sink, msg string) { notify(s, LevelSuccess, msg) }
func Warn(s Sink, msg string)    { notify(s, LevelWarning, msg) }
func Error(s Sink, msg string)   { notify(s, LevelError, msg) }

func notify(s Sink, level Level, msg string) {
	if s == nil {
		return
	}
	s.Notify(New(level, msg))
}

// Nop discards notices.
type Nop struct{}

func (Nop) Notify(Notice) {}

// Func adapts a function to Sink.
type Func func(Notice)

func (f Func) Notify(n Notice) {
	if f != nil {
		f(n)
	}
}

// Multi delivers each notice to every sink.
type Multi []Sink

func (m Multi) Notify(n Notice) {
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// DefaultQueueSize bounds a Queue created with a non-positive capacity.
const DefaultQueueSize = 32

// Queue is a bounded FIFO. When full, the oldest notice is dropped.
type Queue struct {
	mu      sync.Mutex
	items   []Notice
	cap     int
	dropped int
}

// NewQueue returns a queue holding at most capacity notices.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{cap: capacity}
}

func (q *Queue) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.cap {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, n)
}

// Drain returns and removes all queued notices, oldest first.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Peek returns queued notices without removing them.
func (q *Queue) Peek() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Notice(nil), q.items...)
}

// Dropped reports how many notices were discarded for space.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
