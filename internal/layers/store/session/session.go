package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mapview/internal/layers/controller"
)

// Session is one mounted viewer: its controller plus bookkeeping for idle
// expiry. Transitions on a session are serialised through Do; lastSeen is
// read without taking mu so idle sweeps never wait on a running transition.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	lastSeen   atomic.Int64
	controller *controller.Controller
}

// New wraps a controller in a session created at now.
func New(id uuid.UUID, c *controller.Controller, now time.Time) *Session {
	s := &Session{ID: id, CreatedAt: now, controller: c}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Do runs fn with exclusive access to the session's controller and marks the
// session as seen at now.
func (s *Session) Do(now time.Time, fn func(c *controller.Controller)) {
	s.touch(now)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.controller)
}

func (s *Session) touch(now time.Time) {
	seen := now.UnixNano()
	for {
		prev := s.lastSeen.Load()
		if seen <= prev || s.lastSeen.CompareAndSwap(prev, seen) {
			return
		}
	}
}

// LastSeen returns the time of the most recent Do.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load()).UTC()
}
