package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	view     *View
	lastSeen time.Time
}

// Sessions keeps one View per shopper, keyed by an opaque session id.
// Views idle for longer than the TTL are dropped on a later access.
type Sessions struct {
	mu        sync.Mutex
	sessions  map[string]*session
	ttl       time.Duration
	newView   func() *View
	metrics   *Metrics
	now       func() time.Time
	lastSweep time.Time
}

// NewSessions creates a session store; newView builds the view for a new shopper
func NewSessions(ttl time.Duration, metrics *Metrics, newView func() *View) *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		ttl:      ttl,
		newView:  newView,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Get returns the view for id, creating a new session when id is empty,
// malformed, unknown or expired. The returned id is the one to hand back to
// the client.
func (s *Sessions) Get(ctx context.Context, id string) (*View, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(ctx, now)

	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := s.sessions[id]; ok {
			if s.ttl <= 0 || now.Sub(sess.lastSeen) <= s.ttl {
				sess.lastSeen = now
				return sess.view, id, false
			}
			// Expired but not yet swept
			sess.view.Close()
			delete(s.sessions, id)
			s.metrics.sessionDelta(ctx, -1)
		}
	}

	id = uuid.NewString()
	sess := &session{view: s.newView(), lastSeen: now}
	s.sessions[id] = sess
	s.metrics.sessionDelta(ctx, 1)

	return sess.view, id, true
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close drops every session and cancels their in-flight fetches
func (s *Sessions) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sessions)
	for id, sess := range s.sessions {
		sess.view.Close()
		delete(s.sessions, id)
	}
	s.metrics.sessionDelta(ctx, -n)
}

func (s *Sessions) sweep(ctx context.Context, now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl/2 {
		return
	}
	s.lastSweep = now

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			sess.view.Close()
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.metrics.sessionDelta(ctx, -evicted)
	}
}
