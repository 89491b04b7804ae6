package session

import (
	"context"
	"sync"
	"time"

	"mapview_backend/internal/events"
	"mapview_backend/internal/maps/profile"
	"mapview_backend/internal/popup"
	"mapview_backend/internal/selection"
	"mapview_backend/internal/viewport"
	"mapview_backend/platform/apperr"
	"mapview_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	closeReasonDeleted  = "deleted"
	closeReasonExpired  = "expired"
	closeReasonShutdown = "shutdown"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Resolver selection.Resolver
	Builder  selection.ContentBuilder
	Bus      events.Bus
	Log      *logger.Logger
	// TTL is how long a session may stay idle.
	TTL time.Duration
	// SequenceGuard rejects popups from selections older than the last applied one.
	SequenceGuard bool
}

// Store holds the live sessions of this instance.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
	base     context.Context
	now      func() time.Time
}

// NewStore creates an empty store. Session contexts derive from ctx.
func NewStore(ctx context.Context, deps Deps) *Store {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Store{
		sessions: make(map[string]*Session),
		deps:     deps,
		base:     ctx,
		now:      time.Now,
	}
}

// Create opens a session for a map using p.
func (s *Store) Create(p profile.Profile) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(s.base)
	n := &notifier{sessionID: id, bus: s.deps.Bus, log: s.deps.Log.WithSession(id)}

	sess := &Session{
		ID:                id,
		Profile:           p,
		CreatedAt:         s.now(),
		AutocompleteToken: uuid.NewString(),
		ctx:               ctx,
		cancel:            cancel,
	}
	sess.Popups = popup.NewManager(n, popup.WithSequenceGuard(s.deps.SequenceGuard))
	sess.Viewport = viewport.NewController(p.InitialViewport(), p.FocusZoom, n)
	sess.Box = selection.NewSearchBox(n)
	sess.Pipeline = selection.NewPipeline(ctx, selection.Deps{
		Resolver: s.deps.Resolver,
		Builder:  s.deps.Builder,
		Popups:   sess.Popups,
		Viewport: sess.Viewport,
		Box:      sess.Box,
		Log:      s.deps.Log.WithSession(id),
	})
	sess.touch(sess.CreatedAt)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	n.publish(events.SessionCreated{BaseEvent: events.NewBaseEvent(), SessionID: id, Profile: p.Name})
	s.deps.Log.Info("map session created", "session_id", id, "profile", p.Name)
	return sess
}

// Get returns a live session and marks it as used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NotFound("session not found")
	}

	now := s.now()
	if s.expired(sess, now) {
		s.remove(id, closeReasonExpired)
		return nil, apperr.Gone("session expired")
	}
	sess.touch(now)
	return sess, nil
}

// Delete closes a session.
func (s *Store) Delete(id string) error {
	if !s.remove(id, closeReasonDeleted) {
		return apperr.NotFound("session not found")
	}
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it closed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if s.remove(id, closeReasonExpired) {
			closed++
		}
	}
	return closed
}

// Run sweeps expired sessions until ctx is done, then closes every session.
func (s *Store) Run(ctx context.Context) error {
	interval := s.deps.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.deps.Log.Info("expired map sessions closed", "count", n)
			}
		}
	}
}

// CloseAll closes every session.
func (s *Store) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.remove(id, closeReasonShutdown)
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.deps.TTL > 0 && now.Sub(sess.idleSince()) > s.deps.TTL
}

func (s *Store) remove(id, reason string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	sess.close()
	n := &notifier{sessionID: id, bus: s.deps.Bus, log: s.deps.Log}
	n.publish(events.SessionClosed{BaseEvent: events.NewBaseEvent(), SessionID: id, Reason: reason})
	s.deps.Log.Info("map session closed", "session_id", id, "reason", reason)
	return true
}
