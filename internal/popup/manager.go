package popup

import (
	"sync"
	"time"

	"mapview_backend/internal/places"

	"github.com/google/uuid"
)

// Popup is an open popup anchored at a position.
type Popup struct {
	ID       string          `json:"id"`
	Content  Content         `json:"content"`
	Position places.Position `json:"position"`
	OpenedAt time.Time       `json:"openedAt"`
}

// Sink observes popup state changes. Calls are made while the manager holds
// its lock, so a sink must not call back into the manager.
type Sink interface {
	PopupOpened(p Popup)
	PopupClosed(p Popup)
}

// Option configures a Manager.
type Option func(*Manager)

// WithSequenceGuard makes ShowSelection and CloseSelection reject selections
// older than the last applied one.
func WithSequenceGuard(enabled bool) Option {
	return func(m *Manager) { m.guard = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the single popup of one map session.
type Manager struct {
	mu      sync.Mutex
	current *Popup
	lastSeq uint64
	guard   bool
	sink    Sink
	now     func() time.Time
}

// NewManager creates a manager with no open popup. sink may be nil.
func NewManager(sink Sink, opts ...Option) *Manager {
	m := &Manager{sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Show closes the open popup, if any, then opens a new one at the position.
func (m *Manager) Show(content Content, at places.Position) Popup {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showLocked(content, at)
}

// ShowSelection is Show for the selection with sequence number seq. With the
// sequence guard enabled, a selection older than the last applied one is
// rejected and false is returned.
func (m *Manager) ShowSelection(seq uint64, content Content, at places.Position) (Popup, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptLocked(seq) {
		return Popup{}, false
	}
	return m.showLocked(content, at), true
}

// CloseIfOpen closes the open popup. It reports whether one was open.
func (m *Manager) CloseIfOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// CloseSelection is CloseIfOpen for the selection with sequence number seq,
// subject to the sequence guard.
func (m *Manager) CloseSelection(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acceptLocked(seq) {
		return false
	}
	return m.closeLocked()
}

// Current returns the open popup.
func (m *Manager) Current() (Popup, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Popup{}, false
	}
	return *m.current, true
}

func (m *Manager) acceptLocked(seq uint64) bool {
	if !m.guard {
		return true
	}
	if seq < m.lastSeq {
		return false
	}
	m.lastSeq = seq
	return true
}

func (m *Manager) showLocked(content Content, at places.Position) Popup {
	m.closeLocked()

	p := Popup{
		ID:       uuid.NewString(),
		Content:  content,
		Position: at,
		OpenedAt: m.now(),
	}
	m.current = &p
	if m.sink != nil {
		m.sink.PopupOpened(p)
	}
	return p
}

func (m *Manager) closeLocked() bool {
	if m.current == nil {
		return false
	}
	closed := *m.current
	m.current = nil
	if m.sink != nil {
		m.sink.PopupClosed(closed)
	}
	return true
}
