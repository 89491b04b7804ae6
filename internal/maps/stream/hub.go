// Package stream pushes map session events to connected browsers over
// Server-Sent Events and WebSockets.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"mapview_backend/internal/events"
	"mapview_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// MessageConnected is the first message of every stream.
const MessageConnected = "connected"

const bufferSize = 32

// Message is one pushed event.
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Data      interface{} `json:"data,omitempty"`
}

// Final reports whether the stream ends after this message.
func (m Message) Final() bool {
	return m.Type == events.NameSessionClosed
}

// client is one connected stream of a session.
type client struct {
	sessionID string
	messages  chan Message
}

// Subscription is a client's view of the hub. Messages is closed when the
// subscription is cancelled or the hub shuts down.
type Subscription struct {
	Messages <-chan Message
	cancel   func()
}

// Cancel detaches the subscription from the hub.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Hub fans session events out to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*client // sessionID -> clients
	log     *logger.Logger
}

// New creates an empty hub.
func New(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string][]*client),
		log:     log,
	}
}

// SubscribeTo forwards every map session event published on bus.
func (h *Hub) SubscribeTo(bus events.Bus) {
	for _, name := range events.SessionEventNames {
		bus.Subscribe(name, events.HandlerFunc(h.handle))
	}
}

func (h *Hub) handle(_ context.Context, e events.Event) error {
	se, ok := e.(events.SessionEvent)
	if !ok {
		return nil
	}
	h.Publish(se.Session(), Message{Type: e.EventName(), SessionID: se.Session(), Data: e})
	return nil
}

// Attach registers a new client for sessionID.
func (h *Hub) Attach(sessionID string) *Subscription {
	c := &client{sessionID: sessionID, messages: make(chan Message, bufferSize)}

	h.mu.Lock()
	h.clients[sessionID] = append(h.clients[sessionID], c)
	h.mu.Unlock()

	var once sync.Once
	return &Subscription{
		Messages: c.messages,
		cancel:   func() { once.Do(func() { h.detach(c) }) },
	}
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.sessionID]
	for i, cl := range clients {
		if cl == c {
			h.clients[c.sessionID] = append(clients[:i], clients[i+1:]...)
			close(c.messages)
			break
		}
	}
	if len(h.clients[c.sessionID]) == 0 {
		delete(h.clients, c.sessionID)
	}
}

// Publish sends msg to every client of sessionID. Slow clients drop messages.
func (h *Hub) Publish(sessionID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[sessionID] {
		select {
		case c.messages <- msg:
		default:
			h.log.Warn("stream buffer full", "session_id", sessionID, "type", msg.Type)
		}
	}
}

// Clients returns the number of clients attached to sessionID.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// ServeSSE streams the session's events until the client goes away or the
// session closes. hello is sent first.
func (h *Hub) ServeSSE(c *gin.Context, sessionID string, hello interface{}) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sub := h.Attach(sessionID)
	defer sub.Cancel()

	c.SSEvent(MessageConnected, hello)
	c.Writer.Flush()

	h.log.Debug("stream client connected", "session_id", sessionID, "transport", "sse")

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			h.log.Debug("stream client disconnected", "session_id", sessionID, "transport", "sse")
			return
		case msg, ok := <-sub.Messages:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.log.Error("failed to encode stream message", "type", msg.Type, "error", err)
				continue
			}
			c.SSEvent(msg.Type, string(data))
			c.Writer.Flush()
			if msg.Final() {
				return
			}
		}
	}
}

// Close detaches every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			close(c.messages)
		}
	}
	h.clients = make(map[string][]*client)
}
