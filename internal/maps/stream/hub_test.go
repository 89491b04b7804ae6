package stream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mapview_backend/internal/events"
	"mapview_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func TestHubRoutesEventsBySession(t *testing.T) {
	hub := New(logger.Discard())
	bus := events.NewInMemoryBus(logger.Discard())
	hub.SubscribeTo(bus)

	mine := hub.Attach("s-1")
	defer mine.Cancel()
	other := hub.Attach("s-2")
	defer other.Cancel()

	err := bus.PublishSync(context.Background(), events.PopupClosed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: "s-1",
		PopupID:   "p-1",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-mine.Messages:
		if msg.Type != events.NamePopupClosed || msg.SessionID != "s-1" {
			t.Fatalf("unexpected message %+v", msg)
		}
	default:
		t.Fatalf("expected message for s-1")
	}

	select {
	case msg := <-other.Messages:
		t.Fatalf("expected nothing for s-2, got %+v", msg)
	default:
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	hub := New(logger.Discard())
	sub := hub.Attach("s-1")

	sub.Cancel()
	sub.Cancel()

	if _, ok := <-sub.Messages; ok {
		t.Fatalf("expected closed channel")
	}
	if hub.Clients("s-1") != 0 {
		t.Fatalf("expected no clients")
	}
}

func TestServeSSEStopsOnSessionClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := New(logger.Discard())

	engine := gin.New()
	engine.GET("/events", func(c *gin.Context) {
		hub.ServeSSE(c, "s-1", gin.H{"sessionId": "s-1"})
	})
	srv := httptest.NewServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients("s-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never attached")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish("s-1", Message{Type: events.NameViewportChanged, SessionID: "s-1"})
	hub.Publish("s-1", Message{Type: events.NameSessionClosed, SessionID: "s-1"})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	text := string(body)
	for _, want := range []string{"event:connected", "event:" + events.NameViewportChanged, "event:" + events.NameSessionClosed} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in stream, got %s", want, text)
		}
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}
