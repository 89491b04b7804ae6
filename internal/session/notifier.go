package session

import (
	"context"
	"encoding/json"
	"time"

	"mapview_backend/internal/events"
	"mapview_backend/internal/popup"
	"mapview_backend/internal/viewport"
	"mapview_backend/platform/logger"
)

// publishTimeout bounds one event publication. Publications run while the
// popup manager holds its lock, so a stalled bus must not hold it for long.
const publishTimeout = 2 * time.Second

// notifier turns popup, viewport and search box changes of one session into
// domain events. Events are published synchronously so that subscribers see
// them in the order the changes happened.
type notifier struct {
	sessionID string
	bus       events.Bus
	log       *logger.Logger
	timeout   time.Duration
}

func (n *notifier) publish(e events.Event) {
	if n.bus == nil {
		return
	}
	timeout := n.timeout
	if timeout <= 0 {
		timeout = publishTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := n.bus.PublishSync(ctx, e); err != nil {
		n.log.Warn("failed to publish session event", "event", e.EventName(), "error", err)
	}
}

func (n *notifier) PopupOpened(p popup.Popup) {
	html, err := popup.Render(p.Content)
	if err != nil {
		n.log.Error("failed to render popup", "popup_id", p.ID, "error", err)
	}
	content, err := json.Marshal(p.Content)
	if err != nil {
		n.log.Error("failed to encode popup content", "popup_id", p.ID, "error", err)
	}

	n.publish(events.PopupOpened{
		BaseEvent: events.NewBaseEvent(),
		SessionID: n.sessionID,
		PopupID:   p.ID,
		PlaceID:   p.Content.PlaceID.String(),
		Lat:       p.Position.Lat,
		Lng:       p.Position.Lng,
		Content:   content,
		HTML:      html,
	})
}

func (n *notifier) PopupClosed(p popup.Popup) {
	n.publish(events.PopupClosed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: n.sessionID,
		PopupID:   p.ID,
	})
}

func (n *notifier) ViewportChanged(s viewport.State) {
	n.publish(events.ViewportChanged{
		BaseEvent: events.NewBaseEvent(),
		SessionID: n.sessionID,
		Lat:       s.Center.Lat,
		Lng:       s.Center.Lng,
		Zoom:      s.Zoom,
	})
}

func (n *notifier) SearchBoxCleared() {
	n.publish(events.SearchBoxCleared{
		BaseEvent: events.NewBaseEvent(),
		SessionID: n.sessionID,
	})
}
