package maps

import (
	"net/http"
	"sync"
	"time"

	"mapview_backend/internal/maps/stream"
	"mapview_backend/internal/places"
	"mapview_backend/internal/selection"
	"mapview_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsTypeClick              = "click"
	wsTypeSearchBox          = "search_box"
	wsTypeSearch             = "search"
	wsTypeAutocompleteCommit = "autocomplete_commit"
	wsTypeResult             = "result"
	wsTypeError              = "error"

	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 4096
)

func newUpgrader(origins []string, allowAll bool) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if allowAll || origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// wsConn serializes writes to one WebSocket connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(msg interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.conn.WriteJSON(msg)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// WebSocket handles GET /api/v1/session/ws. Inbound messages are selections;
// outbound messages are their results and the session's pushed events.
func (h *Handler) WebSocket(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "session_id", sess.ID, "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ws := &wsConn{conn: conn}
	sub := h.hub.Attach(sess.ID)
	defer sub.Cancel()

	if err := ws.send(wsOutbound{Type: stream.MessageConnected, Data: sess.Snapshot()}); err != nil {
		return
	}
	h.log.Debug("stream client connected", "session_id", sess.ID, "transport", "websocket")

	done := make(chan struct{})
	go h.pump(ws, sub.Messages, done)

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg wsInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("websocket read error", "session_id", sess.ID, "error", err)
			}
			break
		}
		if sess.Context().Err() != nil {
			break
		}
		reply := h.dispatch(sess, msg)
		if err := ws.send(reply); err != nil {
			break
		}
	}

	close(done)
	h.log.Debug("stream client disconnected", "session_id", sess.ID, "transport", "websocket")
}

func (h *Handler) pump(ws *wsConn, messages <-chan stream.Message, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := ws.send(wsOutbound{Type: msg.Type, Data: msg}); err != nil {
				return
			}
			if msg.Final() {
				_ = ws.conn.Close()
				return
			}
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}

func (h *Handler) dispatch(sess *session.Session, msg wsInbound) wsOutbound {
	switch msg.Type {
	case wsTypeClick:
		return wsOutbound{Type: wsTypeResult, Data: sess.Pipeline.HandleClick(selection.NewClick(places.PlaceID(msg.PlaceID)))}
	case wsTypeSearchBox:
		if msg.Text != nil {
			sess.Box.Set(*msg.Text)
		}
		return wsOutbound{Type: wsTypeResult, Data: gin.H{"text": sess.Box.Text()}}
	case wsTypeSearch:
		if msg.Text != nil {
			sess.Box.Set(*msg.Text)
		}
		return wsOutbound{Type: wsTypeResult, Data: sess.Pipeline.SubmitSearch()}
	case wsTypeAutocompleteCommit:
		if msg.Position != nil {
			if err := h.val.Struct(msg.Position); err != nil {
				return wsOutbound{Type: wsTypeError, Error: msgInvalidRequest}
			}
		}
		place := selection.AutocompletePlace{PlaceID: places.PlaceID(msg.PlaceID), Name: msg.Name, Position: msg.Position}
		return wsOutbound{Type: wsTypeResult, Data: sess.Pipeline.CommitAutocomplete(place)}
	default:
		return wsOutbound{Type: wsTypeError, Error: "unknown message type"}
	}
}
