package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	chatservice "github.com/zhouzirui/minichat/backend/internal/service/chat"
	"github.com/zhouzirui/minichat/backend/internal/service/widget"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 64
)

// WebSocketHandler WebSocket挂件处理器
type WebSocketHandler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

// InboundMessage is an intent sent by the client.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// TextPayload carries draft or send text. A send without text sends the draft.
type TextPayload struct {
	Text *string `json:"text"`
}

// OutboundMessage is pushed to the client.
type OutboundMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

const (
	TypeToggle   = "toggle"
	TypeDraft    = "draft"
	TypeSend     = "send"
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
	TypeError    = "error"

	// TypeUnmounted is sent once before the server closes the socket with
	// CloseGoingAway.
	TypeUnmounted = "unmounted"
)

type connection struct {
	sessionID string
	conn      *websocket.Conn
	send      chan OutboundMessage
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "websocket").Msg("upgrade failed")
		return
	}
	defer ws.Close()

	c := &connection{sessionID: sessionID, conn: ws, send: make(chan OutboundMessage, sendBuffer)}
	log.Info().Str("component", "websocket").Str("session_id", sessionID).Msg("new connection")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	unsubscribe := ctrl.Subscribe(func(ev widget.Event) {
		if ev.Kind == widget.EventUnmounted {
			c.enqueue(unmountedMessage(sessionID))
			return
		}
		c.enqueue(OutboundMessage{Type: TypeEvent, SessionID: sessionID, Data: ev, Timestamp: time.Now().Unix()})
	})
	defer unsubscribe()

	go h.writeLoop(ctx, cancel, c)

	h.sendSnapshot(ctx, c)

	ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg InboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "websocket").Str("session_id", sessionID).Msg("read error")
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(readTimeout))

		h.handleMessage(ctx, c, ctrl, msg)
	}
}

// handleMessage applies one intent.
func (h *WebSocketHandler) handleMessage(ctx context.Context, c *connection, ctrl *widget.Controller, msg InboundMessage) {
	if _, err := h.chatSvc.GetSession(ctx, c.sessionID); err != nil {
		// writeLoop closes the socket after this message goes out.
		c.enqueue(unmountedMessage(c.sessionID))
		return
	}

	switch msg.Type {
	case TypeToggle:
		ctrl.Toggle()
	case TypeDraft:
		payload, ok := decodeText(msg.Data)
		if !ok || payload.Text == nil {
			c.enqueue(errorMessage("invalid draft payload"))
			return
		}
		ctrl.UpdateDraft(*payload.Text)
	case TypeSend:
		payload, ok := decodeText(msg.Data)
		if !ok {
			c.enqueue(errorMessage("invalid send payload"))
			return
		}
		if payload.Text != nil {
			ctrl.Send(*payload.Text)
		} else {
			ctrl.SendDraft()
		}
	case TypeSnapshot:
		h.sendSnapshot(ctx, c)
	default:
		c.enqueue(errorMessage("unsupported message type: " + msg.Type))
	}
}

func (h *WebSocketHandler) sendSnapshot(ctx context.Context, c *connection) {
	view, err := h.chatSvc.View(ctx, c.sessionID)
	if err != nil {
		c.enqueue(errorMessage(err.Error()))
		return
	}
	c.enqueue(OutboundMessage{Type: TypeSnapshot, SessionID: c.sessionID, Data: view, Timestamp: time.Now().Unix()})
}

// writeLoop is the only writer of the socket; it also sends pings. It closes
// the socket once the session is unmounted.
func (h *WebSocketHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, c *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Str("component", "websocket").Str("session_id", c.sessionID).Msg("write failed")
				c.conn.Close()
				return
			}
			if msg.Type == TypeUnmounted {
				c.goAway()
				return
			}
		case <-ticker.C:
			if _, err := h.chatSvc.GetSession(ctx, c.sessionID); err != nil {
				c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				_ = c.conn.WriteJSON(unmountedMessage(c.sessionID))
				c.goAway()
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

func (c *connection) goAway() {
	log.Info().Str("component", "websocket").Str("session_id", c.sessionID).Msg("session unmounted, closing connection")
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "widget unmounted"),
		time.Now().Add(writeTimeout))
	c.conn.Close()
}

func (c *connection) enqueue(msg OutboundMessage) {
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("component", "websocket").Str("session_id", c.sessionID).Str("type", msg.Type).Msg("send buffer full, dropping message")
	}
}

func decodeText(raw json.RawMessage) (TextPayload, bool) {
	var payload TextPayload
	if len(raw) == 0 {
		return payload, true
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, false
	}
	return payload, true
}

func unmountedMessage(sessionID string) OutboundMessage {
	return OutboundMessage{
		Type:      TypeUnmounted,
		SessionID: sessionID,
		Data:      map[string]string{"sessionId": sessionID},
		Timestamp: time.Now().Unix(),
	}
}

func errorMessage(message string) OutboundMessage {
	return OutboundMessage{
		Type:      TypeError,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
}
