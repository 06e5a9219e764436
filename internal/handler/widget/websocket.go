package widget

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
	widgetservice "github.com/einfratech/chatwidget/backend/internal/service/widget"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 54 * time.Second
)

// WebSocketHandler 挂件的实时通道：收 UI 事件，推送快照
type WebSocketHandler struct {
	widgets  *widgetservice.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(widgets *widgetservice.Manager, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		widgets: widgets,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Event types accepted from the browser.
const (
	EventToggle     = "toggle"
	EventClose      = "close"
	EventHoverStart = "hover_start"
	EventHoverEnd   = "hover_end"
	EventInput      = "input"
	EventSubmit     = "submit"
	EventMessage    = "message"
	EventQuick      = "quick"
)

// InboundEvent is one UI event sent by the widget script.
type InboundEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// OutboundFrame wraps everything written to the socket.
type OutboundFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	wg, err := h.widgets.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("[websocket] upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("session", sessionID).Logger()
	log.Info().Msg("[websocket] connection opened")
	defer func() { log.Info().Msg("[websocket] connection closed") }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := wg.Subscribe()
	defer unsubscribe()

	replies := make(chan OutboundFrame, 4)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// closing the conn unblocks the pending ReadJSON below
		defer conn.Close()
		defer cancel()
		h.writeLoop(ctx, conn, wg, updates, replies, log)
	}()

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var event InboundEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("[websocket] read error")
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if err := h.widgets.Touch(ctx, sessionID); err != nil {
			break
		}

		if reply, ok := h.apply(wg, event); ok {
			select {
			case replies <- reply:
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
}

// apply runs the event against the widget. The resulting snapshot reaches the
// client through the subscription; only extra frames are returned here.
func (h *WebSocketHandler) apply(wg *widgetservice.Widget, event InboundEvent) (OutboundFrame, bool) {
	var added []model.Message
	switch event.Type {
	case EventToggle:
		wg.ToggleOpen()
	case EventClose:
		wg.Close()
	case EventHoverStart:
		wg.HoverStart()
	case EventHoverEnd:
		wg.HoverEnd()
	case EventInput:
		wg.SetInput(event.Text)
	case EventSubmit:
		added, _ = wg.SubmitInput()
	case EventMessage:
		added, _ = wg.SubmitMessage(event.Text)
	case EventQuick:
		added, _ = wg.SubmitFromQuickButton(event.Text)
	default:
		return newFrame("error", wg.ID(), map[string]string{"message": "unsupported event type: " + event.Type}), true
	}

	if added != nil {
		return newFrame("messages", wg.ID(), added), true
	}
	return OutboundFrame{}, false
}

func (h *WebSocketHandler) writeLoop(ctx context.Context, conn *websocket.Conn, wg *widgetservice.Widget, updates <-chan model.Snapshot, replies <-chan OutboundFrame, log zerolog.Logger) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	write := func(frame OutboundFrame) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn().Err(err).Str("type", frame.Type).Msg("[websocket] write failed")
			return false
		}
		return true
	}

	if !write(newFrame("snapshot", wg.ID(), wg.Snapshot())) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-updates:
			if !open {
				write(newFrame("closed", wg.ID(), nil))
				return
			}
			if !write(newFrame("snapshot", wg.ID(), snap)) {
				return
			}
		case frame := <-replies:
			if !write(frame) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newFrame(kind, sessionID string, data interface{}) OutboundFrame {
	return OutboundFrame{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}
