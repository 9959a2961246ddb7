package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/internal/store"
	coregrpc "github.com/msto63/lox/pkg/core/grpc"
)

const wsReadTimeout = 120 * time.Second

// WSMessage is a client message
type WSMessage struct {
	Type    string          `json:"type"`    // "process", "ping"
	Payload json.RawMessage `json:"payload"` // Request for "process"
}

// WSResponse is a server message
type WSResponse struct {
	Type    string      `json:"type"`    // "result", "error", "pong"
	Payload interface{} `json:"payload"` // *Payload for "result"
}

// WSErrorPayload is the payload of an "error" response
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebSocketHandler serves the frontend over WebSocket. Messages on one
// connection are handled in order.
type WebSocketHandler struct {
	frontend *Frontend
	upgrader websocket.Upgrader
	logger   *mdwlog.Logger
}

// NewWebSocketHandler creates a handler backed by f
func NewWebSocketHandler(f *Frontend) *WebSocketHandler {
	return &WebSocketHandler{
		frontend: f,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: f.logger.WithComponent("lox-websocket"),
	}
}

// ServeHTTP upgrades the request and serves the connection
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("websocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// one id per connection groups its runs in the history
	connID := uuid.New().String()
	ctx = coregrpc.WithRequestID(ctx, connID)
	logger := h.logger.WithSessionID(connID)
	logger.Info("websocket connection established", mdwlog.Field("remote", conn.RemoteAddr().String()))

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnWithErr("websocket read error", err)
			} else {
				logger.Info("websocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.send(conn, WSResponse{Type: "pong"})

		case "process":
			var req Request
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid process payload")
				continue
			}
			payload, err := h.frontend.process(ctx, store.OriginWebSocket, req)
			if err != nil {
				h.sendError(conn, string(mdwerror.GetCode(err)), err.Error())
				continue
			}
			h.send(conn, WSResponse{Type: "result", Payload: payload})

		default:
			h.sendError(conn, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.WarnWithErr("websocket send error", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, code, message string) {
	h.send(conn, WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}
