package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	presencesvc "github.com/Awkwardd-code/Swipe/internal/services/presence"
	realtimesvc "github.com/Awkwardd-code/Swipe/internal/services/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	tokens          *authsvc.JWTManager
	hub             *realtimesvc.Hub
	presence        *presencesvc.Service
	logger          *zap.Logger
	readLimit       int64
	heartbeatWindow time.Duration
}

func NewWSHandler(tokens *authsvc.JWTManager, hub *realtimesvc.Hub, presence *presencesvc.Service, heartbeatWindow time.Duration, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if heartbeatWindow <= 0 {
		heartbeatWindow = 60 * time.Second
	}

	return &WSHandler{
		tokens:          tokens,
		hub:             hub,
		presence:        presence,
		logger:          logger,
		readLimit:       4096,
		heartbeatWindow: heartbeatWindow,
	}
}

// Handle authenticates via the token query parameter, upgrades the
// connection and pumps reads until the client goes away. Any inbound
// frame counts as a heartbeat.
func (h *WSHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil || h.hub == nil || h.presence == nil {
		writeInternal(w, "REALTIME_UNAVAILABLE", "realtime service is unavailable")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeUnauthorized(w, "UNAUTHORIZED", "token query parameter is required")
		return
	}

	claims, err := h.tokens.ParseAccessToken(token)
	if err != nil {
		writeUnauthorized(w, "UNAUTHORIZED", "invalid token")
		return
	}

	connectionID, err := h.presence.Connect(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("register presence", zap.Int64("user_id", claims.UserID), zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to register connection")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		_ = h.presence.Disconnect(r.Context(), connectionID)
		return
	}

	// the request context carries the router's timeout, the pump outlives it
	ctx := context.Background()

	h.hub.Register(claims.UserID, connectionID, conn)
	defer func() {
		h.hub.Unregister(claims.UserID, connectionID)
		_ = h.presence.Disconnect(ctx, connectionID)
	}()

	h.logger.Info("websocket connected",
		zap.Int64("user_id", claims.UserID),
		zap.String("connection_id", connectionID),
	)

	conn.SetReadLimit(h.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.heartbeatWindow))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(h.heartbeatWindow))
		return h.presence.Heartbeat(ctx, connectionID)
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error",
					zap.Int64("user_id", claims.UserID),
					zap.String("connection_id", connectionID),
					zap.Error(err),
				)
			}
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(h.heartbeatWindow))
		if err := h.presence.Heartbeat(ctx, connectionID); err != nil {
			h.logger.Debug("heartbeat failed",
				zap.String("connection_id", connectionID),
				zap.Error(err),
			)
			return
		}
	}
}
