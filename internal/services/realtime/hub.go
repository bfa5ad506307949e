package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultSendBuffer   = 32
	defaultWriteTimeout = 10 * time.Second
)

// Event is the wire frame pushed to connected clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Config struct {
	SendBuffer   int
	WriteTimeout time.Duration
}

// Client is one WebSocket connection owned by the hub. All writes go
// through the send channel so a single writer goroutine touches the
// connection.
type Client struct {
	UserID       int64
	ConnectionID string

	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// close stops the writer. Safe to call repeatedly and concurrently
// with trySend.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// trySend queues data without blocking. Reports false when the client
// is already closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks connected clients per user and fans events out to them.
// A slow connection only loses its own events: sends never block on a
// full client buffer.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[string]*Client
	cfg     Config
	logger  *zap.Logger
	closed  bool
}

func NewHub(cfg Config, logger *zap.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		clients: make(map[int64]map[string]*Client),
		cfg:     cfg,
		logger:  logger,
	}
}

// Register adds the connection and starts its writer. The returned
// client stays valid until Unregister or Close.
func (h *Hub) Register(userID int64, connectionID string, conn *websocket.Conn) *Client {
	client := &Client{
		UserID:       userID,
		ConnectionID: connectionID,
		conn:         conn,
		send:         make(chan []byte, h.cfg.SendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		client.close()
		return client
	}
	byConn, ok := h.clients[userID]
	if !ok {
		byConn = make(map[string]*Client)
		h.clients[userID] = byConn
	}
	byConn[connectionID] = client
	h.mu.Unlock()

	go h.writePump(client)

	h.logger.Debug("realtime client registered",
		zap.Int64("user_id", userID),
		zap.String("connection_id", connectionID),
	)

	return client
}

// Unregister drops the connection from the registry and stops its writer.
func (h *Hub) Unregister(userID int64, connectionID string) {
	h.mu.Lock()
	var client *Client
	if byConn, ok := h.clients[userID]; ok {
		client = byConn[connectionID]
		delete(byConn, connectionID)
		if len(byConn) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()

	if client != nil {
		client.close()
	}
}

// SendToUser delivers the event to every connection the user holds.
// Events to absent users are dropped silently; a full client buffer
// drops the event for that connection only.
func (h *Hub) SendToUser(userID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal realtime event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for _, client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.trySend(data) {
			h.logger.Warn("realtime client unavailable, dropping event",
				zap.Int64("user_id", client.UserID),
				zap.String("connection_id", client.ConnectionID),
				zap.String("type", event.Type),
			)
		}
	}
}

func (h *Hub) IsConnected(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Close stops every writer. Registered connections are closed by their
// read loops once the writer goes away.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Client
	for _, byConn := range h.clients {
		for _, client := range byConn {
			all = append(all, client)
		}
	}
	h.clients = make(map[int64]map[string]*Client)
	h.mu.Unlock()

	for _, client := range all {
		client.close()
	}
}

func (h *Hub) writePump(client *Client) {
	defer func() { _ = client.conn.Close() }()

	for data := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("realtime write failed",
				zap.Int64("user_id", client.UserID),
				zap.String("connection_id", client.ConnectionID),
				zap.Error(err),
			)
			h.Unregister(client.UserID, client.ConnectionID)
			return
		}
	}
}
