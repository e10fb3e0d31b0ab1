package websocket

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// ErrOffline is returned by Push when the user has no live connection.
var ErrOffline = errors.New("user is offline")

// writeWait bounds every write, so a peer that stops reading costs the
// writer at most this long before the connection is dropped.
const writeWait = 10 * time.Second

// Conn is the part of a websocket connection the hub writes to.
// *websocket.Conn from gofiber/contrib satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client serialises writes; a websocket connection allows one writer at a time.
type client struct {
	conn Conn
	wait time.Duration
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.wait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.wait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub maps each user to at most one live connection.
type Hub struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*client
	writeWait time.Duration
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*client), writeWait: writeWait}
}

// Register binds conn to userID. A newer connection replaces the old one,
// which is closed.
func (h *Hub) Register(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	old, ok := h.clients[userID]
	h.clients[userID] = &client{conn: conn, wait: h.writeWait}
	h.mu.Unlock()

	if ok && old.conn != conn {
		old.conn.Close()
	}
	log.Printf("Client registered: %s", userID)
}

// Unregister removes userID only while conn is still its current connection,
// so a stale socket closing late cannot evict a newer one.
func (h *Hub) Unregister(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[userID]; ok && c.conn == conn {
		delete(h.clients, userID)
		log.Printf("Client unregistered: %s", userID)
	}
}

func (h *Hub) Lookup(userID uuid.UUID) (Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	if !ok {
		return nil, false
	}
	return c.conn, true
}

func (h *Hub) Online() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// Push writes one event to the user's connection. A failed write drops the connection.
func (h *Hub) Push(userID uuid.UUID, event string, payload interface{}) error {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return ErrOffline
	}

	if err := c.writeJSON(Envelope{Event: event, Data: payload}); err != nil {
		h.drop(userID, c)
		return err
	}
	return nil
}

// Notify is Push without the error: offline users are skipped and write
// failures are only logged.
func (h *Hub) Notify(userID uuid.UUID, event string, payload interface{}) {
	err := h.Push(userID, event, payload)
	if err != nil && !errors.Is(err, ErrOffline) {
		log.Printf("Error sending %s to client %s: %v", event, userID, err)
	}
}

// PingAll pings every connection and drops the ones that fail.
func (h *Hub) PingAll() int {
	h.mu.RLock()
	snapshot := make(map[uuid.UUID]*client, len(h.clients))
	for id, c := range h.clients {
		snapshot[id] = c
	}
	h.mu.RUnlock()

	dropped := 0
	for id, c := range snapshot {
		if err := c.ping(); err != nil {
			h.drop(id, c)
			dropped++
		}
	}
	return dropped
}

func (h *Hub) drop(userID uuid.UUID, c *client) {
	c.conn.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[userID]; ok && cur == c {
		delete(h.clients, userID)
	}
}
