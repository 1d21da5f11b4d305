package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// ErrTooManyClients is returned by AddClient when the connection limit is reached.
var ErrTooManyClients = errors.New("too many websocket clients")

type client struct {
	conn *websocket.Conn
	b    *Broadcaster
	send chan []byte
}

// writePump is the only goroutine that writes to conn.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Debug("ws write failed", "remote", c.conn.RemoteAddr().String(), "err", err)
			c.b.RemoveClient(c)
			return
		}
	}
}

// Broadcaster fans events out to every connected client.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[*client]bool
	maxClients int
}

// NewBroadcaster returns a broadcaster. maxClients <= 0 means unlimited.
func NewBroadcaster(maxClients int) *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*client]bool),
		maxClients: maxClients,
	}
}

// AddClient registers conn and queues the connected acknowledgement.
func (b *Broadcaster) AddClient(conn *websocket.Conn) (*client, error) {
	b.mu.Lock()
	if b.maxClients > 0 && len(b.clients) >= b.maxClients {
		b.mu.Unlock()
		return nil, ErrTooManyClients
	}
	c := &client{conn: conn, b: b, send: make(chan []byte, sendBuffer)}
	b.clients[c] = true
	b.mu.Unlock()

	go c.writePump()
	b.SendTo(c, MsgConnected, ConnectedPayload{Status: "connected"})
	return c, nil
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

// Broadcast sends an event to every client. Clients that cannot keep up
// are disconnected.
func (b *Broadcaster) Broadcast(t MessageType, payload interface{}) {
	data, ok := encode(t, payload)
	if !ok {
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		b.enqueue(c, data)
	}
}

// SendTo sends an event to a single client.
func (b *Broadcaster) SendTo(c *client, t MessageType, payload interface{}) {
	if data, ok := encode(t, payload); ok {
		b.enqueue(c, data)
	}
}

func (b *Broadcaster) enqueue(c *client, data []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("ws client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
		go b.RemoveClient(c)
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

func encode(t MessageType, payload interface{}) ([]byte, bool) {
	data, err := json.Marshal(WSMessage{Type: t, Payload: payload})
	if err != nil {
		slog.Error("ws marshal failed", "type", string(t), "err", err)
		return nil, false
	}
	return data, true
}
