package devtools

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sakinah-dev/sakinah/pkg/store"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 64
	maxMessageSize = 512
)

// MessageType is the kind of a watch message.
type MessageType string

const (
	MessageSnapshot MessageType = "snapshot"
	MessageChange   MessageType = "change"
)

// Message is sent to watch clients.
type Message struct {
	Type   MessageType     `json:"type"`
	Store  string          `json:"store"`
	State  json.RawMessage `json:"state,omitempty"`
	Change *store.Change   `json:"change,omitempty"`
}

type client struct {
	conn  *websocket.Conn
	topic string
	send  chan []byte
	done  chan struct{}
	once  sync.Once
}

func newClient(conn *websocket.Conn, topic string, buffer int) *client {
	return &client{
		conn:  conn,
		topic: topic,
		send:  make(chan []byte, buffer),
		done:  make(chan struct{}),
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writeLoop drains send until the client is closed.
func (c *client) writeLoop() {
	defer c.close()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Hub fans store changes out to WebSocket clients, one topic per store.
// A client whose buffer is full is dropped rather than slowing commits.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	watched map[string]store.Unsubscribe
	logger  *slog.Logger
	dropped int
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		watched: make(map[string]store.Unsubscribe),
		logger:  logger,
	}
}

// join registers c after queueing a snapshot of s, holding the hub lock so
// no change committed after the snapshot is missed.
func (h *Hub) join(s store.Inspectable, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watched[s.Name()]; !ok {
		name := s.Name()
		h.watched[name] = s.SubscribeChanges(func(ch store.Change) {
			h.broadcast(name, Message{Type: MessageChange, Store: name, Change: &ch})
		})
	}

	state, err := s.MarshalState()
	if err != nil {
		return err
	}
	data, err := json.Marshal(Message{Type: MessageSnapshot, Store: s.Name(), State: state})
	if err != nil {
		return err
	}
	c.send <- data
	h.clients[c] = struct{}{}
	return nil
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) broadcast(topic string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("devtools: encode watch message", "store", topic, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if c.topic != topic {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("devtools: dropping slow watch client", "store", topic)
		h.mu.Lock()
		delete(h.clients, c)
		h.dropped++
		h.mu.Unlock()
		c.close()
	}
}

// ClientCount returns the number of connected watch clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many clients were dropped for falling behind.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close disconnects every client and stops watching stores.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	for name, unsub := range h.watched {
		unsub()
		delete(h.watched, name)
	}
}
