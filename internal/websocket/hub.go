package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is one connected WebSocket subscriber. A user may hold
// several clients at once (multiple tabs); each gets its own buffered
// Send channel.
type Client struct {
	ID    uuid.UUID
	Email string
	Conn  *websocket.Conn
	Send  chan Event
	Done  chan struct{}

	closeOnce sync.Once
}

// Close tears the client down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Done)
		if c.Conn != nil {
			c.Conn.Close()
		}
	})
}

// IsConnected reports whether the client has been closed.
func (c *Client) IsConnected() bool {
	select {
	case <-c.Done:
		return false
	default:
		return true
	}
}

// Hub tracks live subscribers per meeting topic and per user queue and
// fans events out to them. Events pushed by one service call land in
// each subscriber's channel in issue order; no ordering is promised
// across concurrent calls.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[uuid.UUID]*Client
	users  map[string]map[uuid.UUID]*Client

	// reverse index so Unregister can drop a client from every topic
	subscriptions map[uuid.UUID]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		topics:        make(map[string]map[uuid.UUID]*Client),
		users:         make(map[string]map[uuid.UUID]*Client),
		subscriptions: make(map[uuid.UUID]map[string]struct{}),
	}
}

// Register attaches a client to its user queue.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[client.Email] == nil {
		h.users[client.Email] = make(map[uuid.UUID]*Client)
	}
	h.users[client.Email][client.ID] = client
	h.subscriptions[client.ID] = make(map[string]struct{})
}

// Unregister removes a client from its user queue and every topic it
// subscribed to, then closes it.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	if clients, ok := h.users[client.Email]; ok {
		delete(clients, client.ID)
		if len(clients) == 0 {
			delete(h.users, client.Email)
		}
	}

	for topic := range h.subscriptions[client.ID] {
		if clients, ok := h.topics[topic]; ok {
			delete(clients, client.ID)
			if len(clients) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	delete(h.subscriptions, client.ID)

	h.mu.Unlock()

	client.Close()
}

// Subscribe adds the client to a meeting topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[uuid.UUID]*Client)
	}
	h.topics[topic][client.ID] = client

	if subs, ok := h.subscriptions[client.ID]; ok {
		subs[topic] = struct{}{}
	}
}

// Unsubscribe removes the client from a meeting topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topics[topic]; ok {
		delete(clients, client.ID)
		if len(clients) == 0 {
			delete(h.topics, topic)
		}
	}
	if subs, ok := h.subscriptions[client.ID]; ok {
		delete(subs, topic)
	}
}

// Broadcast delivers an event to every subscriber of a topic. A
// subscriber whose buffer is full is skipped; delivery is best-effort.
func (h *Hub) Broadcast(topic string, event Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.topics[topic]))
	for _, c := range h.topics[topic] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.send(c, topic, event)
	}
}

// Notify delivers an event to every live connection of a single user.
func (h *Hub) Notify(userEmail string, event Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.users[userEmail]))
	for _, c := range h.users[userEmail] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.send(c, "user/"+userEmail, event)
	}
}

func (h *Hub) send(c *Client, channel string, event Event) {
	select {
	case c.Send <- event:
	default:
		log.Warn().
			Str("channel", channel).
			Str("client_id", c.ID.String()).
			Msg("subscriber buffer full, event dropped")
	}
}
