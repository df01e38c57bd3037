package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Topics a display can subscribe to. Event types are routed by prefix:
// "order.*" goes to TopicOrders, "menu.*" to TopicMenu.
const (
	TopicOrders = "orders"
	TopicMenu   = "menu"
)

// AllTopics is used when a client does not ask for specific topics.
var AllTopics = []string{TopicOrders, TopicMenu}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type topicEvent struct {
	topic   string
	message []byte
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by topic
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *topicEvent

	log logrus.FieldLogger
	mu  sync.RWMutex
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *topicEvent, 256),
		log:        log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// Remaining clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			for _, topic := range client.topics {
				if h.rooms[topic] == nil {
					h.rooms[topic] = make(map[*Client]bool)
				}
				h.rooms[topic][client] = true
			}
			h.mu.Unlock()
			h.log.WithField("topics", client.topics).Debug("display connected")

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[event.topic] {
				select {
				case client.send <- event.message:
				default:
					h.log.WithField("topic", event.topic).Warn("display send buffer full, disconnecting")
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked drops client from every room it joined and closes its send
// channel exactly once.
func (h *Hub) removeLocked(client *Client) {
	found := false
	for _, topic := range client.topics {
		clients, ok := h.rooms[topic]
		if !ok {
			continue
		}
		if _, exists := clients[client]; exists {
			delete(clients, client)
			found = true
		}
		if len(clients) == 0 {
			delete(h.rooms, topic)
		}
	}
	if found {
		close(client.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[*Client]bool)
	for _, clients := range h.rooms {
		for client := range clients {
			seen[client] = true
		}
	}
	for client := range seen {
		h.removeLocked(client)
	}
}

// Publish broadcasts an event to the displays subscribed to its topic.
// It never blocks: if the broadcast queue is full the event is dropped.
func (h *Hub) Publish(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Error("failed to encode event payload")
		return
	}
	message, err := json.Marshal(Event{Type: eventType, Payload: data})
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Error("failed to encode event")
		return
	}

	select {
	case h.broadcast <- &topicEvent{topic: TopicFor(eventType), message: message}:
	default:
		h.log.WithField("event", eventType).Warn("broadcast queue full, event dropped")
	}
}

// ClientCount returns the number of distinct connected displays.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[*Client]bool)
	for _, clients := range h.rooms {
		for client := range clients {
			seen[client] = true
		}
	}
	return len(seen)
}

// TopicFor maps an event type to the topic it is delivered on.
func TopicFor(eventType string) string {
	if strings.HasPrefix(eventType, "menu.") {
		return TopicMenu
	}
	return TopicOrders
}

// ParseTopics parses a comma-separated topic list. Unknown names are
// ignored; an empty result falls back to AllTopics.
func ParseTopics(raw string) []string {
	var topics []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		t := strings.ToLower(strings.TrimSpace(part))
		if (t == TopicOrders || t == TopicMenu) && !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return AllTopics
	}
	return topics
}
