package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"livepoll/internal/domain/poll"
	"livepoll/pkg/logger"

	"github.com/google/uuid"
)

// subscriptionRequest represents a poll topic subscription/unsubscription request
type subscriptionRequest struct {
	client    *Client
	topic     string
	subscribe bool // true = subscribe, false = unsubscribe
}

// Hub manages viewer connections and per-poll subscriber groups. It is the
// single-node broadcaster: every admitted vote is fanned out to the
// members of that poll's topic as observed at publish time.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// topics maps poll topic to set of clients subscribed to it
	topics map[string]map[*Client]struct{}

	// Control channels
	register     chan *Client
	unregister   chan *Client
	subscription chan subscriptionRequest

	log *logger.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		topics:       make(map[string]map[*Client]struct{}),
		register:     make(chan *Client, 256),
		unregister:   make(chan *Client, 256),
		subscription: make(chan subscriptionRequest, 512),
		log:          log,
	}
}

// PollTopic returns the topic name for a poll's viewer group
func PollTopic(pollID uuid.UUID) string {
	return "poll:" + pollID.String()
}

// OptionTally is one option's snapshot inside a pollUpdated event
type OptionTally struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

// PollUpdatedEvent is pushed to every subscriber of a poll when its tallies change
type PollUpdatedEvent struct {
	Type    string        `json:"type"`
	PollID  string        `json:"pollId"`
	Options []OptionTally `json:"options"`
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.subscription:
			if req.subscribe {
				h.subscribeToTopic(req.client, req.topic)
			} else {
				h.unsubscribeFromTopic(req.client, req.topic)
			}
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to a poll topic; idempotent
func (h *Hub) Subscribe(client *Client, topic string) {
	h.subscription <- subscriptionRequest{
		client:    client,
		topic:     topic,
		subscribe: true,
	}
}

// Unsubscribe unsubscribes a client from a poll topic; idempotent, never errors
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.subscription <- subscriptionRequest{
		client:    client,
		topic:     topic,
		subscribe: false,
	}
}

// PublishPollUpdate delivers the tally snapshot to every subscriber of the
// poll, best-effort. Implements the broadcaster capability the admission
// controller is constructed with.
func (h *Hub) PublishPollUpdate(pollID uuid.UUID, options []poll.Option) {
	event := PollUpdatedEvent{
		Type:   "pollUpdated",
		PollID: pollID.String(),
	}
	for _, o := range options {
		event.Options = append(event.Options, OptionTally{
			ID:    o.ID.String(),
			Text:  o.Text,
			Votes: o.Votes,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		if h.log != nil {
			h.log.Errorf("pollUpdated marshal failed for %s: %s", pollID, err)
		}
		return
	}

	h.Broadcast(PollTopic(pollID), payload)
}

// Broadcast sends a message to all clients subscribed to a topic. A slow
// or dead connection drops the message without blocking the others.
func (h *Hub) Broadcast(topic string, payload []byte) {
	h.mu.RLock()
	clients := h.topics[topic]
	for c := range clients {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetTopicSubscriberCount returns the number of subscribers for a poll topic
func (h *Hub) GetTopicSubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// addClient adds a new client to the hub (internal)
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

// removeClient removes a client and all its subscriptions (internal)
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	// Remove client from all topics
	for topic := range client.topics {
		if subscribers, ok := h.topics[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.topics, topic)
			}
		}
	}

	// Remove client from clients map
	delete(h.clients, client.ID)

	// Close send channel
	close(client.Send)
}

// subscribeToTopic subscribes a client to a poll topic (internal)
func (h *Hub) subscribeToTopic(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*Client]struct{})
	}

	h.topics[topic][client] = struct{}{}

	client.Subscribe(topic)
}

// unsubscribeFromTopic unsubscribes a client from a poll topic (internal)
func (h *Hub) unsubscribeFromTopic(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.topics[topic]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.topics, topic)
		}
	}

	client.Unsubscribe(topic)
}
