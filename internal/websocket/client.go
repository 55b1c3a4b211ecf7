package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Keepalive timing. The write loop pings every pingPeriod and the read
// side extends its deadline on every pong, so pingPeriod must stay below
// pongWait or idle viewers get dropped mid-watch.
var (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Client represents one anonymous viewer connection
type Client struct {
	ID     string          // Unique client ID
	Conn   *websocket.Conn // WebSocket connection
	Send   chan []byte     // Outbound message channel
	topics map[string]bool // Subscribed poll topics
	mu     sync.RWMutex    // Protects topics map and conn writes
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Conn:   conn,
		Send:   make(chan []byte, 256),
		topics: make(map[string]bool),
	}
}

// Subscribe adds a topic to the client's subscriptions (internal use only)
func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = true
	c.mu.Unlock()
}

// Unsubscribe removes a topic from the client's subscriptions (internal use only)
func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

// IsSubscribed checks if client is subscribed to a topic
func (c *Client) IsSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

// WriteLoop handles outbound messages from the Send channel
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
		}
	}
}

// close closes the WebSocket connection
func (c *Client) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage sends a message to the client's Send channel (non-blocking)
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		// Channel full, message dropped
	}
}
