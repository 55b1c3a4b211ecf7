package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// clientMessage is what viewers send over the socket
type clientMessage struct {
	Type   string `json:"type"`
	PollID string `json:"pollId"`
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Connect upgrades the connection and serves the join/leave protocol. Any
// connection may join any poll's topic; the channel is read-only fan-out,
// votes only travel over HTTP.
func (h *Handler) Connect(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	// Passive viewers never send data; the write loop's pings and these
	// pongs are what keep their read deadline alive.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		pollID, err := uuid.Parse(msg.PollID)
		if err != nil {
			continue
		}

		switch msg.Type {
		case "joinPoll":
			if topic := PollTopic(pollID); !client.IsSubscribed(topic) {
				h.hub.Subscribe(client, topic)
			}
		case "leavePoll":
			h.hub.Unsubscribe(client, PollTopic(pollID))
		}
	}

	h.hub.Unregister(client)
}
