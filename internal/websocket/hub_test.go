package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"livepoll/internal/domain/poll"
	"livepoll/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(&logger.Logger{Logger: zap.NewNop()})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// waitFor polls until the condition holds or the deadline passes. The hub
// processes registrations and subscriptions asynchronously, so tests must
// wait for them to take effect before publishing.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestHubRoutesToSubscribersOnly(t *testing.T) {
	hub := newTestHub(t)

	pollA := uuid.New()
	pollB := uuid.New()

	sub1 := NewClient(nil)
	sub2 := NewClient(nil)
	other := NewClient(nil)

	hub.Register(sub1)
	hub.Register(sub2)
	hub.Register(other)
	waitFor(t, "registrations", func() bool { return hub.GetClientCount() == 3 })

	hub.Subscribe(sub1, PollTopic(pollA))
	hub.Subscribe(sub2, PollTopic(pollA))
	hub.Subscribe(other, PollTopic(pollB))
	waitFor(t, "subscriptions", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollA)) == 2 &&
			hub.GetTopicSubscriberCount(PollTopic(pollB)) == 1
	})

	options := []poll.Option{
		{ID: uuid.New(), PollID: pollA, Text: "Tea", Votes: 1},
		{ID: uuid.New(), PollID: pollA, Text: "Coffee", Votes: 2},
	}
	hub.PublishPollUpdate(pollA, options)

	for i, sub := range []*Client{sub1, sub2} {
		select {
		case payload := <-sub.Send:
			var event PollUpdatedEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				t.Fatalf("Subscriber %d got invalid JSON: %v", i, err)
			}
			if event.Type != "pollUpdated" {
				t.Errorf("Expected type pollUpdated, got %q", event.Type)
			}
			if event.PollID != pollA.String() {
				t.Errorf("Expected poll %s, got %s", pollA, event.PollID)
			}
			if len(event.Options) != 2 || event.Options[1].Votes != 2 {
				t.Errorf("Tallies not carried: %+v", event.Options)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Subscriber %d never received the update", i)
		}
	}

	select {
	case payload := <-other.Send:
		t.Errorf("Subscriber of another poll received %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubSubscribeIdempotent(t *testing.T) {
	hub := newTestHub(t)
	pollID := uuid.New()

	client := NewClient(nil)
	hub.Register(client)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	hub.Subscribe(client, PollTopic(pollID))
	hub.Subscribe(client, PollTopic(pollID))
	waitFor(t, "subscription", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollID)) == 1
	})
	if !client.IsSubscribed(PollTopic(pollID)) {
		t.Error("Client should report itself subscribed")
	}

	hub.PublishPollUpdate(pollID, []poll.Option{{ID: uuid.New(), Text: "Tea", Votes: 1}})

	select {
	case <-client.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscriber never received the update")
	}
	select {
	case <-client.Send:
		t.Error("Double subscription delivered the update twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := newTestHub(t)
	pollID := uuid.New()

	client := NewClient(nil)
	hub.Register(client)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	hub.Subscribe(client, PollTopic(pollID))
	waitFor(t, "subscription", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollID)) == 1
	})

	hub.Unsubscribe(client, PollTopic(pollID))
	waitFor(t, "unsubscription", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollID)) == 0
	})
	if client.IsSubscribed(PollTopic(pollID)) {
		t.Error("Client should report itself unsubscribed")
	}

	hub.PublishPollUpdate(pollID, []poll.Option{{ID: uuid.New(), Text: "Tea", Votes: 1}})

	select {
	case <-client.Send:
		t.Error("Unsubscribed client received the update")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubUnregisterCleansUpSubscriptions(t *testing.T) {
	hub := newTestHub(t)
	pollID := uuid.New()

	client := NewClient(nil)
	hub.Register(client)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	hub.Subscribe(client, PollTopic(pollID))
	waitFor(t, "subscription", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollID)) == 1
	})

	hub.Unregister(client)
	waitFor(t, "unregistration", func() bool {
		return hub.GetClientCount() == 0 && hub.GetTopicSubscriberCount(PollTopic(pollID)) == 0
	})
}

// TestIdleViewerStaysConnected: a viewer who joins a poll and then only
// watches must outlive the read deadline. The pong replies to the server's
// pings (gorilla's default ping handler, same as a browser) extend it.
func TestIdleViewerStaysConnected(t *testing.T) {
	origPong, origPing := pongWait, pingPeriod
	pongWait, pingPeriod = 300*time.Millisecond, 100*time.Millisecond
	t.Cleanup(func() { pongWait, pingPeriod = origPong, origPing })

	gin.SetMode(gin.TestMode)
	hub := newTestHub(t)
	handler := NewHandler(hub)

	engine := gin.New()
	engine.GET("/ws", handler.Connect)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	pollID := uuid.New()
	join := fmt.Sprintf(`{"type":"joinPoll","pollId":%q}`, pollID.String())
	if err := conn.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	waitFor(t, "subscription", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollID)) == 1
	})

	// Publish only after several deadline windows have passed; a server
	// that drops idle viewers fails the read below with a close error
	go func() {
		time.Sleep(4 * pongWait)
		hub.PublishPollUpdate(pollID, []poll.Option{
			{ID: uuid.New(), PollID: pollID, Text: "Tea", Votes: 1},
		})
	}()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Idle viewer dropped: %v", err)
	}

	var event PollUpdatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("Invalid payload: %v", err)
	}
	if event.Type != "pollUpdated" || event.PollID != pollID.String() {
		t.Errorf("Unexpected event: %+v", event)
	}
}

// TestConnectJoinPoll exercises the full wire path: real upgrade, joinPoll
// message, publish, pollUpdated frame back on the socket
func TestConnectJoinPoll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := newTestHub(t)
	handler := NewHandler(hub)

	engine := gin.New()
	engine.GET("/ws", handler.Connect)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	pollID := uuid.New()
	join := fmt.Sprintf(`{"type":"joinPoll","pollId":%q}`, pollID.String())
	if err := conn.WriteMessage(websocket.TextMessage, []byte(join)); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	waitFor(t, "subscription via wire", func() bool {
		return hub.GetTopicSubscriberCount(PollTopic(pollID)) == 1
	})

	hub.PublishPollUpdate(pollID, []poll.Option{
		{ID: uuid.New(), PollID: pollID, Text: "Tea", Votes: 3},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var event PollUpdatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("Invalid pollUpdated payload: %v", err)
	}
	if event.Type != "pollUpdated" || event.PollID != pollID.String() {
		t.Errorf("Unexpected event: %+v", event)
	}
	if len(event.Options) != 1 || event.Options[0].Votes != 3 {
		t.Errorf("Tally not carried: %+v", event.Options)
	}
}
