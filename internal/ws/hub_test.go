package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agora-shop/api/internal/auth"
)

func newTestClient(hub *Hub, buffer int) *Client {
	return &Client{hub: hub, send: make(chan []byte, buffer)}
}

func waitForMessage(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := newTestClient(hub, 8)
	c2 := newTestClient(hub, 8)
	hub.register <- c1
	hub.register <- c2

	event, err := NewEvent("order.created", map[string]string{"orderUid": "ABCDEFGHJK"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	hub.Broadcast(event)

	for _, c := range []*Client{c1, c2} {
		msg := waitForMessage(t, c)

		var got Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if got.Type != "order.created" {
			t.Errorf("event type: got %s, want order.created", got.Type)
		}

		var payload map[string]string
		if err := json.Unmarshal(got.Payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload["orderUid"] != "ABCDEFGHJK" {
			t.Errorf("payload: got %+v", payload)
		}
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub, 8)
	hub.register <- c
	hub.unregister <- c

	// The hub closes the send channel on unregister.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestHubEvictsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := newTestClient(hub, 1)
	hub.register <- slow

	event, _ := NewEvent("order.updated", map[string]string{"orderUid": "AAAAAAAAAA"})
	// First fills the buffer, second finds it full and evicts.
	hub.Broadcast(event)
	hub.Broadcast(event)

	deadline := time.After(time.Second)
	for {
		hub.mu.RLock()
		_, registered := hub.clients[slow]
		hub.mu.RUnlock()
		if !registered {
			return
		}
		select {
		case <-deadline:
			t.Fatal("slow client was not evicted")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestServeWSRejectsUnauthenticated(t *testing.T) {
	hub := NewHub()
	secret := "test-secret"

	viewerToken, _ := auth.GenerateToken(secret, "someone", "viewer")

	cases := []struct {
		name string
		url  string
	}{
		{"missing token", "/ws/orders"},
		{"invalid token", "/ws/orders?token=not-a-jwt"},
		{"wrong role", "/ws/orders?token=" + viewerToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.url, nil)
			rr := httptest.NewRecorder()
			ServeWS(hub, secret, rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}
