package services

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetConnectedClients() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("connected clients = %d, want %d", hub.GetConnectedClients(), want)
}

func TestHubPushToUserTargetsOneClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := &Client{ID: 1, UserType: "owner", Send: make(chan []byte, 1), Hub: hub}
	bob := &Client{ID: 2, UserType: "consumer", Send: make(chan []byte, 1), Hub: hub}
	hub.register <- alice
	hub.register <- bob
	waitForClients(t, hub, 2)

	if err := hub.PushToUser(1, "newTrip", map[string]uint{"tripId": 9}); err != nil {
		t.Fatalf("PushToUser: %v", err)
	}

	select {
	case raw := <-alice.Send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("unmarshal pushed event: %v", err)
		}
		if event.Type != "newTrip" {
			t.Errorf("event type = %q, want newTrip", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("targeted client never received the event")
	}

	select {
	case <-bob.Send:
		t.Fatal("event leaked to a different user")
	default:
	}

	hub.unregister <- alice
	hub.unregister <- bob
	waitForClients(t, hub, 0)
}
