package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	trips map[uint][]models.Trip
	err   error
}

func (s *fakeStore) ActiveTripsByBidder(_ context.Context, providerID uint) ([]models.Trip, error) {
	return s.trips[providerID], s.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	events map[uint][]map[string]interface{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(map[uint][]map[string]interface{})}
}

func (n *fakeNotifier) PushToUser(userID uint, _ string, payload interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[userID] = append(n.events[userID], payload.(map[string]interface{}))
	return nil
}

func activeTrip(id, consumerID uint) models.Trip {
	trip := models.Trip{ConsumerID: consumerID, Status: models.TripStatusInProgress, BiddingStatus: models.BiddingAccepted}
	trip.ID = id
	return trip
}

func publishPayload(t *testing.T, providerID uint, lat, lng, heading float64) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"providerId": providerID,
		"location":   map[string]float64{"lat": lat, "lng": lng, "heading": heading},
		"timestamp":  time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func TestHandleRelaysToActiveConsumers(t *testing.T) {
	store := &fakeStore{trips: map[uint][]models.Trip{
		7: {activeTrip(10, 1), activeTrip(11, 2)},
	}}
	notifier := newFakeNotifier()
	relay := &Relay{Store: store, Notifier: notifier}

	if err := relay.Handle(context.Background(), publishPayload(t, 7, 12.97, 77.59, 45)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	for _, consumerID := range []uint{1, 2} {
		events := notifier.events[consumerID]
		if len(events) != 1 {
			t.Fatalf("consumer %d got %d events, want 1", consumerID, len(events))
		}
		if events[0]["providerId"] != uint(7) || events[0]["lat"] != 12.97 {
			t.Errorf("consumer %d event = %v", consumerID, events[0])
		}
	}
}

func TestHandleIdleProviderIsNoOp(t *testing.T) {
	notifier := newFakeNotifier()
	relay := &Relay{Store: &fakeStore{}, Notifier: notifier}

	if err := relay.Handle(context.Background(), publishPayload(t, 7, 12.97, 77.59, 0)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("events = %v, want none", notifier.events)
	}
}

func TestHandleRejectsBadPayloads(t *testing.T) {
	relay := &Relay{Store: &fakeStore{}, Notifier: newFakeNotifier()}

	if err := relay.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Error("malformed payload accepted")
	}
	if err := relay.Handle(context.Background(), []byte(`{"location":{"lat":1,"lng":2}}`)); err == nil {
		t.Error("payload without provider id accepted")
	}
}

func TestHandleStoreErrorPropagates(t *testing.T) {
	relay := &Relay{Store: &fakeStore{err: fmt.Errorf("db down")}, Notifier: newFakeNotifier()}
	if err := relay.Handle(context.Background(), publishPayload(t, 7, 1, 2, 0)); err == nil {
		t.Error("store error swallowed")
	}
}

func TestRunDrainsSubscriptionChannel(t *testing.T) {
	store := &fakeStore{trips: map[uint][]models.Trip{7: {activeTrip(10, 1)}}}
	notifier := newFakeNotifier()
	relay := &Relay{Store: store, Notifier: notifier}

	msgs := make(chan *redis.Message, 2)
	msgs <- &redis.Message{Payload: string(publishPayload(t, 7, 12.97, 77.59, 0))}
	msgs <- &redis.Message{Payload: "not json"} // logged, must not stop the loop
	close(msgs)

	done := make(chan struct{})
	go func() {
		relay.Run(context.Background(), msgs)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}

	if len(notifier.events[1]) != 1 {
		t.Fatalf("consumer events = %v, want one relayed update", notifier.events)
	}
}
