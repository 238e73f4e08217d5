package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
)

type fakeStore struct {
	mu            sync.Mutex
	trip          *models.Trip
	started       bool
	notifications []models.TripNotification
	tokens        map[uint][]string
}

func (s *fakeStore) TripByID(_ context.Context, id uint) (*models.Trip, error) {
	if s.trip == nil || s.trip.ID != id {
		return nil, apperrors.NotFound("trip not found")
	}
	return s.trip, nil
}

func (s *fakeStore) StartBidding(_ context.Context, trip *models.Trip, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return apperrors.StateConflict("bidding has already started for this trip")
	}
	s.started = true
	trip.BiddingStatus = models.BiddingInProgress
	trip.BiddingStartTime = &now
	return nil
}

func (s *fakeStore) CreateNotification(_ context.Context, n *models.TripNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeStore) PushTokens(_ context.Context, userID uint) ([]string, error) {
	return s.tokens[userID], nil
}

type fakeGeocoder struct {
	lat, lng float64
	err      error
}

func (g fakeGeocoder) Geocode(context.Context, string) (float64, float64, error) {
	return g.lat, g.lng, g.err
}

type fakeFinder struct {
	ids []uint
	err error
}

func (f fakeFinder) FindNearby(context.Context, float64, float64, int) ([]uint, error) {
	return f.ids, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	pushes map[uint][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{pushes: make(map[uint][]string)}
}

func (n *fakeNotifier) PushToUser(userID uint, event string, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes[userID] = append(n.pushes[userID], event)
	return nil
}

func newTrip(biddingStatus string) *models.Trip {
	trip := &models.Trip{ConsumerID: 1, Origin: "560001", BiddingStatus: biddingStatus}
	trip.ID = 10
	return trip
}

func TestDispatchNotifiesAllCandidates(t *testing.T) {
	store := &fakeStore{trip: newTrip(models.BiddingNotStarted)}
	notifier := newFakeNotifier()
	d := &Dispatcher{
		Store:    store,
		Geocoder: fakeGeocoder{lat: 12.97, lng: 77.59},
		Finder:   fakeFinder{ids: []uint{7, 8, 9}},
		Notifier: notifier,
	}

	result, err := d.Dispatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !result.Started {
		t.Fatal("dispatch did not start bidding")
	}
	if len(result.Notified) != 3 {
		t.Fatalf("notified %d candidates, want 3", len(result.Notified))
	}
	if store.trip.BiddingStatus != models.BiddingInProgress || store.trip.BiddingStartTime == nil {
		t.Errorf("trip not moved to inProgress: %s", store.trip.BiddingStatus)
	}
	if len(store.notifications) != 3 {
		t.Errorf("persisted %d notifications, want 3", len(store.notifications))
	}
	for _, id := range []uint{7, 8, 9} {
		if events := notifier.pushes[id]; len(events) != 1 || events[0] != "newTrip" {
			t.Errorf("provider %d pushes = %v", id, events)
		}
	}
}

func TestDispatchGeocodeFailureIsSoft(t *testing.T) {
	store := &fakeStore{trip: newTrip(models.BiddingNotStarted)}
	d := &Dispatcher{
		Store:    store,
		Geocoder: fakeGeocoder{err: fmt.Errorf("upstream timeout")},
		Finder:   fakeFinder{ids: []uint{7}},
		Notifier: newFakeNotifier(),
	}

	result, err := d.Dispatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Started {
		t.Fatal("bidding started despite geocoding failure")
	}
	if store.started {
		t.Error("store transition ran despite geocoding failure")
	}
	if store.trip.BiddingStatus != models.BiddingNotStarted {
		t.Errorf("trip left notStarted: %s", store.trip.BiddingStatus)
	}
}

func TestDispatchEmptyCandidatePool(t *testing.T) {
	store := &fakeStore{trip: newTrip(models.BiddingNotStarted)}
	d := &Dispatcher{
		Store:    store,
		Geocoder: fakeGeocoder{lat: 12.97, lng: 77.59},
		Finder:   fakeFinder{},
		Notifier: newFakeNotifier(),
	}

	result, err := d.Dispatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Started || store.started {
		t.Fatal("bidding started with no candidates")
	}
}

func TestDispatchAlreadyStartedConflicts(t *testing.T) {
	store := &fakeStore{trip: newTrip(models.BiddingInProgress)}
	d := &Dispatcher{
		Store:    store,
		Geocoder: fakeGeocoder{lat: 12.97, lng: 77.59},
		Finder:   fakeFinder{ids: []uint{7}},
		Notifier: newFakeNotifier(),
	}

	_, err := d.Dispatch(context.Background(), 10)
	if !apperrors.Is(err, apperrors.CodeStateConflict) {
		t.Fatalf("err = %v, want state conflict", err)
	}
}

func TestDispatchUnknownTrip(t *testing.T) {
	d := &Dispatcher{
		Store:    &fakeStore{},
		Geocoder: fakeGeocoder{},
		Finder:   fakeFinder{},
		Notifier: newFakeNotifier(),
	}
	_, err := d.Dispatch(context.Background(), 99)
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDispatchOfflinePushFanout(t *testing.T) {
	store := &fakeStore{
		trip:   newTrip(models.BiddingNotStarted),
		tokens: map[uint][]string{7: {"tok-a", "tok-b"}},
	}
	var mu sync.Mutex
	var pushed []string
	d := &Dispatcher{
		Store:    store,
		Geocoder: fakeGeocoder{lat: 12.97, lng: 77.59},
		Finder:   fakeFinder{ids: []uint{7}},
		Notifier: newFakeNotifier(),
		Pusher: func(_ context.Context, tokens []string, _, _ string, _ map[string]string) {
			mu.Lock()
			defer mu.Unlock()
			pushed = append(pushed, tokens...)
		},
	}

	if _, err := d.Dispatch(context.Background(), 10); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(pushed) != 2 {
		t.Fatalf("offline pushes = %v, want both tokens", pushed)
	}
}
