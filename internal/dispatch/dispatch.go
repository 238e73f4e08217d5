// Package dispatch orchestrates the fan-out step of the bidding flow:
// geocode the trip origin, find nearby available providers through the
// cell index, open the bidding window, and notify every candidate both
// durably (trip notification rows) and in real time (websocket push).
package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
)

// Geocoder resolves a free-text location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// Finder returns up to targetCount distinct nearby provider ids.
type Finder interface {
	FindNearby(ctx context.Context, lat, lng float64, targetCount int) ([]uint, error)
}

// Notifier pushes a real-time event to a user's channel, best effort.
type Notifier interface {
	PushToUser(userID uint, event string, payload interface{}) error
}

// Store is the persistence surface the dispatcher needs.
type Store interface {
	TripByID(ctx context.Context, id uint) (*models.Trip, error)
	// StartBidding transitions the trip from notStarted to inProgress,
	// guarded so a concurrent dispatch cannot start it twice.
	StartBidding(ctx context.Context, trip *models.Trip, now time.Time) error
	CreateNotification(ctx context.Context, n *models.TripNotification) error
	// PushTokens returns the FCM tokens registered for a user.
	PushTokens(ctx context.Context, userID uint) ([]string, error)
}

// Pusher fans an offline push notification out to a user's device
// tokens, best effort.
type Pusher func(ctx context.Context, tokens []string, title, body string, data map[string]string)

// Result reports the outcome of one dispatch attempt.
type Result struct {
	Started  bool
	Notified []uint
}

type Dispatcher struct {
	Store       Store
	Geocoder    Geocoder
	Finder      Finder
	Notifier    Notifier
	Pusher      Pusher // optional offline fallback
	TargetCount int
}

// Dispatch starts bidding on a trip. Geocoding failure and an empty
// candidate pool are soft outcomes: the trip stays in notStarted and the
// caller gets Started=false, not an error. A trip whose bidding already
// left notStarted is a state conflict.
func (d *Dispatcher) Dispatch(ctx context.Context, tripID uint) (Result, error) {
	trip, err := d.Store.TripByID(ctx, tripID)
	if err != nil {
		return Result{}, err
	}
	if trip.BiddingStatus != models.BiddingNotStarted {
		return Result{}, apperrors.StateConflict("bidding has already started for this trip")
	}

	lat, lng, err := d.Geocoder.Geocode(ctx, trip.Origin)
	if err != nil {
		log.Printf("Dispatch trip %d: geocoding %q failed: %v", trip.ID, trip.Origin, err)
		return Result{Started: false}, nil
	}

	target := d.TargetCount
	if target <= 0 {
		target = 5
	}
	candidates, err := d.Finder.FindNearby(ctx, lat, lng, target)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{Started: false}, nil
	}

	if err := d.Store.StartBidding(ctx, trip, time.Now()); err != nil {
		return Result{}, err
	}

	var wg sync.WaitGroup
	for _, candidate := range candidates {
		wg.Add(1)
		go func(recipient uint) {
			defer wg.Done()
			d.notify(ctx, trip, recipient)
		}(candidate)
	}
	wg.Wait()

	return Result{Started: true, Notified: candidates}, nil
}

// notify persists the fan-out record and pushes the realtime event. The
// notification row is the durable fallback, so its failure is logged
// loudly; a missing live channel is normal.
func (d *Dispatcher) notify(ctx context.Context, trip *models.Trip, recipient uint) {
	n := &models.TripNotification{TripID: trip.ID, RecipientID: recipient}
	if err := d.Store.CreateNotification(ctx, n); err != nil {
		log.Printf("Dispatch trip %d: notification for provider %d failed: %v", trip.ID, recipient, err)
	}

	if err := d.Notifier.PushToUser(recipient, "newTrip", trip); err != nil {
		log.Printf("Dispatch trip %d: push to provider %d failed: %v", trip.ID, recipient, err)
	}

	if d.Pusher == nil {
		return
	}
	tokens, err := d.Store.PushTokens(ctx, recipient)
	if err != nil {
		log.Printf("Dispatch trip %d: push tokens for provider %d: %v", trip.ID, recipient, err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	d.Pusher(ctx, tokens, "New trip available",
		"A shipment near you is open for bidding", map[string]string{"event": "newTrip"})
}
