// Package tracking relays provider position updates to the consumers
// watching them. Providers publish through Redis pub/sub; the relay
// resolves each update to the provider's active trips and forwards a
// locationUpdate event to every affected consumer's channel.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store resolves a provider to the trips they are actively serving.
type Store interface {
	ActiveTripsByBidder(ctx context.Context, providerID uint) ([]models.Trip, error)
}

// Notifier pushes a typed event to a user's channel, best effort.
type Notifier interface {
	PushToUser(userID uint, event string, payload interface{}) error
}

// update mirrors the payload shape published on the location channel.
type update struct {
	ProviderID uint `json:"providerId"`
	Location   struct {
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
		Heading float64 `json:"heading"`
	} `json:"location"`
	Timestamp int64 `json:"timestamp"`
}

type Relay struct {
	Store    Store
	Notifier Notifier
}

// Run consumes the subscription channel until it closes or the context
// is cancelled. Individual bad payloads are logged and skipped.
func (r *Relay) Run(ctx context.Context, msgs <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := r.Handle(ctx, []byte(msg.Payload)); err != nil {
				log.Printf("Location relay: %v", err)
			}
		}
	}
}

// Handle forwards one published position update to the consumers of the
// provider's active trips. A provider with no active trip is a no-op.
func (r *Relay) Handle(ctx context.Context, payload []byte) error {
	var u update
	if err := json.Unmarshal(payload, &u); err != nil {
		return fmt.Errorf("decode location update: %w", err)
	}
	if u.ProviderID == 0 {
		return fmt.Errorf("location update without provider id")
	}

	trips, err := r.Store.ActiveTripsByBidder(ctx, u.ProviderID)
	if err != nil {
		return fmt.Errorf("resolve trips for provider %d: %w", u.ProviderID, err)
	}

	for _, trip := range trips {
		event := map[string]interface{}{
			"tripId":     trip.ID,
			"providerId": u.ProviderID,
			"lat":        u.Location.Lat,
			"lng":        u.Location.Lng,
			"heading":    u.Location.Heading,
			"timestamp":  u.Timestamp,
		}
		if err := r.Notifier.PushToUser(trip.ConsumerID, "locationUpdate", event); err != nil {
			log.Printf("Location relay: push to consumer %d failed: %v", trip.ConsumerID, err)
		}
	}
	return nil
}
