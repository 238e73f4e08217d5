package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/dispatch"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// saveNegotiation persists a negotiation transition guarded by the
// bidding status read before the transition was applied. If another
// writer moved the status in between, nothing is written and the caller
// gets a state conflict.
func saveNegotiation(db *gorm.DB, trip *models.Trip, prevBiddingStatus string) error {
	trip.RecomputePriceBands()
	res := db.Model(&models.Trip{}).
		Where("id = ? AND bidding_status = ?", trip.ID, prevBiddingStatus).
		Select("CounterOffers", "Bids", "BidderID", "FinalPrice", "Status", "BiddingStatus").
		Updates(trip)
	if res.Error != nil {
		return apperrors.Internal("Failed to save trip")
	}
	if res.RowsAffected == 0 {
		return apperrors.StateConflict("Trip was modified concurrently, please retry")
	}
	return nil
}

// StartBidding dispatches a trip: geocode the origin, search nearby
// available providers and open the bidding window. Geocoding failure or
// an empty candidate pool leaves the trip untouched.
func StartBidding(d *dispatch.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		result, err := d.Dispatch(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !result.Started {
			c.JSON(200, gin.H{
				"success": false,
				"message": "No providers available near the origin, bidding not started",
			})
			return
		}
		c.JSON(200, gin.H{
			"success":  true,
			"message":  "Bidding started",
			"notified": len(result.Notified),
		})
	}
}

type counterOfferInput struct {
	CounterPrice float64 `json:"counterPrice" binding:"required,gt=0"`
}

// SubmitCounterOffer records a provider's informal price signal. Once the
// provider is pinned as the trip's bidder, further counter prices are
// treated as formal bid revisions.
func SubmitCounterOffer(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input counterOfferInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		if !user.IsServiceProvider() {
			respondError(c, apperrors.InvalidInput("Only service providers can submit counter offers"))
			return
		}
		trip, ok := loadTrip(c, db, id)
		if !ok {
			return
		}

		now := time.Now()
		prev := trip.BiddingStatus
		if trip.BidderID != nil && *trip.BidderID == user.ID {
			if appErr := trip.AddBid(input.CounterPrice, user, user, now); appErr != nil {
				respondError(c, appErr)
				return
			}
		} else if appErr := trip.AddCounterOffer(input.CounterPrice, user, now); appErr != nil {
			respondError(c, appErr)
			return
		}
		if err := saveNegotiation(db, trip, prev); err != nil {
			respondError(c, err)
			return
		}

		if err := hub.PushToUser(trip.ConsumerID, "counterPrice", trip); err != nil {
			log.Printf("Trip %d: counter price push to consumer %d failed: %v", trip.ID, trip.ConsumerID, err)
		}
		c.JSON(200, gin.H{"success": true, "counterPriceList": trip.CounterOffers, "bids": trip.Bids})
	}
}

type bidInput struct {
	Price      float64 `json:"price" binding:"required,gt=0"`
	ProviderID uint    `json:"providerId" binding:"required"`
}

// SubmitBid appends a formal bid. The first bid on a trip promotes the
// named provider's counter offer and pins them as the trip's bidder.
func SubmitBid(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input bidInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		actor, ok := loadUser(c, db)
		if !ok {
			return
		}
		trip, ok := loadTrip(c, db, id)
		if !ok {
			return
		}
		if trip.BidderID != nil && *trip.BidderID != input.ProviderID {
			respondError(c, apperrors.StateConflict("Another provider is already bidding on this trip"))
			return
		}

		var provider models.User
		if err := db.First(&provider, input.ProviderID).Error; err != nil {
			respondError(c, apperrors.NotFound("Provider not found"))
			return
		}
		if !provider.IsServiceProvider() {
			respondError(c, apperrors.InvalidInput("providerId must refer to a service provider"))
			return
		}

		prev := trip.BiddingStatus
		if appErr := trip.AddBid(input.Price, actor, &provider, time.Now()); appErr != nil {
			respondError(c, appErr)
			return
		}
		if err := saveNegotiation(db, trip, prev); err != nil {
			respondError(c, err)
			return
		}

		// Tell the other side of the table about the revision.
		recipient := provider.ID
		if actor.ID == provider.ID {
			recipient = trip.ConsumerID
		}
		if err := hub.PushToUser(recipient, "revisedPrice", trip); err != nil {
			log.Printf("Trip %d: revised price push to user %d failed: %v", trip.ID, recipient, err)
		}
		c.JSON(200, gin.H{"success": true, "bids": trip.Bids})
	}
}

type acceptInput struct {
	ProviderID uint   `json:"providerId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=inProgress completed"`
}

// AcceptBid finalizes the negotiation at the standing offer. Either party
// can accept; the first acceptance wins and later ones see a conflict.
func AcceptBid(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input acceptInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		trip, ok := loadTrip(c, db, id)
		if !ok {
			return
		}
		var provider models.User
		if err := db.First(&provider, input.ProviderID).Error; err != nil {
			respondError(c, apperrors.NotFound("Provider not found"))
			return
		}

		prev := trip.BiddingStatus
		if appErr := trip.Accept(&provider, input.Status, time.Now()); appErr != nil {
			respondError(c, appErr)
			return
		}
		if err := saveNegotiation(db, trip, prev); err != nil {
			respondError(c, err)
			return
		}

		// The winning provider leaves the available pool until they flip
		// themselves back. Best effort, the row may not exist yet.
		if err := db.Model(&models.ProviderLocation{}).
			Where("provider_id = ?", provider.ID).
			Update("available", false).Error; err != nil {
			log.Printf("Trip %d: failed to mark provider %d unavailable: %v", trip.ID, provider.ID, err)
		}
		if err := services.SetProviderAvailability(context.Background(), provider.ID, false); err != nil {
			log.Printf("Trip %d: failed to cache provider %d availability: %v", trip.ID, provider.ID, err)
		}

		for _, recipient := range []uint{provider.ID, trip.ConsumerID} {
			if err := hub.PushToUser(recipient, "bidAccepted", trip); err != nil {
				log.Printf("Trip %d: acceptance push to user %d failed: %v", trip.ID, recipient, err)
			}
		}
		if err := services.PublishTripUpdate(context.Background(), trip.ID, trip.BiddingStatus,
			map[string]interface{}{"finalPrice": trip.FinalPrice}); err != nil {
			log.Printf("Trip %d: failed to publish acceptance: %v", trip.ID, err)
		}

		c.JSON(200, gin.H{"success": true, "finalPrice": trip.FinalPrice, "status": trip.Status})
	}
}

// GetCounterOffers returns the informal counter price list of a trip.
func GetCounterOffers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		trip, ok := loadTrip(c, db, id)
		if !ok {
			return
		}
		c.JSON(200, gin.H{"success": true, "counterPriceList": trip.CounterOffers})
	}
}

// GetBids returns the formal bid history of a trip.
func GetBids(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		trip, ok := loadTrip(c, db, id)
		if !ok {
			return
		}
		c.JSON(200, gin.H{"success": true, "bids": trip.Bids, "bidderId": trip.BidderID})
	}
}
