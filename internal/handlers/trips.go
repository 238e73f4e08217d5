package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

type createTripInput struct {
	Origin             string    `json:"origin" binding:"required"`
	Destination        string    `json:"destination" binding:"required"`
	TripDate           time.Time `json:"tripDate" binding:"required"`
	CargoType          string    `json:"cargoType" binding:"required"`
	QuotePrice         float64   `json:"quotePrice" binding:"required,gt=0"`
	PayloadWeight      float64   `json:"payloadWeight"`
	PayloadHeight      float64   `json:"payloadHeight"`
	PayloadLength      float64   `json:"payloadLength"`
	PayloadWidth       float64   `json:"payloadWidth"`
	SpecialInstruction string    `json:"specialInstruction"`
}

// CreateTrip creates a trip in the created state. Bidding does not start
// until the consumer explicitly dispatches it.
func CreateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createTripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		trip := models.Trip{
			ConsumerID:  currentUserID(c),
			Origin:      input.Origin,
			Destination: input.Destination,
			TripDate:    input.TripDate,
			Cargo: models.CargoDetails{
				CargoType:     input.CargoType,
				QuotePrice:    input.QuotePrice,
				PayloadWeight: input.PayloadWeight,
				PayloadHeight: input.PayloadHeight,
				PayloadLength: input.PayloadLength,
				PayloadWidth:  input.PayloadWidth,
			},
			SpecialInstruction: input.SpecialInstruction,
			Status:             models.TripStatusCreated,
			BiddingStatus:      models.BiddingNotStarted,
		}
		if err := db.Create(&trip).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create trip"})
			return
		}
		c.JSON(201, gin.H{"success": true, "trip": trip})
	}
}

type updateTripInput struct {
	Origin             string     `json:"origin"`
	Destination        string     `json:"destination"`
	TripDate           *time.Time `json:"tripDate"`
	QuotePrice         float64    `json:"quotePrice"`
	SpecialInstruction string     `json:"specialInstruction"`
}

// UpdateTrip edits trip details. Only allowed before bidding opens so a
// quoted load cannot change under active negotiation.
func UpdateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input updateTripInput
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
		if trip.ConsumerID != currentUserID(c) {
			respondError(c, apperrors.InvalidInput("Only the trip's consumer can edit it"))
			return
		}
		if trip.BiddingStatus != models.BiddingNotStarted {
			respondError(c, apperrors.StateConflict("Trip cannot be edited once bidding has started"))
			return
		}

		if input.Origin != "" {
			trip.Origin = input.Origin
		}
		if input.Destination != "" {
			trip.Destination = input.Destination
		}
		if input.TripDate != nil {
			trip.TripDate = *input.TripDate
		}
		if input.QuotePrice > 0 {
			trip.Cargo.QuotePrice = input.QuotePrice
		}
		if input.SpecialInstruction != "" {
			trip.SpecialInstruction = input.SpecialInstruction
		}
		if err := db.Save(trip).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update trip"})
			return
		}
		c.JSON(200, gin.H{"success": true, "trip": trip})
	}
}

// GetTripDetails returns a single trip with its consumer preloaded.
func GetTripDetails(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		var trip models.Trip
		if err := db.Preload("Consumer").First(&trip, id).Error; err != nil {
			respondError(c, apperrors.NotFound("Trip not found"))
			return
		}
		c.JSON(200, gin.H{"success": true, "trip": trip})
	}
}

// GetConsumerTrips lists the authenticated consumer's trips, newest first.
func GetConsumerTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trips []models.Trip
		if err := db.Where("consumer_id = ?", currentUserID(c)).
			Order("created_at DESC").Find(&trips).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch trips"})
			return
		}
		c.JSON(200, gin.H{"success": true, "trips": trips})
	}
}

// GetOpenTrips lists trips the authenticated provider was notified about
// that are still inside their bidding window.
func GetOpenTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		if !user.IsServiceProvider() {
			respondError(c, apperrors.InvalidInput("Only service providers can view open trips"))
			return
		}

		// A provider already committed to a won trip is out of the
		// market until that trip finishes.
		var awarded int64
		err := db.Model(&models.Trip{}).
			Where("bidder_id = ? AND bidding_status = ?", user.ID, models.BiddingAccepted).
			Where("status NOT IN ?", []string{models.TripStatusCompleted, models.TripStatusCancelled}).
			Count(&awarded).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch open trips"})
			return
		}
		if awarded > 0 {
			c.JSON(200, gin.H{
				"success": true,
				"trips":   []models.Trip{},
				"message": "You have an accepted bid in progress",
			})
			return
		}

		cutoff := time.Now().Add(-models.BiddingWindow)
		var trips []models.Trip
		err = db.Joins("JOIN trip_notifications ON trip_notifications.trip_id = trips.id").
			Where("trip_notifications.recipient_id = ?", user.ID).
			Where("trips.bidding_status = ?", models.BiddingInProgress).
			Where("trips.bidding_start_time > ?", cutoff).
			Order("trips.bidding_start_time DESC").
			Find(&trips).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch open trips"})
			return
		}
		c.JSON(200, gin.H{"success": true, "trips": trips})
	}
}

// GetAwardedTrips lists trips whose negotiation the authenticated
// provider won.
func GetAwardedTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var trips []models.Trip
		if err := db.Where("bidder_id = ? AND bidding_status = ?", currentUserID(c), models.BiddingAccepted).
			Order("updated_at DESC").Find(&trips).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch awarded trips"})
			return
		}
		c.JSON(200, gin.H{"success": true, "trips": trips})
	}
}

type updateTripStatusInput struct {
	Status string `json:"status" binding:"required,oneof=inProgress completed cancelled"`
}

// UpdateTripStatus moves a trip between lifecycle states. Terminal trips
// reject further changes; cancelling a trip mid-negotiation also rejects
// the bidding.
func UpdateTripStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input updateTripStatusInput
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
		if trip.Status == models.TripStatusCompleted || trip.Status == models.TripStatusCancelled {
			respondError(c, apperrors.StateConflict("Trip is already in a terminal state"))
			return
		}

		updates := map[string]interface{}{"status": input.Status}
		if input.Status == models.TripStatusCancelled && !trip.BiddingTerminal() {
			updates["bidding_status"] = models.BiddingRejected
		}
		if err := db.Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update trip status"})
			return
		}

		if err := services.PublishTripUpdate(context.Background(), trip.ID, trip.BiddingStatus,
			map[string]interface{}{"status": input.Status}); err != nil {
			log.Printf("Failed to publish trip %d status update: %v", trip.ID, err)
		}
		c.JSON(200, gin.H{"success": true, "status": input.Status})
	}
}

// DistanceProvider resolves driving distance between two free-text places.
type DistanceProvider interface {
	TravelDistance(ctx context.Context, from, to string) (string, error)
}

// GetDistance returns the driving distance between two locations.
func GetDistance(provider DistanceProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := c.Query("from")
		to := c.Query("to")
		if from == "" || to == "" {
			respondError(c, apperrors.InvalidInput("from and to query parameters are required"))
			return
		}
		distance, err := provider.TravelDistance(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, apperrors.UpstreamUnavailable("Failed to compute distance"))
			return
		}
		c.JSON(200, gin.H{"success": true, "distance": distance})
	}
}
