package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/geo"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"github.com/kgvl/freightbid-backend/pkg/utils"
	"gorm.io/gorm"
)

type locationInput struct {
	Latitude  float64 `json:"lat" binding:"required"`
	Longitude float64 `json:"lng" binding:"required"`
}

// minPublishDistanceKm keeps pub/sub quiet while a parked vehicle jitters
// around its GPS fix.
const minPublishDistanceKm = 0.025

// UpdateProviderLocation upserts the provider's latest position and its
// precomputed storage cell. Last write wins.
func UpdateProviderLocation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input locationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
			respondError(c, apperrors.InvalidInput("Coordinates out of range"))
			return
		}

		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		if !user.IsServiceProvider() {
			respondError(c, apperrors.InvalidInput("Only service providers report locations"))
			return
		}

		cellKey := geo.StorageCellKey(input.Latitude, input.Longitude)
		now := time.Now()

		var location models.ProviderLocation
		err := db.Where("provider_id = ?", user.ID).First(&location).Error
		moved := true
		var heading float64
		switch {
		case err == nil:
			moved = !utils.IsWithinRadius(location.Latitude, location.Longitude,
				input.Latitude, input.Longitude, minPublishDistanceKm)
			if moved {
				heading = utils.Bearing(location.Latitude, location.Longitude,
					input.Latitude, input.Longitude)
			}
			location.Latitude = input.Latitude
			location.Longitude = input.Longitude
			location.CellKey = cellKey
			location.LastSeen = now
			if err := db.Save(&location).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update location"})
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			location = models.ProviderLocation{
				ProviderID: user.ID,
				Latitude:   input.Latitude,
				Longitude:  input.Longitude,
				CellKey:    cellKey,
				LastSeen:   now,
			}
			if err := db.Create(&location).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to save location"})
				return
			}
		default:
			c.JSON(500, gin.H{"error": "Failed to fetch location"})
			return
		}

		ctx := c.Request.Context()
		if err := services.SetProviderLocation(ctx, user.ID, input.Latitude, input.Longitude, cellKey); err != nil {
			log.Printf("Failed to cache provider %d location: %v", user.ID, err)
		}
		if moved {
			if err := services.PublishProviderLocation(ctx, user.ID, input.Latitude, input.Longitude, heading); err != nil {
				log.Printf("Failed to publish provider %d location: %v", user.ID, err)
			}
		}

		c.JSON(200, gin.H{"success": true, "cellKey": cellKey})
	}
}

type availabilityInput struct {
	Available *bool `json:"available" binding:"required"`
}

// UpdateProviderAvailability flips the provider in or out of the
// searchable pool.
func UpdateProviderAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input availabilityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		if !user.IsServiceProvider() {
			respondError(c, apperrors.InvalidInput("Only service providers have availability"))
			return
		}

		res := db.Model(&models.ProviderLocation{}).
			Where("provider_id = ?", user.ID).
			Update("available", *input.Available)
		if res.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, apperrors.NotFound("No reported location for this provider yet"))
			return
		}

		if err := services.SetProviderAvailability(c.Request.Context(), user.ID, *input.Available); err != nil {
			log.Printf("Failed to cache provider %d availability: %v", user.ID, err)
		}
		c.JSON(200, gin.H{"success": true, "available": *input.Available})
	}
}

// GetProviderStatus returns the provider's last reported position and
// availability, preferring the Redis cache.
func GetProviderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		if lat, lng, cellKey, err := services.GetProviderLocation(c.Request.Context(), userID); err == nil {
			available, _ := services.GetProviderAvailability(c.Request.Context(), userID)
			c.JSON(200, gin.H{
				"success":   true,
				"lat":       lat,
				"lng":       lng,
				"cellKey":   cellKey,
				"available": available,
				"source":    "cache",
			})
			return
		}

		var location models.ProviderLocation
		if err := db.Where("provider_id = ?", userID).First(&location).Error; err != nil {
			respondError(c, apperrors.NotFound("No reported location for this provider yet"))
			return
		}
		c.JSON(200, gin.H{
			"success":   true,
			"lat":       location.Latitude,
			"lng":       location.Longitude,
			"cellKey":   location.CellKey,
			"available": location.Available,
			"source":    "db",
		})
	}
}
