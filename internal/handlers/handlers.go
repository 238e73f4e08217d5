// Package handlers contains the gin HTTP handlers. Each handler is a
// closure over its dependencies (db, hub, dispatcher) so routing stays
// declarative in main.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// respondError maps an error to its HTTP status and writes the standard
// error envelope.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}

// currentUserID returns the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) uint {
	id, _ := c.Get("userId")
	userID, _ := id.(uint)
	return userID
}

// loadUser fetches the authenticated user's full record.
func loadUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	var user models.User
	if err := db.First(&user, currentUserID(c)).Error; err != nil {
		respondError(c, apperrors.NotFound("User not found"))
		return nil, false
	}
	return &user, true
}

// tripIDParam parses the :tripId route parameter.
func tripIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("tripId"), 10, 32)
	if err != nil {
		respondError(c, apperrors.InvalidInput("Invalid trip id"))
		return 0, false
	}
	return uint(id), true
}

// loadTrip fetches a trip by id.
func loadTrip(c *gin.Context, db *gorm.DB, tripID uint) (*models.Trip, bool) {
	var trip models.Trip
	if err := db.First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperrors.NotFound("Trip not found"))
		} else {
			respondError(c, apperrors.Internal("Failed to fetch trip"))
		}
		return nil, false
	}
	return &trip, true
}
