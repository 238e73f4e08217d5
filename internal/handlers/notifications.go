package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"gorm.io/gorm"
)

type pushTokenInput struct {
	Token string `json:"token" binding:"required"`
}

// RegisterPushToken stores an FCM token for offline push fallback. A
// token already registered is moved to the current user.
func RegisterPushToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input pushTokenInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		userID := currentUserID(c)
		var existing models.PushToken
		err := db.Where("token = ?", input.Token).First(&existing).Error
		if err == nil {
			if existing.UserID != userID {
				existing.UserID = userID
				if err := db.Save(&existing).Error; err != nil {
					c.JSON(500, gin.H{"error": "Failed to register token"})
					return
				}
			}
			c.JSON(200, gin.H{"success": true})
			return
		}

		token := models.PushToken{UserID: userID, Token: input.Token}
		if err := db.Create(&token).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to register token"})
			return
		}
		c.JSON(201, gin.H{"success": true})
	}
}

// RemovePushToken deletes an FCM token, typically on logout.
func RemovePushToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input pushTokenInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := db.Where("user_id = ? AND token = ?", currentUserID(c), input.Token).
			Delete(&models.PushToken{}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to remove token"})
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

// GetTripNotifications lists the fan-out records addressed to the
// authenticated provider, newest first.
func GetTripNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var notifications []models.TripNotification
		if err := db.Where("recipient_id = ?", currentUserID(c)).
			Order("created_at DESC").Limit(50).Find(&notifications).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(200, gin.H{"success": true, "notifications": notifications})
	}
}
