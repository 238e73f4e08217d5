package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"gorm.io/gorm"
)

// GetProfile returns the authenticated user's profile.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		c.JSON(200, gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"phoneNumber": user.PhoneNumber,
			"userType":    user.UserType,
			"companyName": user.CompanyName,
		})
	}
}

type updateProfileInput struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
	CompanyName string `json:"companyName"`
}

// UpdateProfile updates the mutable fields of the authenticated user.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input updateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, ok := loadUser(c, db)
		if !ok {
			return
		}

		updates := map[string]interface{}{}
		if input.Username != "" {
			updates["username"] = input.Username
		}
		if input.PhoneNumber != "" {
			updates["phone_number"] = input.PhoneNumber
		}
		if input.CompanyName != "" {
			updates["company_name"] = input.CompanyName
		}
		if len(updates) == 0 {
			c.JSON(400, gin.H{"error": "No fields to update"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(200, gin.H{"message": "Profile updated successfully"})
	}
}
