package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// RegisterVehicle registers a vehicle for the authenticated owner. RC
// copies arrive as multipart files and are uploaded to document storage.
func RegisterVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		if models.UserType(user.UserType) != models.UserTypeOwner {
			respondError(c, apperrors.InvalidInput("Only owners can register vehicles"))
			return
		}

		vehicleNumber := c.PostForm("vehicleNumber")
		if !models.ValidVehicleNumber(vehicleNumber) {
			respondError(c, apperrors.InvalidInput("Invalid vehicle number format"))
			return
		}
		height := c.PostForm("height")
		width := c.PostForm("width")
		length := c.PostForm("length")
		if height == "" || width == "" || length == "" {
			respondError(c, apperrors.InvalidInput("height, width and length are required"))
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid multipart form"})
			return
		}
		files := form.File["rcCopy"]
		if len(files) == 0 {
			respondError(c, apperrors.InvalidInput("At least one RC copy is required"))
			return
		}

		var rcURLs []string
		for _, file := range files {
			url, err := services.UploadDocument(file, "rc-copies")
			if err != nil {
				log.Printf("RC copy upload failed for owner %d: %v", user.ID, err)
				c.JSON(500, gin.H{"error": "Failed to upload RC copy"})
				return
			}
			rcURLs = append(rcURLs, url)
		}

		vehicle := models.Vehicle{
			VehicleNumber:        vehicleNumber,
			Height:               height,
			Width:                width,
			Length:               length,
			OwnerID:              user.ID,
			BiddingAuthorization: models.BiddingAuthOwner,
			RCCopies:             rcURLs,
		}
		if err := db.Create(&vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to register vehicle, number may already exist"})
			return
		}
		c.JSON(201, gin.H{"success": true, "vehicle": vehicle})
	}
}

// GetMyVehicles lists vehicles the authenticated user owns or is
// delegated to as broker or driver.
func GetMyVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		var vehicles []models.Vehicle
		err := db.Preload("Broker").Preload("Driver").
			Where("owner_id = ? OR broker_id = ? OR driver_id = ?", userID, userID, userID).
			Find(&vehicles).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}
		c.JSON(200, gin.H{"success": true, "vehicles": vehicles})
	}
}

type assignInput struct {
	Email string `json:"email" binding:"required,email"`
}

// AssignBroker delegates a vehicle to a broker found by email.
func AssignBroker(db *gorm.DB) gin.HandlerFunc {
	return assignRole(db, models.UserTypeBroker)
}

// AssignDriver delegates a vehicle to a driver found by email.
func AssignDriver(db *gorm.DB) gin.HandlerFunc {
	return assignRole(db, models.UserTypeDriver)
}

func assignRole(db *gorm.DB, role models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input assignInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, c.Param("vehicleId")).Error; err != nil {
			respondError(c, apperrors.NotFound("Vehicle not found"))
			return
		}
		if vehicle.OwnerID != currentUserID(c) {
			respondError(c, apperrors.InvalidInput("Only the vehicle owner can delegate it"))
			return
		}

		var assignee models.User
		if err := db.Where("email = ? AND user_type = ?", input.Email, string(role)).First(&assignee).Error; err != nil {
			respondError(c, apperrors.NotFound("No such "+string(role)))
			return
		}

		updates := map[string]interface{}{}
		switch role {
		case models.UserTypeBroker:
			updates["broker_id"] = assignee.ID
			updates["bidding_authorization"] = models.BiddingAuthBroker
		case models.UserTypeDriver:
			updates["driver_id"] = assignee.ID
		}
		if err := db.Model(&vehicle).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to assign vehicle"})
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

type biddingAuthInput struct {
	BiddingAuthorization string `json:"biddingAuthorization" binding:"required,oneof=owner broker driver"`
}

// UpdateBiddingAuthorization changes which party may bid with a vehicle.
func UpdateBiddingAuthorization(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input biddingAuthInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var vehicle models.Vehicle
		if err := db.First(&vehicle, c.Param("vehicleId")).Error; err != nil {
			respondError(c, apperrors.NotFound("Vehicle not found"))
			return
		}
		if vehicle.OwnerID != currentUserID(c) {
			respondError(c, apperrors.InvalidInput("Only the vehicle owner can change bidding authorization"))
			return
		}
		if input.BiddingAuthorization == models.BiddingAuthBroker && vehicle.BrokerID == nil {
			respondError(c, apperrors.InvalidInput("Vehicle has no broker assigned"))
			return
		}
		if input.BiddingAuthorization == models.BiddingAuthDriver && vehicle.DriverID == nil {
			respondError(c, apperrors.InvalidInput("Vehicle has no driver assigned"))
			return
		}

		if err := db.Model(&vehicle).Update("bidding_authorization", input.BiddingAuthorization).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update bidding authorization"})
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}
