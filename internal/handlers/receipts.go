package handlers

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// UploadGoodsReceipt stores goods-receipt documents for a trip and marks
// the trip's GR flag.
func UploadGoodsReceipt(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return uploadReceipt(db, hub, "gr")
}

// UploadBillReceipt stores billing documents for a trip and marks the
// trip's bill flag.
func UploadBillReceipt(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return uploadReceipt(db, hub, "bill")
}

func uploadReceipt(db *gorm.DB, hub *services.Hub, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := tripIDParam(c)
		if !ok {
			return
		}
		trip, ok := loadTrip(c, db, id)
		if !ok {
			return
		}

		vehicleNumber := c.PostForm("vehicleNumber")
		if !models.ValidVehicleNumber(vehicleNumber) {
			respondError(c, apperrors.InvalidInput("Invalid vehicle number format"))
			return
		}
		lat, _ := strconv.ParseFloat(c.PostForm("lat"), 64)
		lng, _ := strconv.ParseFloat(c.PostForm("lng"), 64)

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid multipart form"})
			return
		}
		files := form.File["files"]
		if len(files) == 0 {
			respondError(c, apperrors.InvalidInput("At least one receipt file is required"))
			return
		}

		var urls []string
		for _, file := range files {
			url, err := services.UploadDocument(file, "receipts")
			if err != nil {
				log.Printf("Receipt upload for trip %d failed: %v", trip.ID, err)
				c.JSON(500, gin.H{"error": "Failed to upload receipt"})
				return
			}
			urls = append(urls, url)
		}

		driverID := currentUserID(c)
		var flag string
		var event string
		switch kind {
		case "gr":
			receipt := models.GoodsReceipt{
				TripID: trip.ID, VehicleNumber: vehicleNumber, DriverID: driverID,
				Files: urls, Latitude: lat, Longitude: lng,
			}
			if err := db.Create(&receipt).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to save receipt"})
				return
			}
			flag, event = "gr_accepted", "grUploaded"
		case "bill":
			receipt := models.BillReceipt{
				TripID: trip.ID, VehicleNumber: vehicleNumber, DriverID: driverID,
				Files: urls, Latitude: lat, Longitude: lng,
			}
			if err := db.Create(&receipt).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to save receipt"})
				return
			}
			flag, event = "bill_accepted", "billUploaded"
		}

		if err := db.Model(&models.Trip{}).Where("id = ?", trip.ID).Update(flag, true).Error; err != nil {
			log.Printf("Failed to flag trip %d after receipt upload: %v", trip.ID, err)
		}
		if err := hub.PushToUser(trip.ConsumerID, event, gin.H{"tripId": trip.ID, "files": urls}); err != nil {
			log.Printf("Trip %d: receipt push to consumer %d failed: %v", trip.ID, trip.ConsumerID, err)
		}
		c.JSON(201, gin.H{"success": true, "files": urls})
	}
}
