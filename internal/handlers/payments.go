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

type checkoutInput struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency"`
}

// Checkout creates a payment order the client completes on their side.
func Checkout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input checkoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		order, err := services.CreateOrder(input.Amount, input.Currency)
		if err != nil {
			respondError(c, apperrors.UpstreamUnavailable("Failed to create payment order"))
			return
		}
		c.JSON(200, gin.H{"success": true, "order": order})
	}
}

type paymentVerificationInput struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	OrderID   string  `json:"razorpay_order_id" binding:"required"`
	PaymentID string  `json:"razorpay_payment_id" binding:"required"`
	Signature string  `json:"razorpay_signature" binding:"required"`
}

// VerifyTripPayment verifies a completed payment against its signature
// and records it on the trip's settlement ledger.
func VerifyTripPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input paymentVerificationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !services.VerifyPaymentSignature(input.OrderID, input.PaymentID, input.Signature, services.RazorpaySecret()) {
			respondError(c, apperrors.InvalidInput("Payment signature verification failed"))
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

		if appErr := trip.AddTransaction(input.Amount, models.TransactionCredit,
			input.OrderID, input.PaymentID, input.Signature, time.Now()); appErr != nil {
			respondError(c, appErr)
			return
		}
		trip.Status = models.TripStatusInProgress
		if err := db.Save(trip).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		if err := services.PublishTripUpdate(context.Background(), trip.ID, trip.BiddingStatus,
			map[string]interface{}{"paid": input.Amount}); err != nil {
			log.Printf("Trip %d: failed to publish payment: %v", trip.ID, err)
		}
		c.JSON(200, gin.H{
			"success":      true,
			"transactions": trip.Transactions,
			"finalPrice":   trip.FinalPrice,
		})
	}
}
