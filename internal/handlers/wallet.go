package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/internal/services"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

func getOrCreateWallet(db *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.Wallet{UserID: userID}
		err = db.Create(&wallet).Error
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetWallet returns the authenticated user's balance and history.
func GetWallet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := getOrCreateWallet(db, currentUserID(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch wallet"})
			return
		}
		c.JSON(200, gin.H{
			"success":      true,
			"balance":      wallet.Balance,
			"transactions": wallet.Transactions,
		})
	}
}

// VerifyWalletTopUp verifies a completed payment and credits the wallet.
func VerifyWalletTopUp(db *gorm.DB) gin.HandlerFunc {
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

		wallet, err := getOrCreateWallet(db, currentUserID(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch wallet"})
			return
		}
		wallet.Credit(input.Amount, input.OrderID, input.PaymentID, input.Signature, time.Now())
		if err := db.Save(wallet).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to credit wallet"})
			return
		}
		c.JSON(200, gin.H{"success": true, "balance": wallet.Balance})
	}
}

type withdrawInput struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	OrderID   string  `json:"razorpay_order_id"`
	PaymentID string  `json:"razorpay_payment_id"`
	Signature string  `json:"razorpay_signature"`
}

// WithdrawFromWallet debits the wallet if the balance allows it.
func WithdrawFromWallet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input withdrawInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		wallet, err := getOrCreateWallet(db, currentUserID(c))
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch wallet"})
			return
		}
		if !wallet.Debit(input.Amount, input.OrderID, input.PaymentID, input.Signature, time.Now()) {
			respondError(c, apperrors.InvalidInput("Insufficient wallet balance"))
			return
		}
		if err := db.Save(wallet).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to debit wallet"})
			return
		}
		c.JSON(200, gin.H{"success": true, "balance": wallet.Balance})
	}
}
