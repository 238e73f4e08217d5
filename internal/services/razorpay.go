package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

var razorpayClient *razorpay.Client

// InitRazorpay initializes the Razorpay client used for order creation.
func InitRazorpay() error {
	key := os.Getenv("RAZORPAY_API_KEY")
	secret := os.Getenv("RAZORPAY_API_SECRET")
	if key == "" || secret == "" {
		return fmt.Errorf("RAZORPAY_API_KEY and RAZORPAY_API_SECRET must be set")
	}
	razorpayClient = razorpay.NewClient(key, secret)
	return nil
}

// RazorpaySecret returns the shared secret used for signature checks.
func RazorpaySecret() string {
	return os.Getenv("RAZORPAY_API_SECRET")
}

// CreateOrder creates a Razorpay order for the given amount in rupees.
func CreateOrder(amount float64, currency string) (map[string]interface{}, error) {
	if razorpayClient == nil {
		return nil, fmt.Errorf("razorpay client not initialized")
	}
	if currency == "" {
		currency = "INR"
	}
	data := map[string]interface{}{
		"amount":   int64(amount * 100), // paise
		"currency": currency,
	}
	order, err := razorpayClient.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	return order, nil
}

// VerifyPaymentSignature checks the caller-supplied signature against
// HMAC-SHA256 over "orderID|paymentID" with the shared secret. The
// comparison is constant time.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
