package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "test_secret"
	sig := signPayload("order_123", "pay_456", secret)

	if !VerifyPaymentSignature("order_123", "pay_456", sig, secret) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerifyPaymentSignatureRejectsTampering(t *testing.T) {
	const secret = "test_secret"
	sig := signPayload("order_123", "pay_456", secret)

	cases := []struct {
		name                         string
		orderID, paymentID, provided string
	}{
		{"wrong order", "order_999", "pay_456", sig},
		{"wrong payment", "order_123", "pay_999", sig},
		{"truncated signature", "order_123", "pay_456", sig[:len(sig)-2]},
		{"empty signature", "order_123", "pay_456", ""},
		{"empty order", "", "pay_456", sig},
		{"empty payment", "order_123", "", sig},
	}
	for _, tc := range cases {
		if VerifyPaymentSignature(tc.orderID, tc.paymentID, tc.provided, secret) {
			t.Errorf("%s: signature accepted", tc.name)
		}
	}
}

func TestVerifyPaymentSignatureSecretMismatch(t *testing.T) {
	sig := signPayload("order_123", "pay_456", "secret_a")
	if VerifyPaymentSignature("order_123", "pay_456", sig, "secret_b") {
		t.Fatal("signature verified against the wrong secret")
	}
}
