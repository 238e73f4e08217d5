package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet transaction types
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// WalletTransaction is one verified payment entry on a wallet.
type WalletTransaction struct {
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"` // credit or debit
	OrderID   string    `json:"razorpayOrderId"`
	PaymentID string    `json:"razorpayPaymentId"`
	Signature string    `json:"razorpaySignature"`
	CreatedAt time.Time `json:"createdAt"`
}

// Wallet holds a user's balance and its transaction history.
type Wallet struct {
	gorm.Model
	UserID       uint                `json:"userId" gorm:"not null;uniqueIndex"`
	Balance      float64             `json:"balance" gorm:"not null;default:0"`
	Transactions []WalletTransaction `json:"transactions" gorm:"serializer:json;type:jsonb"`
	User         *User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (Wallet) TableName() string {
	return "wallets"
}

// Credit records a verified top-up and adjusts the balance.
func (w *Wallet) Credit(amount float64, orderID, paymentID, signature string, now time.Time) {
	w.Transactions = append(w.Transactions, WalletTransaction{
		Amount:    amount,
		Type:      TransactionCredit,
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
		CreatedAt: now,
	})
	w.Balance += amount
}

// Debit records a verified withdrawal and adjusts the balance.
func (w *Wallet) Debit(amount float64, orderID, paymentID, signature string, now time.Time) bool {
	if amount > w.Balance {
		return false
	}
	w.Transactions = append(w.Transactions, WalletTransaction{
		Amount:    amount,
		Type:      TransactionDebit,
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
		CreatedAt: now,
	})
	w.Balance -= amount
	return true
}
