package models

import (
	"testing"
	"time"
)

func TestWalletCreditDebit(t *testing.T) {
	w := &Wallet{UserID: 1}
	now := time.Now()

	w.Credit(500, "order_1", "pay_1", "sig", now)
	if w.Balance != 500 {
		t.Fatalf("balance = %v, want 500", w.Balance)
	}

	if !w.Debit(200, "order_2", "pay_2", "sig", now) {
		t.Fatal("debit within balance rejected")
	}
	if w.Balance != 300 {
		t.Fatalf("balance = %v, want 300", w.Balance)
	}

	if w.Debit(301, "order_3", "pay_3", "sig", now) {
		t.Fatal("overdraft debit accepted")
	}
	if w.Balance != 300 {
		t.Fatalf("balance mutated by rejected debit: %v", w.Balance)
	}
	if len(w.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(w.Transactions))
	}
}
