package models

import (
	"time"

	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// Trip status values
const (
	TripStatusCreated    = "created"
	TripStatusInProgress = "inProgress"
	TripStatusCompleted  = "completed"
	TripStatusCancelled  = "cancelled"
)

// Bidding status values
const (
	BiddingNotStarted = "notStarted"
	BiddingInProgress = "inProgress"
	BiddingAccepted   = "accepted"
	BiddingRejected   = "rejected"
)

// Negotiation roles recorded on bids
const (
	RoleConsumer = "consumer"
	RoleProvider = "provider"
)

// BiddingWindow is the fixed negotiation window starting at BiddingStartTime.
const BiddingWindow = 30 * time.Minute

// priceBand is the fraction used for the derived +/- price fields.
const priceBand = 0.10

// CargoDetails describes the load being quoted.
type CargoDetails struct {
	CargoType         string  `json:"cargoType"`
	QuotePrice        float64 `json:"quotePrice"`
	ReducedQuotePrice float64 `json:"reducedQuotePrice"`
	PayloadWeight     float64 `json:"payloadWeight"`
	PayloadHeight     float64 `json:"payloadHeight"`
	PayloadLength     float64 `json:"payloadLength"`
	PayloadWidth      float64 `json:"payloadWidth"`
}

// CounterOffer is an informal first price signal from a provider,
// made before any formal bid exists.
type CounterOffer struct {
	Price          float64   `json:"price"`
	IncreasedPrice float64   `json:"increasedPrice"`
	ProviderID     uint      `json:"providerId"`
	ProviderName   string    `json:"providerName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Bid is one entry of the append-only negotiation history.
// The last element is the current standing offer.
type Bid struct {
	Price          float64   `json:"price"`
	ReducedPrice   float64   `json:"reducedPrice"`
	IncreasedPrice float64   `json:"increasedPrice"`
	ActorID        uint      `json:"actorId"`
	Role           string    `json:"role"` // consumer or provider
	Timestamp      time.Time `json:"timestamp"`
}

// TripTransaction is one settlement ledger entry on a trip.
type TripTransaction struct {
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"` // credit or debit
	OrderID   string    `json:"razorpayOrderId"`
	PaymentID string    `json:"razorpayPaymentId"`
	Signature string    `json:"razorpaySignature"`
	CreatedAt time.Time `json:"createdAt"`
}

// Trip is the negotiable unit of the marketplace.
type Trip struct {
	gorm.Model
	ConsumerID         uint         `json:"consumerId" gorm:"not null;index"`
	Consumer           *User        `json:"consumer,omitempty" gorm:"foreignKey:ConsumerID"`
	Origin             string       `json:"origin" gorm:"not null"`
	Destination        string       `json:"destination" gorm:"not null"`
	TripDate           time.Time    `json:"tripDate"`
	Cargo              CargoDetails `json:"cargoDetails" gorm:"embedded;embeddedPrefix:cargo_"`
	SpecialInstruction string       `json:"specialInstruction"`

	Status           string     `json:"status" gorm:"not null;default:'created'"`
	BiddingStatus    string     `json:"biddingStatus" gorm:"not null;default:'notStarted';index"`
	BiddingStartTime *time.Time `json:"biddingStartTime"`

	CounterOffers []CounterOffer `json:"counterPriceList" gorm:"serializer:json;type:jsonb"`
	Bids          []Bid          `json:"bids" gorm:"serializer:json;type:jsonb"`
	BidderID      *uint          `json:"bidderId"`
	FinalPrice    float64        `json:"finalPrice"`

	GrAccepted   bool              `json:"grAccepted" gorm:"default:false"`
	BillAccepted bool              `json:"billAccepted" gorm:"default:false"`
	Transactions []TripTransaction `json:"transactions" gorm:"serializer:json;type:jsonb"`
}

// TableName specifies the table name
func (Trip) TableName() string {
	return "trips"
}

// BeforeSave recomputes every derived price band from the canonical
// prices so stored bands can never drift from their source values.
func (t *Trip) BeforeSave(tx *gorm.DB) error {
	t.RecomputePriceBands()
	return nil
}

func reducedPrice(p float64) float64 {
	return p - p*priceBand
}

func increasedPrice(p float64) float64 {
	return p + p*priceBand
}

// RecomputePriceBands refreshes the derived +/-10% fields on the cargo
// quote, every counter offer and every bid.
func (t *Trip) RecomputePriceBands() {
	t.Cargo.ReducedQuotePrice = reducedPrice(t.Cargo.QuotePrice)
	for i := range t.CounterOffers {
		t.CounterOffers[i].IncreasedPrice = increasedPrice(t.CounterOffers[i].Price)
	}
	for i := range t.Bids {
		t.Bids[i].ReducedPrice = reducedPrice(t.Bids[i].Price)
		t.Bids[i].IncreasedPrice = increasedPrice(t.Bids[i].Price)
	}
}

// AwardActive reports whether this trip is a live award for its bidder:
// accepted bidding on a trip that has not yet finished. A provider with
// a live award is suppressed from the open-trips feed.
func (t *Trip) AwardActive() bool {
	return t.BiddingStatus == BiddingAccepted &&
		t.Status != TripStatusCompleted && t.Status != TripStatusCancelled
}

// BiddingTerminal reports whether the negotiation has reached a final state.
func (t *Trip) BiddingTerminal() bool {
	return t.BiddingStatus == BiddingAccepted || t.BiddingStatus == BiddingRejected
}

// BiddingExpired reports whether the negotiation window has elapsed.
func (t *Trip) BiddingExpired(now time.Time) bool {
	if t.BiddingStartTime == nil {
		return false
	}
	return now.After(t.BiddingStartTime.Add(BiddingWindow))
}

// LastBid returns the current standing offer, or nil if no formal bid exists.
func (t *Trip) LastBid() *Bid {
	if len(t.Bids) == 0 {
		return nil
	}
	return &t.Bids[len(t.Bids)-1]
}

// CounterOfferFor returns the counter offer made by the given provider.
func (t *Trip) CounterOfferFor(providerID uint) *CounterOffer {
	for i := range t.CounterOffers {
		if t.CounterOffers[i].ProviderID == providerID {
			return &t.CounterOffers[i]
		}
	}
	return nil
}

// StartBidding opens the negotiation window. Only valid from notStarted.
func (t *Trip) StartBidding(now time.Time) *apperrors.Error {
	if t.BiddingStatus != BiddingNotStarted {
		return apperrors.StateConflict("bidding has already started for this trip")
	}
	t.BiddingStatus = BiddingInProgress
	t.BiddingStartTime = &now
	return nil
}

// AddCounterOffer appends an informal first offer from a provider.
func (t *Trip) AddCounterOffer(price float64, provider *User, now time.Time) *apperrors.Error {
	if price <= 0 {
		return apperrors.InvalidInput("counter price must be a positive number")
	}
	if t.BiddingStatus != BiddingInProgress {
		return apperrors.StateConflict("trip is not accepting counter offers")
	}
	if t.BidderID != nil && *t.BidderID == provider.ID {
		return apperrors.StateConflict("provider has already entered formal bidding")
	}
	t.CounterOffers = append(t.CounterOffers, CounterOffer{
		Price:        price,
		ProviderID:   provider.ID,
		ProviderName: provider.Username,
		CreatedAt:    now,
	})
	return nil
}

// AddBid appends a formal bid from either party. The very first bid is
// synthesized by promoting the anchoring provider's counter offer, which
// also pins the trip's bidder.
func (t *Trip) AddBid(price float64, actor, provider *User, now time.Time) *apperrors.Error {
	if price <= 0 {
		return apperrors.InvalidInput("bid price must be a positive number")
	}
	if t.BiddingStatus != BiddingInProgress {
		return apperrors.StateConflict("trip is not accepting bids")
	}
	if len(t.Bids) == 0 {
		offer := t.CounterOfferFor(provider.ID)
		if offer == nil {
			return apperrors.InvalidInput("provider has no counter offer to open bidding with")
		}
		t.Bids = append(t.Bids, Bid{
			Price:     offer.Price,
			ActorID:   provider.ID,
			Role:      RoleProvider,
			Timestamp: now,
		})
		t.BidderID = &provider.ID
		if actor.ID == provider.ID && price == offer.Price {
			// The promoted counter offer is the submitter's bid.
			return nil
		}
	}
	t.Bids = append(t.Bids, Bid{
		Price:     price,
		ActorID:   actor.ID,
		Role:      actor.NegotiationRole(),
		Timestamp: now,
	})
	return nil
}

// Accept finalizes the negotiation against the given provider. The final
// price is the standing offer, or the provider's counter offer when no
// formal bid exists. terminalStatus is the trip status requested by the
// caller (e.g. inProgress once payment follows, completed for cash deals).
func (t *Trip) Accept(provider *User, terminalStatus string, now time.Time) *apperrors.Error {
	if t.BiddingStatus != BiddingInProgress {
		return apperrors.StateConflict("bidding is not in progress for this trip")
	}
	if t.BiddingExpired(now) {
		return apperrors.StateConflict("bidding window has elapsed")
	}
	if t.BidderID != nil && *t.BidderID != provider.ID {
		return apperrors.StateConflict("another provider is pinned as the trip's bidder")
	}
	switch terminalStatus {
	case TripStatusInProgress, TripStatusCompleted:
	default:
		return apperrors.InvalidInput("status must be inProgress or completed")
	}

	var price float64
	if last := t.LastBid(); last != nil {
		price = last.Price
	} else {
		offer := t.CounterOfferFor(provider.ID)
		if offer == nil {
			return apperrors.InvalidInput("no bid or counter offer to accept")
		}
		price = offer.Price
	}

	if t.BidderID == nil {
		t.BidderID = &provider.ID
	}
	t.FinalPrice = price
	t.Status = terminalStatus
	t.BiddingStatus = BiddingAccepted
	return nil
}

// AddTransaction appends a verified settlement entry to the trip ledger.
func (t *Trip) AddTransaction(amount float64, txType, orderID, paymentID, signature string, now time.Time) *apperrors.Error {
	if t.FinalPrice <= 0 {
		return apperrors.InvalidInput("final price is not set for this trip")
	}
	t.Transactions = append(t.Transactions, TripTransaction{
		Amount:    amount,
		Type:      txType,
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
		CreatedAt: now,
	})
	return nil
}
