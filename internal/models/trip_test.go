package models

import (
	"testing"
	"time"
)

func newBiddingTrip(started time.Time) *Trip {
	trip := &Trip{
		ConsumerID:    1,
		Origin:        "560001",
		Destination:   "400001",
		Cargo:         CargoDetails{CargoType: "steel", QuotePrice: 10000},
		Status:        TripStatusCreated,
		BiddingStatus: BiddingInProgress,
	}
	trip.BiddingStartTime = &started
	return trip
}

func provider(id uint) *User {
	u := &User{Username: "provider", UserType: string(UserTypeOwner)}
	u.ID = id
	return u
}

func consumer(id uint) *User {
	u := &User{Username: "consumer", UserType: string(UserTypeConsumer)}
	u.ID = id
	return u
}

func TestRecomputePriceBands(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	if err := trip.AddCounterOffer(9000, provider(7), now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}
	if err := trip.AddBid(9500, consumer(1), provider(7), now); err != nil {
		t.Fatalf("AddBid: %v", err)
	}

	trip.RecomputePriceBands()

	if got, want := trip.Cargo.ReducedQuotePrice, 9000.0; got != want {
		t.Errorf("reduced quote price = %v, want %v", got, want)
	}
	if got, want := trip.CounterOffers[0].IncreasedPrice, 9900.0; got != want {
		t.Errorf("counter offer increased price = %v, want %v", got, want)
	}
	for i, bid := range trip.Bids {
		if bid.ReducedPrice != bid.Price*0.9 {
			t.Errorf("bid %d reduced price = %v, want %v", i, bid.ReducedPrice, bid.Price*0.9)
		}
		if bid.IncreasedPrice != bid.Price*1.1 {
			t.Errorf("bid %d increased price = %v, want %v", i, bid.IncreasedPrice, bid.Price*1.1)
		}
	}
}

func TestFirstBidPromotesCounterOffer(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	p := provider(7)
	if err := trip.AddCounterOffer(9000, p, now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}

	// The provider opening formal bidding at their own counter price
	// yields exactly one history entry, not a duplicate.
	if err := trip.AddBid(9000, p, p, now); err != nil {
		t.Fatalf("AddBid: %v", err)
	}
	if len(trip.Bids) != 1 {
		t.Fatalf("bids = %d, want 1", len(trip.Bids))
	}
	if trip.Bids[0].Price != 9000 || trip.Bids[0].Role != RoleProvider {
		t.Errorf("promoted bid = %+v", trip.Bids[0])
	}
	if trip.BidderID == nil || *trip.BidderID != p.ID {
		t.Errorf("bidder not pinned to provider %d", p.ID)
	}
}

func TestFirstBidByConsumerPromotesThenAppends(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	p := provider(7)
	c := consumer(1)
	if err := trip.AddCounterOffer(9000, p, now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}

	if err := trip.AddBid(8500, c, p, now); err != nil {
		t.Fatalf("AddBid: %v", err)
	}
	if len(trip.Bids) != 2 {
		t.Fatalf("bids = %d, want 2 (promotion plus consumer revision)", len(trip.Bids))
	}
	if trip.Bids[0].ActorID != p.ID || trip.Bids[1].ActorID != c.ID {
		t.Errorf("bid actors = %d, %d", trip.Bids[0].ActorID, trip.Bids[1].ActorID)
	}
	if trip.LastBid().Price != 8500 {
		t.Errorf("standing offer = %v, want 8500", trip.LastBid().Price)
	}
}

func TestFirstBidWithoutCounterOfferRejected(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	if err := trip.AddBid(9000, provider(7), provider(7), now); err == nil {
		t.Fatal("expected error for bid with no counter offer")
	}
}

func TestAcceptUsesStandingOffer(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	p := provider(7)
	if err := trip.AddCounterOffer(9000, p, now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}
	if err := trip.AddBid(8500, consumer(1), p, now); err != nil {
		t.Fatalf("AddBid: %v", err)
	}

	if err := trip.Accept(p, TripStatusInProgress, now); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if trip.FinalPrice != 8500 {
		t.Errorf("final price = %v, want 8500", trip.FinalPrice)
	}
	if trip.BiddingStatus != BiddingAccepted || trip.Status != TripStatusInProgress {
		t.Errorf("statuses = %s/%s", trip.BiddingStatus, trip.Status)
	}

	// Terminal negotiation rejects every further mutation.
	if err := trip.AddBid(8000, consumer(1), p, now); err == nil {
		t.Error("bid accepted after terminal state")
	}
	if err := trip.AddCounterOffer(8000, provider(8), now); err == nil {
		t.Error("counter offer accepted after terminal state")
	}
	if err := trip.Accept(p, TripStatusCompleted, now); err == nil {
		t.Error("second accept succeeded")
	}
}

func TestAcceptWithoutBidsUsesCounterOffer(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	p := provider(7)
	if err := trip.AddCounterOffer(9200, p, now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}

	if err := trip.Accept(p, TripStatusCompleted, now); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if trip.FinalPrice != 9200 {
		t.Errorf("final price = %v, want 9200", trip.FinalPrice)
	}
	if trip.BidderID == nil || *trip.BidderID != p.ID {
		t.Errorf("bidder not pinned on acceptance")
	}
}

func TestAcceptAfterWindowElapsedRejected(t *testing.T) {
	started := time.Now().Add(-BiddingWindow - time.Minute)
	trip := newBiddingTrip(started)
	p := provider(7)
	if err := trip.AddCounterOffer(9000, p, started); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}

	if err := trip.Accept(p, TripStatusInProgress, time.Now()); err == nil {
		t.Fatal("expected expired window to reject acceptance")
	}
	if trip.BiddingStatus != BiddingInProgress {
		t.Errorf("bidding status mutated on failed accept: %s", trip.BiddingStatus)
	}
}

func TestCounterOfferFromPinnedBidderRejected(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	p := provider(7)
	if err := trip.AddCounterOffer(9000, p, now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}
	if err := trip.AddBid(9000, p, p, now); err != nil {
		t.Fatalf("AddBid: %v", err)
	}

	if err := trip.AddCounterOffer(8800, p, now); err == nil {
		t.Fatal("expected counter offer from pinned bidder to be rejected")
	}
}

func TestAcceptNamingDifferentProviderRejected(t *testing.T) {
	now := time.Now()
	trip := newBiddingTrip(now)
	pinned := provider(7)
	other := provider(8)
	if err := trip.AddCounterOffer(9000, pinned, now); err != nil {
		t.Fatalf("AddCounterOffer: %v", err)
	}
	if err := trip.AddBid(9000, pinned, pinned, now); err != nil {
		t.Fatalf("AddBid: %v", err)
	}

	if err := trip.Accept(other, TripStatusInProgress, now); err == nil {
		t.Fatal("accept naming a provider other than the pinned bidder succeeded")
	}
	if trip.BiddingStatus != BiddingInProgress || trip.FinalPrice != 0 {
		t.Errorf("failed accept mutated trip: %s final=%v", trip.BiddingStatus, trip.FinalPrice)
	}

	if err := trip.Accept(pinned, TripStatusInProgress, now); err != nil {
		t.Fatalf("accept by pinned bidder: %v", err)
	}
}

func TestAwardActive(t *testing.T) {
	cases := []struct {
		biddingStatus string
		status        string
		want          bool
	}{
		{BiddingAccepted, TripStatusInProgress, true},
		{BiddingAccepted, TripStatusCompleted, false},
		{BiddingAccepted, TripStatusCancelled, false},
		{BiddingInProgress, TripStatusCreated, false},
		{BiddingRejected, TripStatusCancelled, false},
	}
	for _, tc := range cases {
		trip := &Trip{BiddingStatus: tc.biddingStatus, Status: tc.status}
		if got := trip.AwardActive(); got != tc.want {
			t.Errorf("AwardActive with %s/%s = %v, want %v", tc.biddingStatus, tc.status, got, tc.want)
		}
	}
}

func TestStartBiddingOnlyFromNotStarted(t *testing.T) {
	trip := &Trip{BiddingStatus: BiddingNotStarted}
	now := time.Now()
	if err := trip.StartBidding(now); err != nil {
		t.Fatalf("StartBidding: %v", err)
	}
	if trip.BiddingStartTime == nil || !trip.BiddingStartTime.Equal(now) {
		t.Error("bidding start time not recorded")
	}
	if err := trip.StartBidding(now); err == nil {
		t.Fatal("expected second start to fail")
	}
}

func TestAddTransactionRequiresFinalPrice(t *testing.T) {
	trip := newBiddingTrip(time.Now())
	if err := trip.AddTransaction(100, TransactionCredit, "order_1", "pay_1", "sig", time.Now()); err == nil {
		t.Fatal("expected transaction without final price to fail")
	}
	trip.FinalPrice = 9000
	if err := trip.AddTransaction(9000, TransactionCredit, "order_1", "pay_1", "sig", time.Now()); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if len(trip.Transactions) != 1 {
		t.Errorf("transactions = %d, want 1", len(trip.Transactions))
	}
}
