package tracking

import (
	"context"

	"github.com/kgvl/freightbid-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore resolves active trips from postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// ActiveTripsByBidder returns the trips the provider won that are still
// being served, the ones whose consumers care about live position.
func (s *GormStore) ActiveTripsByBidder(ctx context.Context, providerID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := s.DB.WithContext(ctx).
		Where("bidder_id = ? AND bidding_status = ? AND status = ?",
			providerID, models.BiddingAccepted, models.TripStatusInProgress).
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}
