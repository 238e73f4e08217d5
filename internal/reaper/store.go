package reaper

import (
	"context"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
	"gorm.io/gorm"
)

// GormStore implements the bulk rejection against postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// RejectExpired force-terminates every trip still bidding whose window
// opened before cutoff: biddingStatus becomes rejected and the trip is
// cancelled, in one conditional UPDATE.
func (s *GormStore) RejectExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Trip{}).
		Where("bidding_status = ? AND bidding_start_time < ?", models.BiddingInProgress, cutoff).
		Updates(map[string]interface{}{
			"bidding_status": models.BiddingRejected,
			"status":         models.TripStatusCancelled,
		})
	return res.RowsAffected, res.Error
}
