package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/kgvl/freightbid-backend/internal/models"
	"github.com/kgvl/freightbid-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// GormStore backs the dispatcher with postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) TripByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := s.DB.WithContext(ctx).First(&trip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("trip not found")
		}
		return nil, err
	}
	return &trip, nil
}

// StartBidding is a conditional write: it only succeeds if the trip is
// still in notStarted, so two racing dispatches cannot both open the
// window. The loser sees a state conflict.
func (s *GormStore) StartBidding(ctx context.Context, trip *models.Trip, now time.Time) error {
	res := s.DB.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ? AND bidding_status = ?", trip.ID, models.BiddingNotStarted).
		Updates(map[string]interface{}{
			"bidding_status":     models.BiddingInProgress,
			"bidding_start_time": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.StateConflict("bidding has already started for this trip")
	}
	trip.BiddingStatus = models.BiddingInProgress
	trip.BiddingStartTime = &now
	return nil
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.TripNotification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

func (s *GormStore) PushTokens(ctx context.Context, userID uint) ([]string, error) {
	var records []models.PushToken
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(records))
	for _, r := range records {
		tokens = append(tokens, r.Token)
	}
	return tokens, nil
}
