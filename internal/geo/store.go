package geo

import (
	"context"

	"github.com/kgvl/freightbid-backend/internal/models"
	"gorm.io/gorm"
)

// GormLocationStore reads the provider location index from postgres.
type GormLocationStore struct {
	DB *gorm.DB
}

func NewGormLocationStore(db *gorm.DB) *GormLocationStore {
	return &GormLocationStore{DB: db}
}

// ProvidersInCells returns the available providers stored under any of
// the given storage-level cell keys.
func (s *GormLocationStore) ProvidersInCells(ctx context.Context, cellKeys []string) ([]models.ProviderLocation, error) {
	if len(cellKeys) == 0 {
		return nil, nil
	}
	var locations []models.ProviderLocation
	err := s.DB.WithContext(ctx).
		Where("cell_key IN ? AND available = ?", cellKeys, true).
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}
