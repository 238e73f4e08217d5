package models

import (
	"time"

	"gorm.io/gorm"
)

// ProviderLocation holds the latest reported position of a service
// provider, keyed by the precomputed spherical cell at the storage
// resolution. Last write wins; the row is owned by the provider client.
type ProviderLocation struct {
	gorm.Model
	ProviderID uint      `json:"providerId" gorm:"not null;uniqueIndex"`
	Latitude   float64   `json:"lat" gorm:"not null"`
	Longitude  float64   `json:"lng" gorm:"not null"`
	CellKey    string    `json:"cellKey" gorm:"not null;index"`
	Available  bool      `json:"available" gorm:"not null;default:false"`
	LastSeen   time.Time `json:"lastSeen" gorm:"not null"`
	Provider   *User     `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

// TableName specifies the table name
func (ProviderLocation) TableName() string {
	return "provider_locations"
}
