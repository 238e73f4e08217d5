package database

import (
	"github.com/kgvl/freightbid-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.TripNotification{},
		&models.ProviderLocation{},
		&models.Vehicle{},
		&models.Wallet{},
		&models.GoodsReceipt{},
		&models.BillReceipt{},
		&models.PushToken{},
	)
	if err != nil {
		return err
	}

	// Constrain user_type to the marketplace roles
	db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
	db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('consumer', 'owner', 'broker', 'driver'))`)

	// The reaper and the cell search both depend on these; AutoMigrate
	// builds them from the model tags, these cover pre-existing tables.
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_trips_bidding_status ON trips (bidding_status)`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_provider_locations_cell_key ON provider_locations (cell_key)`)

	return nil
}
