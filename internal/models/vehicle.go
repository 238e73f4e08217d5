package models

import (
	"regexp"

	"gorm.io/gorm"
)

// BiddingAuthorization values: which party of a vehicle may bid with it.
const (
	BiddingAuthOwner  = "owner"
	BiddingAuthBroker = "broker"
	BiddingAuthDriver = "driver"
)

var vehicleNumberPattern = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z]{2}\d{4}$`)

// Vehicle is a registered transport vehicle. Owners register vehicles and
// may delegate bidding to a broker or driver.
type Vehicle struct {
	gorm.Model
	VehicleNumber        string   `json:"vehicleNumber" gorm:"unique;not null"`
	Height               string   `json:"height" gorm:"not null"`
	Width                string   `json:"width" gorm:"not null"`
	Length               string   `json:"length" gorm:"not null"`
	OwnerID              uint     `json:"ownerId" gorm:"not null;index"`
	BrokerID             *uint    `json:"brokerId,omitempty"`
	DriverID             *uint    `json:"driverId,omitempty"`
	BiddingAuthorization string   `json:"biddingAuthorization" gorm:"not null;default:'owner'"`
	RCCopies             []string `json:"rcCopy" gorm:"serializer:json;type:jsonb"`
	Owner                *User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Broker               *User    `json:"broker,omitempty" gorm:"foreignKey:BrokerID"`
	Driver               *User    `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Vehicle) TableName() string {
	return "vehicles"
}

// ValidVehicleNumber checks the registration plate format (e.g. "AB12CD3456").
func ValidVehicleNumber(number string) bool {
	return vehicleNumberPattern.MatchString(number)
}
