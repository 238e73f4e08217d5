package models

import "gorm.io/gorm"

// TripNotification is a durable fan-out record created once per
// (trip, candidate) pair at dispatch time. It lets a candidate who was
// offline during dispatch still discover the trip by polling, and is
// never mutated afterwards.
type TripNotification struct {
	gorm.Model
	TripID      uint  `json:"tripId" gorm:"not null;index"`
	RecipientID uint  `json:"recipientId" gorm:"not null;index"`
	Trip        *Trip `json:"trip,omitempty" gorm:"foreignKey:TripID"`
	Recipient   *User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}

// TableName specifies the table name
func (TripNotification) TableName() string {
	return "trip_notifications"
}
