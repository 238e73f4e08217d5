package models

import "gorm.io/gorm"

// GoodsReceipt records goods-receipt documents uploaded by a driver
// during a trip. Files are storage URLs.
type GoodsReceipt struct {
	gorm.Model
	TripID        uint     `json:"tripId" gorm:"not null;index"`
	VehicleNumber string   `json:"vehicleNumber" gorm:"not null"`
	DriverID      uint     `json:"driverId" gorm:"not null;index"`
	Files         []string `json:"grFiles" gorm:"serializer:json;type:jsonb"`
	Latitude      float64  `json:"lat"`
	Longitude     float64  `json:"lng"`
}

// TableName specifies the table name
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// BillReceipt records billing documents uploaded by a driver.
type BillReceipt struct {
	gorm.Model
	TripID        uint     `json:"tripId" gorm:"not null;index"`
	VehicleNumber string   `json:"vehicleNumber" gorm:"not null"`
	DriverID      uint     `json:"driverId" gorm:"not null;index"`
	Files         []string `json:"billFiles" gorm:"serializer:json;type:jsonb"`
	Latitude      float64  `json:"lat"`
	Longitude     float64  `json:"lng"`
}

// TableName specifies the table name
func (BillReceipt) TableName() string {
	return "bill_receipts"
}
