package models

import (
	"time"

	"gorm.io/gorm"
)

// Route is an ordered set of stops for a delivery date, optionally owned by a
// driver via DriverID. Stops whose route has no direct owner fall back to
// name-hint matching (see Stop.DriverNameFromUpload).
type Route struct {
	gorm.Model

	RouteNumber string    `json:"route_number" gorm:"index"`
	Date        time.Time `json:"date" gorm:"index"`
	Status      string    `json:"status" gorm:"default:PENDING"` // "PENDING", "IN_PROGRESS", "COMPLETED", "CANCELLED"
	DriverID    *uint     `json:"driver_id" gorm:"index"`
	Driver      *User     `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	Stops []Stop `gorm:"foreignKey:RouteID" json:"stops,omitempty"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}
