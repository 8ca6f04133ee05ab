package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverLocation is an append-only log of driver GPS fixes. Rows are never
// updated or soft-deleted; the maintenance job purges them past the retention
// window.
type DriverLocation struct {
	gorm.Model
	DriverID  uint      `json:"driver_id" gorm:"index"`
	StopID    *uint     `json:"stop_id"`
	RouteID   *uint     `json:"route_id" gorm:"index"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // GPS accuracy in meters
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}
