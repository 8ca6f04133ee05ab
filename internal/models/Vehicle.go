// internal/models/vehicle.go
package models

import (
	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	VehicleNo           string `json:"vehicle_no"`
	VehicleRegistration string `json:"vehicle_registration"`
	InService           bool   `json:"in_service" gorm:"default:true"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}

// VehicleAssignment links a vehicle and a driver to a route. Only one
// assignment per vehicle is active at a time; assigning again deactivates the
// previous one.
type VehicleAssignment struct {
	gorm.Model
	VehicleID uint    `json:"vehicle_id" gorm:"index"`
	Vehicle   Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID  uint    `json:"driver_id" gorm:"index"`
	Driver    User    `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	RouteID   uint    `json:"route_id" gorm:"index"`

	IsActive  bool `json:"is_active" gorm:"default:true;index"`
	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}
