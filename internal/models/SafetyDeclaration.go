package models

import (
	"time"

	"gorm.io/gorm"
)

// SafetyDeclaration records a driver signing off the pre-trip safety
// checklist. The composite unique index makes repeat submissions a database
// conflict instead of a find-then-create race.
type SafetyDeclaration struct {
	gorm.Model

	DriverID        uint   `json:"driver_id" gorm:"index;uniqueIndex:idx_safety_once"`
	RouteID         *uint  `json:"route_id" gorm:"uniqueIndex:idx_safety_once"`
	DeclarationType string `json:"declaration_type" gorm:"uniqueIndex:idx_safety_once"`

	VehicleChecked bool `json:"vehicle_checked"`
	LoadSecured    bool `json:"load_secured"`
	RestCompliant  bool `json:"rest_compliant"`
	FitToDrive     bool `json:"fit_to_drive"`
	LicenseValid   bool `json:"license_valid"`

	Signature      string    `json:"signature"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
}
