package models

import (
	"time"

	"gorm.io/gorm"
)

// Stop is a single customer visit within a route. Sequence defines delivery
// order and must stay unique within the route after any edit.
type Stop struct {
	gorm.Model

	RouteID    uint     `json:"route_id" gorm:"index"`
	CustomerID uint     `json:"customer_id" gorm:"index"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	Sequence int    `json:"sequence"`
	Status   string `json:"status" gorm:"default:PENDING"` // "PENDING", "ON_THE_WAY", "ARRIVED", "COMPLETED", "FAILED"

	// Free-text driver name carried over from spreadsheet uploads. Used as a
	// legacy assignment fallback when the route has no direct DriverID.
	DriverNameFromUpload string `json:"driver_name_from_upload" gorm:"index"`

	Address string `json:"address"`
	Notes   string `json:"notes"`

	Amount              float64 `json:"amount"`
	DriverPaymentAmount float64 `json:"driver_payment_amount"`
	PaymentCash         bool    `json:"payment_cash"`
	PaymentCheck        bool    `json:"payment_check"`
	PaymentCard         bool    `json:"payment_card"`
	IsCOD               bool    `json:"is_cod"`
	HasReturn           bool    `json:"has_return"`

	ArrivalTime    *time.Time `json:"arrival_time"`
	CompletionTime *time.Time `json:"completion_time"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}
