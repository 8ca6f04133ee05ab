package models

import (
	"time"

	"gorm.io/gorm"
)

// SystemDocument is a policy or notice distributed to drivers. Required
// active documents must be acknowledged before a driver starts a route.
type SystemDocument struct {
	gorm.Model

	Title      string `json:"title"`
	Body       string `json:"body"`
	Version    string `json:"version"`
	IsRequired bool   `json:"is_required" gorm:"default:false"`
	IsActive   bool   `json:"is_active" gorm:"default:true;index"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}

// DocumentAcknowledgment ties a driver (and optionally a route) to a
// document. The composite unique index enforces once-per-(document, driver,
// route) at the database, so concurrent duplicate submissions collapse to one
// row.
type DocumentAcknowledgment struct {
	gorm.Model

	DocumentID uint           `json:"document_id" gorm:"index;uniqueIndex:idx_ack_once"`
	Document   SystemDocument `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	DriverID   uint           `json:"driver_id" gorm:"index;uniqueIndex:idx_ack_once"`
	RouteID    *uint          `json:"route_id" gorm:"uniqueIndex:idx_ack_once"`

	AcknowledgedAt time.Time `json:"acknowledged_at"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
}
