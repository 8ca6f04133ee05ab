package models

import "gorm.io/gorm"

// Customer is a delivery recipient. Duplicate customers (same name) may be
// merged: one primary survives, the others are soft-deleted and their stops
// and acknowledgments are redirected to the primary.
type Customer struct {
	gorm.Model
	Name        string `json:"name" gorm:"index"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
	Email       string `json:"email"`
	Preferences string `json:"preferences"`
	GroupCode   string `json:"group_code"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}
