package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	// Uniqueness among live users is a partial index created in InitDB; a
	// soft-deleted account releases its username.
	Username string `json:"username" gorm:"index"`
	Password string `json:"-"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // "DRIVER", "ADMIN", "SUPER_ADMIN"

	// Soft delete. Records are never removed; every read must filter on this.
	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}
