package models

import "gorm.io/gorm"

// CustomerDocument is a file reference attached to a customer (delivery
// instructions, standing invoices). Merges redirect these to the surviving
// customer along with the stops.
type CustomerDocument struct {
	gorm.Model
	CustomerID uint   `json:"customer_id" gorm:"index"`
	FileName   string `json:"file_name"`
	Title      string `json:"title"`
	UploadedBy uint   `json:"uploaded_by"`

	IsDeleted bool `json:"is_deleted" gorm:"default:false;index"`
}
