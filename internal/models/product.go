package models

import "time"

// Product is a single inventory record. InternalCode and Barcode are
// optional but unique when set; PublicID is a stable identifier generated
// at creation time and safe to print on labels.
type Product struct {
	ID           int64     `json:"id"`
	PublicID     string    `json:"public_id"`
	Name         string    `json:"name"`
	InternalCode string    `json:"internal_code,omitempty"`
	Barcode      string    `json:"barcode,omitempty"`
	Description  string    `json:"description,omitempty"`
	Quantity     int       `json:"quantity"`
	Location     string    `json:"location,omitempty"`
	Category     string    `json:"category,omitempty"`
	Price        *float64  `json:"price"`
	Supplier     string    `json:"supplier,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
