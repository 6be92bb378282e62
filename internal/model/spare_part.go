package model

import "time"

// SparePart is an inventory item. Quantity is the stock currently on hand.
type SparePart struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;size:64;not null"`
	Name      string    `json:"name" gorm:"size:256;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:0;check:chk_spare_parts_quantity,quantity >= 0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
