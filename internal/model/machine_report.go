package model

import "time"

// MachineReport describes the reported condition of a machine.
type MachineReport struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"not null;index"`
	MachineName string    `json:"machine_name" gorm:"size:256;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:32;not null;default:'Open'"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	User *User `json:"user,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
}
