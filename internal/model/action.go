package model

import "time"

// ActionStatus is the progress of a repair action.
type ActionStatus string

const (
	ActionPending    ActionStatus = "Pending"
	ActionInProgress ActionStatus = "In Progress"
	ActionCompleted  ActionStatus = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionPending, ActionInProgress, ActionCompleted:
		return true
	}
	return false
}

// Action is a single repair or maintenance activity performed by a technician.
type Action struct {
	ID           int64        `json:"id" gorm:"primaryKey"`
	Status       ActionStatus `json:"status" gorm:"size:32;not null;index"`
	Description  string       `json:"description" gorm:"type:text"`
	Date         time.Time    `json:"date" gorm:"not null"`
	TechnicianID int64        `json:"technician_id" gorm:"not null;index"`
	SparePartID  *int64       `json:"spare_part_id" gorm:"index"`
	Quantity     int          `json:"quantity" gorm:"not null;default:0"`
	CreatedAt    time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Associations
	Technician     *User           `json:"technician,omitempty" gorm:"foreignKey:TechnicianID;constraint:OnDelete:RESTRICT"`
	SparePart      *SparePart      `json:"spare_part,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	MachineReports []MachineReport `json:"machine_reports,omitempty" gorm:"many2many:action_machine_reports;"`
	Images         []ActionImage   `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// ActionImage references an uploaded photo that belongs to an action.
type ActionImage struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ActionID  int64     `json:"action_id" gorm:"not null;index"`
	FilePath  string    `json:"file_path" gorm:"size:512;not null"`
	CreatedAt time.Time `json:"created_at"`
}
