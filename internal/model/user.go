package model

import "time"

// User is an account that can log in, own machine reports and perform actions.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:256;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Associations
	Roles          []Role          `json:"roles,omitempty" gorm:"many2many:user_roles;"`
	MachineReports []MachineReport `json:"-" gorm:"foreignKey:UserID"`
	Actions        []Action        `json:"-" gorm:"foreignKey:TechnicianID"`
}

// Role groups permissions that can be assigned to users.
type Role struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;size:64;not null"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions;"`
}

// Permission is a named capability such as "action-edit".
type Permission struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:64;not null"`
}
