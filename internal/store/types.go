package store

import (
	"io"
	"strings"
	"time"

	"maintenance-backend/internal/model"
)

// ActionInput carries the writable fields of an action. The technician is never part of it:
// it is always the acting user.
type ActionInput struct {
	Status      model.ActionStatus
	Description string
	Date        time.Time
	SparePartID *int64
	Quantity    int
	// MachineReportIDs replaces the linked reports. On update, nil keeps the current links.
	MachineReportIDs []int64
}

func (in ActionInput) validate() error {
	if !in.Status.Valid() {
		return &model.ValidationError{Field: "status", Reason: "must be one of Pending, In Progress, Completed"}
	}
	if in.Date.IsZero() {
		return &model.ValidationError{Field: "date", Reason: "is required"}
	}
	if in.Quantity < 0 {
		return &model.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}

// quantity is the amount consumed from the spare part; it is zero when no part is referenced.
func (in ActionInput) quantity() int {
	if in.SparePartID == nil {
		return 0
	}
	return in.Quantity
}

// Attachment is an uploaded file to be stored alongside an action.
type Attachment struct {
	Filename string
	Content  io.Reader
}

// UserInput carries the writable fields of a user account.
type UserInput struct {
	Name  string
	Email string
	// Password is required on create. On update an empty password keeps the current one.
	Password string
	// RoleIDs replaces the assigned roles. On update, nil keeps the current roles.
	RoleIDs []int64
}

func (in UserInput) validate(creating bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return &model.ValidationError{Field: "name", Reason: "is required"}
	}
	if !strings.Contains(in.Email, "@") {
		return &model.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if creating && len(in.Password) < 8 {
		return &model.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if !creating && in.Password != "" && len(in.Password) < 8 {
		return &model.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}

// SparePartInput describes a new inventory item and its initial stock.
type SparePartInput struct {
	Code     string
	Name     string
	Quantity int
}

// MachineReportInput describes a new machine condition report.
type MachineReportInput struct {
	MachineName string
	Description string
	Status      string
}

// StockAlerter receives spare parts whose stock fell to the low-stock threshold.
type StockAlerter interface {
	Dispatch(sparePartID int64)
}

// stockLevels records the quantity left on each spare part consumed by a transaction.
type stockLevels map[int64]int

func (s stockLevels) record(sparePartID int64, left int) {
	s[sparePartID] = left
}

// uniqueIDs drops duplicates while keeping the first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
