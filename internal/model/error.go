package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")                      // 404
	ErrValidation            = errors.New("validation error")               // 400
	ErrInsufficientStock     = errors.New("insufficient stock")             // 422
	ErrHasDependentReports   = errors.New("user has machine reports")       // 409
	ErrHasDependentActions   = errors.New("user has actions")               // 409
	ErrSelfDeletionForbidden = errors.New("users cannot delete themselves") // 403
	ErrInvalidCredentials    = errors.New("invalid email or password")      // 401
	ErrUnexpected            = errors.New("unexpected error")               // 500
)

// NotFoundError reports a missing record.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError is returned when a consumption would drive a spare part below zero.
type InsufficientStockError struct {
	SparePartID int64
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("spare part %d: requested %d exceeds available stock (%d)", e.SparePartID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// HasDependentReportsError blocks deleting a user who created machine reports.
type HasDependentReportsError struct {
	UserID int64
	Count  int64
}

func (e *HasDependentReportsError) Error() string {
	return fmt.Sprintf("user %d has %d machine report(s)", e.UserID, e.Count)
}

func (e *HasDependentReportsError) Unwrap() error { return ErrHasDependentReports }

// HasDependentActionsError blocks deleting a user who performed actions.
type HasDependentActionsError struct {
	UserID int64
	Count  int64
}

func (e *HasDependentActionsError) Error() string {
	return fmt.Sprintf("user %d has %d action(s)", e.UserID, e.Count)
}

func (e *HasDependentActionsError) Unwrap() error { return ErrHasDependentActions }

// ValidationError describes input rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UnexpectedError wraps an unanticipated failure together with the operation and record id.
type UnexpectedError struct {
	Op  string
	ID  int64
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s (id %d): %v", e.Op, e.ID, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

func (e *UnexpectedError) Is(target error) bool { return target == ErrUnexpected }

// IsKnown reports whether err belongs to the business-rule taxonomy and can be shown as is.
func IsKnown(err error) bool {
	for _, kind := range []error{
		ErrNotFound,
		ErrValidation,
		ErrInsufficientStock,
		ErrHasDependentReports,
		ErrHasDependentActions,
		ErrSelfDeletionForbidden,
		ErrInvalidCredentials,
		ErrUnexpected,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
