package store

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-backend/internal/model"
)

// unexpected returns business-rule failures untouched. Anything else is logged with the
// operation and record id and wrapped into a model.UnexpectedError.
func unexpected(log *zap.Logger, op string, id int64, err error) error {
	if err == nil || model.IsKnown(err) {
		return err
	}
	log.Error("unexpected failure", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	return &model.UnexpectedError{Op: op, ID: id, Err: err}
}

// notFound converts gorm.ErrRecordNotFound into a model.NotFoundError.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.NotFoundError{Entity: entity, ID: id}
	}
	return err
}
