package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-backend/internal/model"
)

// SparePartStore manages the inventory catalogue. Stock levels change only through the Ledger.
type SparePartStore interface {
	Create(ctx context.Context, in SparePartInput) (*model.SparePart, error)
	Get(ctx context.Context, id int64) (*model.SparePart, error)
	List(ctx context.Context) ([]model.SparePart, error)
}

type gormSparePartStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSparePartStore creates a GORM-backed SparePartStore.
func NewSparePartStore(db *gorm.DB, log *zap.Logger) SparePartStore {
	return &gormSparePartStore{db: db, log: log}
}

func (s *gormSparePartStore) Create(ctx context.Context, in SparePartInput) (*model.SparePart, error) {
	const op = "sparepart.Create"

	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	switch {
	case code == "":
		return nil, &model.ValidationError{Field: "code", Reason: "is required"}
	case name == "":
		return nil, &model.ValidationError{Field: "name", Reason: "is required"}
	case in.Quantity < 0:
		return nil, &model.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	part := model.SparePart{Code: code, Name: name, Quantity: in.Quantity}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.SparePart{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check spare part code: %w", err)
		}
		if n > 0 {
			return &model.ValidationError{Field: "code", Reason: "is already taken"}
		}
		if err := tx.Create(&part).Error; err != nil {
			return fmt.Errorf("failed to insert spare part: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, unexpected(s.log, op, 0, err)
	}

	s.log.Info("spare part created", zap.Int64("spare_part_id", part.ID), zap.Int("quantity", part.Quantity))
	return &part, nil
}

func (s *gormSparePartStore) Get(ctx context.Context, id int64) (*model.SparePart, error) {
	var part model.SparePart
	if err := s.db.WithContext(ctx).First(&part, id).Error; err != nil {
		return nil, unexpected(s.log, "sparepart.Get", id, notFound(err, "spare part", id))
	}
	return &part, nil
}

func (s *gormSparePartStore) List(ctx context.Context) ([]model.SparePart, error) {
	parts := []model.SparePart{}
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&parts).Error; err != nil {
		return nil, unexpected(s.log, "sparepart.List", 0, err)
	}
	return parts, nil
}
