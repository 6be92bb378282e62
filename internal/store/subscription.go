package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-backend/internal/model"
)

// SubscriptionStore keeps the browser push subscriptions used for low-stock alerts.
type SubscriptionStore interface {
	// Put creates or replaces the user's subscription and the spare parts it watches.
	// An endpoint registered to another user is rejected.
	Put(ctx context.Context, userID int64, sub model.PushSubscription, sparePartIDs []int64) error
	// SpareParts returns the ids of the spare parts watched by the user's endpoint.
	SpareParts(ctx context.Context, userID int64, endpoint string) ([]int64, error)
	Delete(ctx context.Context, userID int64, endpoint string) error
}

type gormSubscriptionStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSubscriptionStore creates a GORM-backed SubscriptionStore.
func NewSubscriptionStore(db *gorm.DB, log *zap.Logger) SubscriptionStore {
	return &gormSubscriptionStore{db: db, log: log}
}

func (s *gormSubscriptionStore) Put(ctx context.Context, userID int64, sub model.PushSubscription, sparePartIDs []int64) error {
	sub.UserID = userID
	sub.SpareParts = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PushSubscription
		err := tx.Select("endpoint", "user_id").Where("endpoint = ?", sub.Endpoint).Take(&existing).Error
		switch {
		case err == nil && existing.UserID != userID:
			return &model.ValidationError{Field: "endpoint", Reason: "is registered to another user"}
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to look up subscription: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		ids := uniqueIDs(sparePartIDs)
		parts := []*model.SparePart{}
		if len(ids) > 0 {
			if err := tx.Find(&parts, ids).Error; err != nil {
				return fmt.Errorf("failed to load spare parts: %w", err)
			}
			if len(parts) != len(ids) {
				return &model.ValidationError{Field: "spare_part_ids", Reason: "references an unknown spare part"}
			}
		}

		if len(parts) == 0 {
			return tx.Model(&sub).Association("SpareParts").Clear()
		}
		return tx.Model(&sub).Association("SpareParts").Replace(&parts)
	})
	return unexpected(s.log, "subscription.Put", userID, err)
}

func (s *gormSubscriptionStore) SpareParts(ctx context.Context, userID int64, endpoint string) ([]int64, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).
		Preload("SpareParts").
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		Take(&sub).Error
	if err != nil {
		return nil, unexpected(s.log, "subscription.SpareParts", userID, notFound(err, "subscription", 0))
	}

	ids := make([]int64, len(sub.SpareParts))
	for i, part := range sub.SpareParts {
		ids[i] = part.ID
	}
	return ids, nil
}

func (s *gormSubscriptionStore) Delete(ctx context.Context, userID int64, endpoint string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.PushSubscription
		if err := tx.Where("endpoint = ? AND user_id = ?", endpoint, userID).Take(&sub).Error; err != nil {
			return notFound(err, "subscription", 0)
		}
		if err := tx.Model(&sub).Association("SpareParts").Clear(); err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
	return unexpected(s.log, "subscription.Delete", userID, err)
}
