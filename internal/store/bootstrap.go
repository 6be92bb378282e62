package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"maintenance-backend/internal/model"
)

// BootstrapAdmin creates an administrator when the user table is empty, so a fresh
// installation can be logged into. It reports whether a user was created.
func (s *Store) BootstrapAdmin(ctx context.Context, name, email, password string, log *zap.Logger) (bool, error) {
	n, err := s.Users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if email == "" || password == "" {
		log.Warn("user table is empty and no bootstrap admin is configured")
		return false, nil
	}

	var role model.Role
	if err := s.db.WithContext(ctx).Where("name = ?", model.RoleAdmin).First(&role).Error; err != nil {
		return false, fmt.Errorf("failed to load admin role: %w", err)
	}
	if name == "" {
		name = "Administrator"
	}

	user, err := s.Users.Create(ctx, UserInput{
		Name:     name,
		Email:    email,
		Password: password,
		RoleIDs:  []int64{role.ID},
	})
	if err != nil {
		return false, err
	}
	log.Info("bootstrap administrator created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}
