package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-backend/internal/model"
)

// UserStore manages accounts, their roles and the rules for removing them.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Update(ctx context.Context, id int64, in UserInput) (*model.User, error)
	// CanDelete reports, without writing anything, why actorID may not delete userID.
	CanDelete(ctx context.Context, userID, actorID int64) error
	Delete(ctx context.Context, userID, actorID int64) error
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Permissions(ctx context.Context, userID int64) ([]string, error)
	Roles(ctx context.Context) ([]model.Role, error)
	Count(ctx context.Context) (int64, error)
}

type gormUserStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserStore creates a GORM-backed UserStore.
func NewUserStore(db *gorm.DB, log *zap.Logger) UserStore {
	return &gormUserStore{db: db, log: log}
}

// List returns every user with their roles, ordered by name.
func (s *gormUserStore) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.WithContext(ctx).Preload("Roles").Order("name").Order("id").Find(&users).Error; err != nil {
		return nil, unexpected(s.log, "user.List", 0, err)
	}
	return users, nil
}

// Get returns one user with their roles.
func (s *gormUserStore) Get(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		return nil, unexpected(s.log, "user.Get", id, notFound(err, "user", id))
	}
	return &user, nil
}

// Create adds a user with a bcrypt-hashed password and the given roles.
func (s *gormUserStore) Create(ctx context.Context, in UserInput) (*model.User, error) {
	const op = "user.Create"

	if err := in.validate(true); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, unexpected(s.log, op, 0, fmt.Errorf("failed to hash password: %w", err))
	}

	user := model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, user.Email, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		if len(in.RoleIDs) > 0 {
			return replaceRoles(tx, &user, in.RoleIDs)
		}
		return nil
	})
	if err != nil {
		return nil, unexpected(s.log, op, user.ID, err)
	}

	s.log.Info("user created", zap.Int64("user_id", user.ID))
	return s.Get(ctx, user.ID)
}

// Update changes a user's profile, and optionally their password and roles.
func (s *gormUserStore) Update(ctx context.Context, id int64, in UserInput) (*model.User, error) {
	const op = "user.Update"

	if err := in.validate(false); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":  strings.TrimSpace(in.Name),
		"email": normalizeEmail(in.Email),
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, unexpected(s.log, op, id, fmt.Errorf("failed to hash password: %w", err))
		}
		updates["password_hash"] = string(hash)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return notFound(err, "user", id)
		}
		if err := ensureEmailFree(tx, normalizeEmail(in.Email), id); err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user %d: %w", id, err)
		}
		if in.RoleIDs != nil {
			return replaceRoles(tx, &user, in.RoleIDs)
		}
		return nil
	})
	if err != nil {
		return nil, unexpected(s.log, op, id, err)
	}

	s.log.Info("user updated", zap.Int64("user_id", id))
	return s.Get(ctx, id)
}

// CanDelete runs the deletion checks in order: existence, machine reports, actions, self.
func (s *gormUserStore) CanDelete(ctx context.Context, userID, actorID int64) error {
	return unexpected(s.log, "user.CanDelete", userID, checkDeletable(s.db.WithContext(ctx), userID, actorID, false))
}

// Delete removes a user who passes every CanDelete check, together with their role
// assignments and push subscriptions.
func (s *gormUserStore) Delete(ctx context.Context, userID, actorID int64) error {
	const op = "user.Delete"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDeletable(tx, userID, actorID, true); err != nil {
			return err
		}

		user := model.User{ID: userID}
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return fmt.Errorf("failed to clear roles of user %d: %w", userID, err)
		}

		if err := tx.Exec(
			"DELETE FROM subscription_spare_parts WHERE push_subscription_endpoint IN (SELECT endpoint FROM push_subscriptions WHERE user_id = ?)",
			userID,
		).Error; err != nil {
			return fmt.Errorf("failed to clear subscription spare parts of user %d: %w", userID, err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete push subscriptions of user %d: %w", userID, err)
		}

		res := tx.Delete(&user)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user %d: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return &model.NotFoundError{Entity: "user", ID: userID}
		}
		return nil
	})
	if err != nil {
		return unexpected(s.log, op, userID, err)
	}

	s.log.Info("user deleted", zap.Int64("user_id", userID), zap.Int64("actor_id", actorID))
	return nil
}

func checkDeletable(tx *gorm.DB, userID, actorID int64, lock bool) error {
	q := tx.Select("id")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user model.User
	if err := q.First(&user, userID).Error; err != nil {
		return notFound(err, "user", userID)
	}

	var reports int64
	if err := tx.Model(&model.MachineReport{}).Where("user_id = ?", userID).Count(&reports).Error; err != nil {
		return fmt.Errorf("failed to count machine reports of user %d: %w", userID, err)
	}
	if reports > 0 {
		return &model.HasDependentReportsError{UserID: userID, Count: reports}
	}

	var actions int64
	if err := tx.Model(&model.Action{}).Where("technician_id = ?", userID).Count(&actions).Error; err != nil {
		return fmt.Errorf("failed to count actions of user %d: %w", userID, err)
	}
	if actions > 0 {
		return &model.HasDependentActionsError{UserID: userID, Count: actions}
	}

	if userID == actorID {
		return model.ErrSelfDeletionForbidden
	}
	return nil
}

// Authenticate returns the user matching the credentials, or model.ErrInvalidCredentials.
func (s *gormUserStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, unexpected(s.log, "user.Authenticate", 0, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return &user, nil
}

// Permissions returns the distinct permission names granted to a user through their roles.
func (s *gormUserStore) Permissions(ctx context.Context, userID int64) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).
		Model(&model.Permission{}).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Joins("JOIN user_roles ur ON ur.role_id = rp.role_id").
		Where("ur.user_id = ?", userID).
		Distinct().
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, unexpected(s.log, "user.Permissions", userID, err)
	}
	return names, nil
}

// Roles returns every role with its permissions.
func (s *gormUserStore) Roles(ctx context.Context) ([]model.Role, error) {
	roles := []model.Role{}
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&roles).Error; err != nil {
		return nil, unexpected(s.log, "user.Roles", 0, err)
	}
	return roles, nil
}

// Count returns the number of users.
func (s *gormUserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, unexpected(s.log, "user.Count", 0, err)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree fails when another user than exceptID already uses the address.
func ensureEmailFree(tx *gorm.DB, email string, exceptID int64) error {
	var n int64
	if err := tx.Model(&model.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if n > 0 {
		return &model.ValidationError{Field: "email", Reason: "is already taken"}
	}
	return nil
}

func replaceRoles(tx *gorm.DB, user *model.User, ids []int64) error {
	ids = uniqueIDs(ids)
	roles := []model.Role{}
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&roles).Error; err != nil {
			return fmt.Errorf("failed to load roles: %w", err)
		}
		if len(roles) != len(ids) {
			return &model.ValidationError{Field: "role_ids", Reason: "references an unknown role"}
		}
	}
	if len(roles) == 0 {
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return fmt.Errorf("failed to clear roles of user %d: %w", user.ID, err)
		}
		return nil
	}
	if err := tx.Model(user).Association("Roles").Replace(&roles); err != nil {
		return fmt.Errorf("failed to assign roles to user %d: %w", user.ID, err)
	}
	return nil
}
