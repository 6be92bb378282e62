package db

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-backend/internal/model"
)

// schemaModels lists every table owned by the application, parents first.
func schemaModels() []any {
	return []any{
		&model.Permission{},
		&model.Role{},
		&model.User{},
		&model.SparePart{},
		&model.MachineReport{},
		&model.Action{},
		&model.ActionImage{},
		&model.PushSubscription{},
	}
}

const sparePartQuantityCheck = "chk_spare_parts_quantity"

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202501150001_spare_part_quantity_check",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasConstraint(&model.SparePart{}, sparePartQuantityCheck) {
					return nil
				}
				return tx.Migrator().CreateConstraint(&model.SparePart{}, sparePartQuantityCheck)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropConstraint(&model.SparePart{}, sparePartQuantityCheck)
			},
		},
	}
}

// Migrate creates the schema on an empty database, or applies pending migrations otherwise.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())

	m.InitSchema(func(tx *gorm.DB) error {
		log.Info("clean database detected, running full schema initialization")
		if err := tx.AutoMigrate(schemaModels()...); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}
		return seedRoles(tx)
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// seedRoles inserts every permission plus the admin and technician roles.
func seedRoles(tx *gorm.DB) error {
	perms := make([]model.Permission, 0, len(model.AllPermissions))
	for _, name := range model.AllPermissions {
		perms = append(perms, model.Permission{Name: name})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perms).Error; err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}

	roles := map[string][]string{
		model.RoleAdmin:      model.AllPermissions,
		model.RoleTechnician: model.TechnicianPermissions,
	}
	for name, permNames := range roles {
		role := model.Role{Name: name}
		if err := tx.Where(model.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}

		var granted []model.Permission
		if err := tx.Where("name IN ?", permNames).Find(&granted).Error; err != nil {
			return fmt.Errorf("failed to load permissions for role %s: %w", name, err)
		}
		if err := tx.Model(&role).Association("Permissions").Replace(&granted); err != nil {
			return fmt.Errorf("failed to grant permissions to role %s: %w", name, err)
		}
	}
	return nil
}
