package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-backend/config"
	"maintenance-backend/internal/model"
)

func TestInit_SQLiteSeedsRoles(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}

	gormDB, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	var perms int64
	require.NoError(t, gormDB.Model(&model.Permission{}).Count(&perms).Error)
	assert.Equal(t, int64(len(model.AllPermissions)), perms)

	var admin model.Role
	require.NoError(t, gormDB.Preload("Permissions").Where("name = ?", model.RoleAdmin).First(&admin).Error)
	assert.Len(t, admin.Permissions, len(model.AllPermissions))

	var technician model.Role
	require.NoError(t, gormDB.Preload("Permissions").Where("name = ?", model.RoleTechnician).First(&technician).Error)
	assert.Len(t, technician.Permissions, len(model.TechnicianPermissions))

	// A second run finds the schema up to date.
	require.NoError(t, Migrate(gormDB, zap.NewNop()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
