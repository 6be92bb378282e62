package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-backend/internal/model"
)

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.store.BootstrapAdmin(ctx, "", "", "", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created, "nothing configured")

	created, err = f.store.BootstrapAdmin(ctx, "", "root@example.com", "root-password", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := f.store.Users.Authenticate(ctx, "root@example.com", "root-password")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", admin.Name)

	perms, err := f.store.Users.Permissions(ctx, admin.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, model.AllPermissions, perms)

	created, err = f.store.BootstrapAdmin(ctx, "Again", "again@example.com", "again-password", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created, "users already exist")
}
