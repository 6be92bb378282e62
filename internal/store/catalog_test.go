package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-backend/internal/model"
)

func TestSparePartStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	part, err := f.store.SpareParts.Create(ctx, SparePartInput{Code: " BRG-6204 ", Name: "Bearing 6204", Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, "BRG-6204", part.Code)

	got, err := f.store.SpareParts.Get(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)

	_, err = f.store.SpareParts.Create(ctx, SparePartInput{Code: "BRG-6204", Name: "Duplicate", Quantity: 1})
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = f.store.SpareParts.Create(ctx, SparePartInput{Code: "NEG", Name: "Negative", Quantity: -1})
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = f.store.SpareParts.Get(ctx, 31337)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	parts, err := f.store.SpareParts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestSparePartQuantityCheckConstraint(t *testing.T) {
	f := newFixture(t)
	part := f.part(t, 1)

	err := f.db.Model(&model.SparePart{}).Where("id = ?", part.ID).Update("quantity", -1).Error
	assert.Error(t, err)
	assert.Equal(t, 1, f.stock(t, part.ID))
}

func TestMachineReportStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t)

	first, err := f.store.MachineReports.Create(ctx, u.ID, MachineReportInput{MachineName: "Press 3", Description: "Leaking oil"})
	require.NoError(t, err)
	assert.Equal(t, MachineReportStatusOpen, first.Status)
	require.NotNil(t, first.User)
	assert.Equal(t, u.ID, first.User.ID)

	second, err := f.store.MachineReports.Create(ctx, u.ID, MachineReportInput{MachineName: "Lathe 1", Status: "Closed"})
	require.NoError(t, err)

	_, err = f.store.MachineReports.Create(ctx, u.ID, MachineReportInput{MachineName: "  "})
	assert.True(t, errors.Is(err, model.ErrValidation))

	reports, err := f.store.MachineReports.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)

	_, err = f.store.MachineReports.Get(ctx, 999)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestSubscriptionStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t)
	p1, p2 := f.part(t, 1), f.part(t, 2)
	sub := model.PushSubscription{Endpoint: "https://push.example.com/a", P256DH: "k1", Auth: "a1"}

	require.NoError(t, f.store.Subscriptions.Put(ctx, u.ID, sub, []int64{p1.ID, p2.ID}))
	ids, err := f.store.Subscriptions.SpareParts(ctx, u.ID, sub.Endpoint)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{p1.ID, p2.ID}, ids)

	sub.P256DH = "k2"
	require.NoError(t, f.store.Subscriptions.Put(ctx, u.ID, sub, []int64{p2.ID}))
	ids, err = f.store.Subscriptions.SpareParts(ctx, u.ID, sub.Endpoint)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2.ID}, ids)

	var stored model.PushSubscription
	require.NoError(t, f.db.First(&stored, "endpoint = ?", sub.Endpoint).Error)
	assert.Equal(t, "k2", stored.P256DH)

	err = f.store.Subscriptions.Put(ctx, u.ID, sub, []int64{999})
	assert.True(t, errors.Is(err, model.ErrValidation))

	require.NoError(t, f.store.Subscriptions.Delete(ctx, u.ID, sub.Endpoint))
	_, err = f.store.Subscriptions.SpareParts(ctx, u.ID, sub.Endpoint)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Zero(t, f.count(t, "subscription_spare_parts"))
}

func TestSubscriptionStore_ScopedToOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, other := f.user(t), f.user(t)
	p := f.part(t, 1)
	sub := model.PushSubscription{Endpoint: "https://push.example.com/owned", P256DH: "k", Auth: "a"}
	require.NoError(t, f.store.Subscriptions.Put(ctx, owner.ID, sub, []int64{p.ID}))

	err := f.store.Subscriptions.Put(ctx, other.ID, sub, nil)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "endpoint", verr.Field)

	_, err = f.store.Subscriptions.SpareParts(ctx, other.ID, sub.Endpoint)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	err = f.store.Subscriptions.Delete(ctx, other.ID, sub.Endpoint)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	var stored model.PushSubscription
	require.NoError(t, f.db.First(&stored, "endpoint = ?", sub.Endpoint).Error)
	assert.Equal(t, owner.ID, stored.UserID)

	ids, err := f.store.Subscriptions.SpareParts(ctx, owner.ID, sub.Endpoint)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, ids)
}
