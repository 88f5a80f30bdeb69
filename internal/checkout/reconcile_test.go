package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/backup"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var handoff = Handoff{PaymentIntentID: "pi_123", Email: validEmail, Mobile: validPhone}

func TestReconcile_SubmitsBackup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.backup.Set(context.Background(), backup.CartKey,
		[]byte(`[{"key":"p1","_id":"p1","name":{"en":"Fries"},"price":20,"quantity":3,"producttype":"simple"}]`)))
	f.addProduct(t, "p1", 20, 3)

	err := f.orch.Reconcile(context.Background(), handoff)
	require.NoError(t, err)

	require.Len(t, f.orders.Orders, 1)
	order := f.orders.Orders[0]
	assert.Equal(t, "pi_123", order.PaymentIntentID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ProductID)
	assert.Equal(t, "Fries", order.Items[0].DisplayName)
	assert.Equal(t, 3, order.Items[0].Quantity)

	assert.False(t, f.backup.Has(backup.CartKey))
	assert.True(t, f.engine.Snapshot().IsEmpty())
}

func TestReconcile_NoBackup(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "p1", 20, 1)

	err := f.orch.Reconcile(context.Background(), handoff)
	assert.ErrorIs(t, err, ErrNoBackup)

	assert.Zero(t, f.orders.Count())
	assert.Zero(t, f.backup.Removes)
	assert.False(t, f.engine.Snapshot().IsEmpty(), "nothing else happens without a backup")
}

func TestReconcile_EmptyBackup(t *testing.T) {
	for _, raw := range []string{"", "[]"} {
		f := newFixture(t)
		require.NoError(t, f.backup.Set(context.Background(), backup.CartKey, []byte(raw)))

		err := f.orch.Reconcile(context.Background(), handoff)
		assert.ErrorIs(t, err, ErrNoBackup)
		assert.Zero(t, f.orders.Count())
	}
}

func TestReconcile_UndecodableBackup(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	f := newFixture(t)
	f.orch.log = zap.New(core)
	require.NoError(t, f.backup.Set(context.Background(), backup.CartKey, []byte(`[{"_id":`)))

	err := f.orch.Reconcile(context.Background(), handoff)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	assert.Zero(t, f.orders.Count())
	assert.False(t, f.backup.Has(backup.CartKey))
	assert.Equal(t, 1, logs.FilterMessage("cart backup is unreadable, dropping it").Len())
}

func TestReconcile_SubmitFailureStillCleansUp(t *testing.T) {
	f := newFixture(t)
	f.orders.Err = errors.New("orders service down")
	require.NoError(t, f.backup.Set(context.Background(), backup.CartKey,
		[]byte(`[{"_id":"p1","price":20,"quantity":1}]`)))
	f.addProduct(t, "p1", 20, 1)

	err := f.orch.Reconcile(context.Background(), handoff)
	assert.ErrorContains(t, err, "orders service down")

	assert.Equal(t, 1, f.orders.Count())
	assert.False(t, f.backup.Has(backup.CartKey))
	assert.True(t, f.engine.Snapshot().IsEmpty())
}

func TestReconcile_IncompleteHandoff(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.backup.Set(context.Background(), backup.CartKey, []byte(`[{"_id":"p1","quantity":1}]`)))

	for _, h := range []Handoff{
		{Email: validEmail, Mobile: validPhone},
		{PaymentIntentID: "pi_1", Mobile: validPhone},
		{PaymentIntentID: "pi_1", Email: validEmail},
	} {
		err := f.orch.Reconcile(context.Background(), h)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	assert.Zero(t, f.orders.Count())
	assert.True(t, f.backup.Has(backup.CartKey))
}

func TestReconcile_BackupReadError(t *testing.T) {
	f := newFixture(t)
	f.backup.GetErr = errors.New("io error")

	err := f.orch.Reconcile(context.Background(), handoff)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, f.orders.Count())
}

func TestReconcile_MealLines(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.backup.Set(context.Background(), backup.CartKey, []byte(`[{
		"_id":"meal1","name":{"en":"Combo"},"displayName":"Combo (Main: 2x Burger)",
		"price":100,"quantity":1,"producttype":"meal",
		"selectedCategories":[{"category":"Main","selectedItems":[
			{"product":{"_id":"b1","name":{"en":"Burger","ar":"برجر"},"price":40,"image":"b.png"},"quantity":2}
		]}]
	}]`)))

	require.NoError(t, f.orch.Reconcile(context.Background(), handoff))

	require.Len(t, f.orders.Orders, 1)
	line := f.orders.Orders[0].Items[0]
	assert.Equal(t, "Combo (Main: 2x Burger)", line.DisplayName)
	require.Len(t, line.SelectedCategories, 1)
	sub := line.SelectedCategories[0].SelectedItems
	require.Len(t, sub, 1)
	assert.Equal(t, "Burger", sub[0].Name)
	assert.Equal(t, 2, sub[0].Quantity)
	assert.Equal(t, "b.png", sub[0].Image)
}
