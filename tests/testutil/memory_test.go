package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
)

var memoryNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestMemoryStore_ComponentVersionCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c, err := inventory.NewComponent("Leg", decimal.NewFromInt(5), "", 0, memoryNow)
	require.NoError(t, err)
	require.NoError(t, store.Components().Save(ctx, c))

	first, err := store.Components().FindByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := store.Components().FindByID(ctx, c.ID)
	require.NoError(t, err)

	_, err = first.Receive(3, "po", memoryNow)
	require.NoError(t, err)
	require.NoError(t, store.Components().Save(ctx, first))

	_, err = second.Receive(4, "po", memoryNow)
	require.NoError(t, err)
	err = store.Components().Save(ctx, second)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.CodeOptimisticLockFailed, domainErr.Code)

	stored, err := store.Components().FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.QuantityOnHand)
}

func TestMemoryStore_SeedComponentKeepsLedger(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c, err := inventory.NewComponent("Screw", decimal.Zero, "", 0, memoryNow)
	require.NoError(t, err)
	c.QuantityOnHand = 40

	store.SeedComponent(c)

	sum, err := store.StockMovements().SumDeltaByComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sum)
}

func TestMemoryStore_OrdersAndWorkOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	bomID := uuid.New()

	for _, id := range []string{"MO-001", "MO-007"} {
		mo, err := manufacturing.NewManufacturingOrder(id, "Table", 1, bomID, memoryNow.Add(72*time.Hour), "", "", memoryNow)
		require.NoError(t, err)
		require.NoError(t, store.ManufacturingOrders().Create(ctx, mo))
	}

	highest, err := store.ManufacturingOrders().MaxOrderSequence(ctx, "MO")
	require.NoError(t, err)
	assert.Equal(t, 7, highest)

	duplicate, err := manufacturing.NewManufacturingOrder("MO-001", "Chair", 1, bomID, memoryNow.Add(time.Hour), "", "", memoryNow)
	require.NoError(t, err)
	assert.ErrorIs(t, store.ManufacturingOrders().Create(ctx, duplicate), shared.ErrConcurrencyConflict)

	wo, err := manufacturing.NewWorkOrder("MO-001", "Assembly - Table", 1, 0, memoryNow)
	require.NoError(t, err)
	require.NoError(t, store.WorkOrders().Save(ctx, wo))

	count, err := store.ManufacturingOrders().CountByBOM(ctx, bomID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, store.ManufacturingOrders().Delete(ctx, "MO-001"))
	_, err = store.WorkOrders().FindByID(ctx, wo.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
