package inventory

import (
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableFixture is a BOM needing 4 legs and 1 top per table
func tableFixture(t *testing.T, legsOnHand, topsOnHand int64) (*BillOfMaterial, *Component, *Component, map[uuid.UUID]*Component) {
	t.Helper()
	legs := createTestComponent(t, "legs", legsOnHand)
	top := createTestComponent(t, "top", topsOnHand)
	bom, err := NewBillOfMaterial("Table", "", []BOMLine{
		{ComponentID: legs.ID, QuantityRequired: 4},
		{ComponentID: top.ID, QuantityRequired: 1},
	}, testNow)
	require.NoError(t, err)
	return bom, legs, top, map[uuid.UUID]*Component{legs.ID: legs, top.ID: top}
}

func TestBOMResolver_ResolveRequirements(t *testing.T) {
	resolver := NewBOMResolver()

	t.Run("computes required and shortage per line", func(t *testing.T) {
		bom, legs, top, stock := tableFixture(t, 10, 1)

		reqs, err := resolver.ResolveRequirements(bom, 3, stock)

		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, Requirement{ComponentID: legs.ID, ComponentName: "legs", Required: 12, Available: 10, Shortage: 2}, reqs[0])
		assert.Equal(t, Requirement{ComponentID: top.ID, ComponentName: "top", Required: 3, Available: 1, Shortage: 2}, reqs[1])
		assert.Len(t, reqs.Shortages(), 2)
	})

	t.Run("no shortage when stock covers", func(t *testing.T) {
		bom, _, _, stock := tableFixture(t, 10, 5)

		reqs, err := resolver.ResolveRequirements(bom, 2, stock)

		require.NoError(t, err)
		assert.Empty(t, reqs.Shortages())
		assert.Nil(t, reqs.FirstShortage())
	})

	t.Run("fails when a component is missing", func(t *testing.T) {
		bom, legs, _, _ := tableFixture(t, 10, 5)

		_, err := resolver.ResolveRequirements(bom, 1, map[uuid.UUID]*Component{legs.ID: legs})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		bom, _, _, stock := tableFixture(t, 10, 5)

		_, err := resolver.ResolveRequirements(bom, 0, stock)

		require.Error(t, err)
	})

	t.Run("rejects quantity whose requirement overflows", func(t *testing.T) {
		bom, _, _, stock := tableFixture(t, 10, 5)

		_, err := resolver.ResolveRequirements(bom, 1<<62+1, stock)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})
}

func TestBOMResolver_Consume(t *testing.T) {
	resolver := NewBOMResolver()

	t.Run("overflowing quantity consumes nothing", func(t *testing.T) {
		bom, legs, top, stock := tableFixture(t, 10, 5)

		movements, err := resolver.Consume(bom, 1<<62+1, stock, "Consumed for MO-001 - Table", testNow)

		assert.Nil(t, movements)
		require.Error(t, err)
		assert.Equal(t, int64(10), legs.QuantityOnHand)
		assert.Equal(t, int64(5), top.QuantityOnHand)
	})

	t.Run("insufficient legs consumes nothing", func(t *testing.T) {
		bom, legs, top, stock := tableFixture(t, 10, 1)

		movements, err := resolver.Consume(bom, 3, stock, "Consumed for MO-001 - Table", testNow)

		assert.Nil(t, movements)
		var stockErr *shared.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, "legs", stockErr.ComponentName)
		assert.Equal(t, int64(12), stockErr.Required)
		assert.Equal(t, int64(10), stockErr.Available)
		assert.Equal(t, int64(10), legs.QuantityOnHand)
		assert.Equal(t, int64(1), top.QuantityOnHand)
	})

	t.Run("short on the last line leaves earlier lines untouched", func(t *testing.T) {
		bom, legs, top, stock := tableFixture(t, 100, 0)

		_, err := resolver.Consume(bom, 1, stock, "ref", testNow)

		require.Error(t, err)
		assert.Equal(t, int64(100), legs.QuantityOnHand)
		assert.Equal(t, int64(0), top.QuantityOnHand)
		assert.Empty(t, legs.GetDomainEvents())
	})

	t.Run("sufficient stock posts one OUT per line", func(t *testing.T) {
		bom, legs, top, stock := tableFixture(t, 10, 2)

		movements, err := resolver.Consume(bom, 2, stock, "Consumed for MO-002 - Table", testNow)

		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.Equal(t, MovementTypeOut, movements[0].Type)
		assert.Equal(t, int64(8), movements[0].Quantity)
		assert.Equal(t, int64(2), movements[1].Quantity)
		assert.Equal(t, "Consumed for MO-002 - Table", movements[1].Reference)
		assert.Equal(t, int64(2), legs.QuantityOnHand)
		assert.Equal(t, int64(0), top.QuantityOnHand)
	})
}
