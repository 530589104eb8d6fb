package inventory

import (
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillOfMaterial(t *testing.T) {
	legs := uuid.New()
	top := uuid.New()

	t.Run("creates BOM with lines", func(t *testing.T) {
		bom, err := NewBillOfMaterial("Table", "four legs and a top", []BOMLine{
			{ComponentID: legs, QuantityRequired: 4},
			{ComponentID: top, QuantityRequired: 1},
		}, testNow)

		require.NoError(t, err)
		assert.Equal(t, "Table", bom.Name)
		assert.Equal(t, 1, bom.Version)
		require.Len(t, bom.Components, 2)
		assert.Equal(t, bom.ID, bom.Components[0].BOMID)
		assert.True(t, bom.HasComponent(legs))
		assert.False(t, bom.HasComponent(uuid.New()))
	})

	t.Run("rejects duplicate components", func(t *testing.T) {
		_, err := NewBillOfMaterial("Table", "", []BOMLine{
			{ComponentID: legs, QuantityRequired: 4},
			{ComponentID: legs, QuantityRequired: 2},
		}, testNow)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "DUPLICATE_COMPONENT", domainErr.Code)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewBillOfMaterial("Table", "", []BOMLine{{ComponentID: legs, QuantityRequired: 0}}, testNow)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewBillOfMaterial("", "", nil, testNow)

		require.Error(t, err)
	})
}

func TestBillOfMaterial_ComponentIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	bom, err := NewBillOfMaterial("Chair", "", []BOMLine{
		{ComponentID: c, QuantityRequired: 1},
		{ComponentID: a, QuantityRequired: 1},
		{ComponentID: b, QuantityRequired: 1},
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{a, b, c}, bom.ComponentIDs())
}
