package manufacturing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkCenter(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		wc, err := NewWorkCenter("Assembly line", "", decimal.NewFromInt(40), 0, decimal.Zero, testNow)

		require.NoError(t, err)
		assert.Equal(t, 1, wc.Capacity)
		assert.True(t, decimal.NewFromInt(1).Equal(wc.Efficiency))
		assert.True(t, wc.IsActive)
	})

	t.Run("rejects invalid rates", func(t *testing.T) {
		_, err := NewWorkCenter("Paint", "", decimal.NewFromInt(-1), 1, decimal.NewFromInt(1), testNow)
		require.Error(t, err)
		_, err = NewWorkCenter("Paint", "", decimal.Zero, -2, decimal.NewFromInt(1), testNow)
		require.Error(t, err)
		_, err = NewWorkCenter("", "", decimal.Zero, 1, decimal.NewFromInt(1), testNow)
		require.Error(t, err)
	})
}

func TestWorkCenter_Update(t *testing.T) {
	wc, err := NewWorkCenter("Assembly line", "", decimal.NewFromInt(40), 2, decimal.NewFromFloat(0.9), testNow)
	require.NoError(t, err)
	cost := decimal.NewFromInt(55)
	capacity := 0

	err = wc.Update(WorkCenterUpdate{CostPerHour: &cost, Capacity: &capacity}, testNow)
	require.Error(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(wc.CostPerHour))

	capacity = 3
	require.NoError(t, wc.Update(WorkCenterUpdate{CostPerHour: &cost, Capacity: &capacity}, testNow))
	assert.True(t, cost.Equal(wc.CostPerHour))
	assert.Equal(t, 3, wc.Capacity)

	wc.Deactivate(testNow)
	assert.False(t, wc.IsActive)
	wc.Activate(testNow)
	assert.True(t, wc.IsActive)
}
