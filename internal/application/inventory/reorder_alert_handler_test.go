package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []ReorderAlert
}

func (n *recordingNotifier) SendAlert(_ context.Context, alert ReorderAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func TestReorderAlertHandler_Handle(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewReorderAlertHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

	c, err := inventory.NewComponent("Hinge", decimal.NewFromInt(1), "", 10, testNow)
	require.NoError(t, err)

	t.Run("low stock", func(t *testing.T) {
		c.QuantityOnHand = 4
		err := handler.Handle(context.Background(), inventory.NewStockBelowReorderLevelEvent(c, testNow))
		require.NoError(t, err)

		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, "low_stock", notifier.alerts[0].AlertType)
		assert.Equal(t, "Hinge", notifier.alerts[0].ComponentName)
		assert.Equal(t, int64(10), notifier.alerts[0].ReorderLevel)
	})

	t.Run("out of stock", func(t *testing.T) {
		c.QuantityOnHand = 0
		err := handler.Handle(context.Background(), inventory.NewStockBelowReorderLevelEvent(c, testNow))
		require.NoError(t, err)

		require.Len(t, notifier.alerts, 2)
		assert.Equal(t, "out_of_stock", notifier.alerts[1].AlertType)
	})

	t.Run("wrong event type", func(t *testing.T) {
		err := handler.Handle(context.Background(), testutil.NewTestEvent("Other"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}

func TestReorderAlertHandler_EventTypes(t *testing.T) {
	handler := NewReorderAlertHandler(zap.NewNop())

	assert.Equal(t, []string{inventory.EventTypeStockBelowReorderLevel}, handler.EventTypes())
}

func TestLoggingReorderAlertNotifier_SendAlert(t *testing.T) {
	notifier := NewLoggingReorderAlertNotifier(zaptest.NewLogger(t))

	err := notifier.SendAlert(context.Background(), ReorderAlert{ComponentName: "Hinge", AlertType: "low_stock"})
	assert.NoError(t, err)
}
