package inventory

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"go.uber.org/zap"
)

// ReorderAlertHandler handles StockBelowReorderLevel events and forwards a
// reorder alert to the configured notifier
type ReorderAlertHandler struct {
	logger   *zap.Logger
	notifier ReorderAlertNotifier
}

// ReorderAlertNotifier sends reorder alerts.
// Implementations can support different channels (log, webhook, email).
type ReorderAlertNotifier interface {
	SendAlert(ctx context.Context, alert ReorderAlert) error
}

// ReorderAlert represents a component that fell under its reorder level
type ReorderAlert struct {
	ComponentID    string `json:"component_id"`
	ComponentName  string `json:"component_name"`
	QuantityOnHand int64  `json:"quantity_on_hand"`
	ReorderLevel   int64  `json:"reorder_level"`
	AlertType      string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewReorderAlertHandler creates a new handler for reorder level events
func NewReorderAlertHandler(logger *zap.Logger) *ReorderAlertHandler {
	return &ReorderAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *ReorderAlertHandler) WithNotifier(notifier ReorderAlertNotifier) *ReorderAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *ReorderAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderLevel}
}

// Handle processes a StockBelowReorderLevelEvent
func (h *ReorderAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	belowEvent, ok := event.(*inventory.StockBelowReorderLevelEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowReorderLevel),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowReorderLevel, event.EventType())
	}

	alertType := "low_stock"
	if belowEvent.QuantityOnHand == 0 {
		alertType = "out_of_stock"
	}
	alert := ReorderAlert{
		ComponentID:    belowEvent.ComponentID.String(),
		ComponentName:  belowEvent.ComponentName,
		QuantityOnHand: belowEvent.QuantityOnHand,
		ReorderLevel:   belowEvent.ReorderLevel,
		AlertType:      alertType,
	}

	h.logger.Warn("component below reorder level",
		zap.String("component_id", alert.ComponentID),
		zap.String("component_name", alert.ComponentName),
		zap.Int64("quantity_on_hand", alert.QuantityOnHand),
		zap.Int64("reorder_level", alert.ReorderLevel),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// Notification failure doesn't fail event handling
			h.logger.Error("failed to send reorder alert",
				zap.String("component_id", alert.ComponentID),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*ReorderAlertHandler)(nil)

// LoggingReorderAlertNotifier is a notifier that only logs alerts
type LoggingReorderAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingReorderAlertNotifier creates a new logging notifier
func NewLoggingReorderAlertNotifier(logger *zap.Logger) *LoggingReorderAlertNotifier {
	return &LoggingReorderAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the alert
func (n *LoggingReorderAlertNotifier) SendAlert(_ context.Context, alert ReorderAlert) error {
	n.logger.Warn("REORDER ALERT",
		zap.String("type", alert.AlertType),
		zap.String("component", alert.ComponentName),
		zap.Int64("on_hand", alert.QuantityOnHand),
		zap.Int64("reorder_level", alert.ReorderLevel),
	)
	return nil
}

var _ ReorderAlertNotifier = (*LoggingReorderAlertNotifier)(nil)
