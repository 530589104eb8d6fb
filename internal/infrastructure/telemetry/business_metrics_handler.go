package telemetry

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BusinessMetricsHandler feeds published domain events into BusinessMetrics
type BusinessMetricsHandler struct {
	metrics *BusinessMetrics
}

// NewBusinessMetricsHandler creates an event handler recording business counters
func NewBusinessMetricsHandler(metrics *BusinessMetrics) *BusinessMetricsHandler {
	return &BusinessMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler records
func (h *BusinessMetricsHandler) EventTypes() []string {
	return []string{
		manufacturing.EventTypeManufacturingOrderCreated,
		manufacturing.EventTypeManufacturingOrderStatusChanged,
		manufacturing.EventTypeManufacturingOrderCompleted,
		manufacturing.EventTypeWorkOrderStatusChanged,
		inventory.EventTypeStockMovementPosted,
	}
}

// Handle records the counters for one event. Unknown events are ignored.
func (h *BusinessMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *manufacturing.ManufacturingOrderCreatedEvent:
		h.metrics.RecordOrderCreated(ctx)
	case *manufacturing.ManufacturingOrderStatusChangedEvent:
		h.metrics.RecordOrderStatusChange(ctx, e.OldStatus.String(), e.NewStatus.String())
	case *manufacturing.ManufacturingOrderCompletedEvent:
		h.metrics.RecordOrderCompleted(ctx, e.ComponentsConsumed)
	case *manufacturing.WorkOrderStatusChangedEvent:
		h.metrics.RecordWorkOrderStatusChange(ctx, e.OldStatus.String(), e.NewStatus.String())
		if e.ActualCost != "" {
			if cost, err := decimal.NewFromString(e.ActualCost); err == nil {
				h.metrics.RecordWorkOrderCost(ctx, cost)
			}
		}
	case *inventory.StockMovementPostedEvent:
		h.metrics.RecordStockMovement(ctx, e.MovementType.String(), e.Delta)
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetricsHandler)(nil)
