// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the manufacturing core.
// It tracks order throughput, work order transitions and component stock health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal      *Counter
	orderStatusTotal       *Counter
	orderCompletedTotal    *Counter
	workOrderStatusTotal   *Counter
	workOrderCostCentTotal *Counter
	stockMovementTotal     *Counter
	stockUnitsTotal        *Counter

	// Gauge metrics (point-in-time values)
	lowStockComponents *Gauge
	ordersByStatus     *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	provider ManufacturingMetricsProvider
}

// ManufacturingMetricsProvider provides stock and order data for periodic metrics collection.
// The telemetry layer queries through it instead of depending on repositories.
type ManufacturingMetricsProvider interface {
	// GetLowStockCount returns how many components are below their reorder level
	GetLowStockCount(ctx context.Context) (int64, error)

	// GetOrderCountByStatus returns the number of manufacturing orders per status
	GetOrderCountByStatus(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider ManufacturingMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		provider: cfg.Provider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.orderCreatedTotal, "mfg_order_created_total", "Total number of manufacturing orders planned", "{orders}"},
		{&bm.orderStatusTotal, "mfg_order_status_changes_total", "Manufacturing order status changes", "{changes}"},
		{&bm.orderCompletedTotal, "mfg_order_completed_total", "Manufacturing orders completed with stock consumption", "{orders}"},
		{&bm.workOrderStatusTotal, "mfg_work_order_status_changes_total", "Work order status changes", "{changes}"},
		{&bm.workOrderCostCentTotal, "mfg_work_order_cost_total", "Actual work order cost in cents", "{cents}"},
		{&bm.stockMovementTotal, "mfg_stock_movements_total", "Stock ledger entries posted", "{movements}"},
		{&bm.stockUnitsTotal, "mfg_stock_units_total", "Absolute stock units moved", "{units}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.lowStockComponents, err = NewGauge(
		cfg.Meter,
		"mfg_low_stock_components",
		"Components below their reorder level",
		"{components}",
	)
	if err != nil {
		return nil, err
	}

	bm.ordersByStatus, err = NewGauge(
		cfg.Meter,
		"mfg_orders_by_status",
		"Manufacturing orders per status",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderCreated records a planned manufacturing order
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context) {
	bm.orderCreatedTotal.Inc(ctx)
}

// RecordOrderStatusChange records a manufacturing order status change
func (bm *BusinessMetrics) RecordOrderStatusChange(ctx context.Context, from, to string) {
	bm.orderStatusTotal.Inc(ctx,
		AttrStatusFrom.String(from),
		AttrStatusTo.String(to),
	)
}

// RecordOrderCompleted records a completion with stock consumption
func (bm *BusinessMetrics) RecordOrderCompleted(ctx context.Context, componentsConsumed int) {
	bm.orderCompletedTotal.Inc(ctx,
		AttrConsumedComponents.Int(componentsConsumed),
	)
}

// =============================================================================
// Work Order Metrics
// =============================================================================

// RecordWorkOrderStatusChange records a work order status change
func (bm *BusinessMetrics) RecordWorkOrderStatusChange(ctx context.Context, from, to string) {
	bm.workOrderStatusTotal.Inc(ctx,
		AttrStatusFrom.String(from),
		AttrStatusTo.String(to),
	)
}

// RecordWorkOrderCost records the actual cost of a completed work order
func (bm *BusinessMetrics) RecordWorkOrderCost(ctx context.Context, cost decimal.Decimal) {
	cents := cost.Mul(decimal.NewFromInt(100)).IntPart()
	if cents <= 0 {
		return
	}
	bm.workOrderCostCentTotal.Add(ctx, cents)
}

// =============================================================================
// Stock Metrics
// =============================================================================

// RecordStockMovement records one ledger entry with its signed delta
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, movementType string, delta int64) {
	attrs := []attribute.KeyValue{AttrMovementType.String(movementType)}
	bm.stockMovementTotal.Inc(ctx, attrs...)
	if delta < 0 {
		delta = -delta
	}
	if delta > 0 {
		bm.stockUnitsTotal.Add(ctx, delta, attrs...)
	}
}

// RecordLowStockCount records the number of components below their reorder level
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockComponents.Record(ctx, count)
}

// RecordOrdersByStatus records the order count of one status
func (bm *BusinessMetrics) RecordOrdersByStatus(ctx context.Context, status string, count int64) {
	bm.ordersByStatus.Record(ctx, count, AttrStatusTo.String(status))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects every interval (default: 5 minutes) until Stop or ctx is done.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.Collect(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.Collect(ctx)
		}
	}
}

// Collect records the gauge metrics once from the provider
func (bm *BusinessMetrics) Collect(ctx context.Context) {
	if bm.provider == nil {
		bm.logger.Debug("No metrics provider configured, skipping collection")
		return
	}

	lowStock, err := bm.provider.GetLowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, lowStock)
	}

	byStatus, err := bm.provider.GetOrderCountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get order counts", zap.Error(err))
		return
	}
	for status, count := range byStatus {
		bm.RecordOrdersByStatus(ctx, status, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrStatusFrom         = attribute.Key("status_from")
	AttrStatusTo           = attribute.Key("status")
	AttrMovementType       = attribute.Key("movement_type")
	AttrConsumedComponents = attribute.Key("consumed_components")
)
