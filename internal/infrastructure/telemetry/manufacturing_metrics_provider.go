// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormManufacturingMetricsProvider implements ManufacturingMetricsProvider using GORM.
// It queries the components and manufacturing_orders tables directly.
type GormManufacturingMetricsProvider struct {
	db *gorm.DB
}

// NewGormManufacturingMetricsProvider creates a new GormManufacturingMetricsProvider.
func NewGormManufacturingMetricsProvider(db *gorm.DB) *GormManufacturingMetricsProvider {
	return &GormManufacturingMetricsProvider{db: db}
}

// GetLowStockCount returns how many components are below their reorder level.
func (p *GormManufacturingMetricsProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("components").
		Where("reorder_level > 0 AND quantity_on_hand < reorder_level").
		Count(&count).Error

	return count, err
}

// GetOrderCountByStatus returns the number of manufacturing orders per status.
func (p *GormManufacturingMetricsProvider) GetOrderCountByStatus(ctx context.Context) (map[string]int64, error) {
	type result struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("manufacturing_orders").
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Status] = r.Count
	}
	return m, nil
}
