package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// DBMetricsPlugin is a gorm plugin recording statement latency and errors,
// plus a periodic sample of the connection pool
type DBMetricsPlugin struct {
	duration *Histogram
	errors   *Counter
	poolOpen *Gauge
	poolUsed *Gauge
	waits    *Gauge

	stopOnce sync.Once
	stop     chan struct{}
}

var dbLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// NewDBMetricsPlugin creates the database instruments on meter
func NewDBMetricsPlugin(meter metric.Meter) (*DBMetricsPlugin, error) {
	duration, err := NewHistogram(meter, "db_query_duration_seconds", "Database statement latency", dbLatencyBuckets...)
	if err != nil {
		return nil, err
	}
	errCounter, err := NewCounter(meter, "db_query_errors_total", "Failed database statements", "{errors}")
	if err != nil {
		return nil, err
	}
	poolOpen, err := NewGauge(meter, "db_pool_open_connections", "Open database connections", "{connections}")
	if err != nil {
		return nil, err
	}
	poolUsed, err := NewGauge(meter, "db_pool_in_use_connections", "Database connections in use", "{connections}")
	if err != nil {
		return nil, err
	}
	waits, err := NewGauge(meter, "db_pool_wait_count", "Total waits for a database connection", "{waits}")
	if err != nil {
		return nil, err
	}
	return &DBMetricsPlugin{
		duration: duration,
		errors:   errCounter,
		poolOpen: poolOpen,
		poolUsed: poolUsed,
		waits:    waits,
		stop:     make(chan struct{}),
	}, nil
}

// Name implements gorm.Plugin
func (p *DBMetricsPlugin) Name() string {
	return "mfg:db_metrics"
}

// Initialize implements gorm.Plugin
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "mfg_metrics", p.record)
}

func (p *DBMetricsPlugin) record(tx *gorm.DB, operation string, elapsed time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("table", tx.Statement.Table),
	}
	p.duration.RecordDuration(ctx, elapsed, attrs...)
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		p.errors.Inc(ctx, attrs...)
	}
}

// StartPoolStatsCollection samples sqlDB.Stats every interval until Stop or ctx ends
func (p *DBMetricsPlugin) StartPoolStatsCollection(ctx context.Context, sqlDB *sql.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			p.collectPoolStats(ctx, sqlDB)
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (p *DBMetricsPlugin) collectPoolStats(ctx context.Context, sqlDB *sql.DB) {
	stats := sqlDB.Stats()
	p.poolOpen.Record(ctx, int64(stats.OpenConnections))
	p.poolUsed.Record(ctx, int64(stats.InUse))
	p.waits.Record(ctx, stats.WaitCount)
}

// Stop ends pool stats collection
func (p *DBMetricsPlugin) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

var _ gorm.Plugin = (*DBMetricsPlugin)(nil)
