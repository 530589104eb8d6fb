package telemetry

import (
	"errors"
	"time"

	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingPlugin is a gorm plugin creating a span per statement through
// otelgorm and flagging statements slower than the configured threshold
type DBTracingPlugin struct {
	dbSystem      string
	logFullSQL    bool
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBTracingPlugin creates the tracing plugin for the given database driver
func NewDBTracingPlugin(cfg config.TelemetryConfig, driver string, logger *zap.Logger) *DBTracingPlugin {
	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	return &DBTracingPlugin{
		dbSystem:      driver,
		logFullSQL:    cfg.DBLogFullSQL,
		slowThreshold: threshold,
		logger:        logger,
	}
}

// Name implements gorm.Plugin
func (p *DBTracingPlugin) Name() string {
	return "mfg:db_tracing"
}

// Initialize implements gorm.Plugin
func (p *DBTracingPlugin) Initialize(db *gorm.DB) error {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.dbSystem),
		otelgorm.WithoutMetrics(),
	}
	if !p.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerAround(db, "mfg_tracing", p.annotate); err != nil {
		return err
	}
	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.logFullSQL),
		zap.Duration("slow_query_threshold", p.slowThreshold),
	)
	return nil
}

func (p *DBTracingPlugin) annotate(tx *gorm.DB, operation string, elapsed time.Duration) {
	span := trace.SpanFromContext(tx.Statement.Context)
	slow := elapsed > p.slowThreshold

	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("db.operation", operation),
			attribute.Int64("db.rows_affected", tx.Statement.RowsAffected),
		)
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
		}
		if slow {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
		}
	}

	if slow {
		fields := []zap.Field{
			zap.String("operation", operation),
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", tx.Statement.RowsAffected),
		}
		if p.logFullSQL {
			fields = append(fields, zap.String("sql", tx.Statement.SQL.String()))
		}
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			fields = append(fields, zap.Error(tx.Error))
		}
		p.logger.Warn("Slow database statement", fields...)
	}
}

var _ gorm.Plugin = (*DBTracingPlugin)(nil)
