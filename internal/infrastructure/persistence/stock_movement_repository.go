package persistence

import (
	"context"
	"strings"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockMovementRepository implements the append-only stock ledger using GORM.
// It never updates a movement.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends one movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	model := models.StockMovementModelFromDomain(movement)
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error)
}

// CreateBatch appends several movements in one statement
func (r *GormStockMovementRepository) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.StockMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.StockMovementModelFromDomain(m)
	}
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error)
}

// FindAll lists movements, newest first unless the filter orders otherwise
func (r *GormStockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{})
	if filter.ComponentID != nil {
		query = query.Where("component_id = ?", *filter.ComponentID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(reference) LIKE ? ESCAPE '\'`, likePattern(strings.ToLower(filter.Search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockMovementModel
	if err := paginate(query, filter.Filter, StockMovementSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

// SumDeltaByComponent returns the on-hand quantity implied by the ledger
func (r *GormStockMovementRepository) SumDeltaByComponent(ctx context.Context, componentID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("component_id = ?", componentID).
		Scan(&total).Error
	return total, err
}

// DeleteByComponent removes a component's history when the component itself is deleted
func (r *GormStockMovementRepository) DeleteByComponent(ctx context.Context, componentID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.StockMovementModel{}, "component_id = ?", componentID).Error
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
