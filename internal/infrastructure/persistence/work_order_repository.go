package persistence

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkOrderRepository implements WorkOrderRepository using GORM.
// Work orders are child rows of manufacturing_orders; writers hold the order's row lock.
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID finds a work order by its ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the work orders of an order by sequence
func (r *GormWorkOrderRepository) FindByOrder(ctx context.Context, orderID string) ([]manufacturing.WorkOrder, error) {
	var rows []models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("manufacturing_order_id = ?", orderID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	workOrders := make([]manufacturing.WorkOrder, len(rows))
	for i := range rows {
		workOrders[i] = *rows[i].ToDomain()
	}
	return workOrders, nil
}

// Save creates or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, workOrder *manufacturing.WorkOrder) error {
	return r.SaveAll(ctx, []*manufacturing.WorkOrder{workOrder})
}

// SaveAll creates or updates several work orders in one statement
func (r *GormWorkOrderRepository) SaveAll(ctx context.Context, workOrders []*manufacturing.WorkOrder) error {
	if len(workOrders) == 0 {
		return nil
	}
	rows := make([]*models.WorkOrderModel, len(workOrders))
	for i, wo := range workOrders {
		rows[i] = models.WorkOrderModelFromDomain(wo)
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	return translateError(err)
}

// MaxSequence returns the highest sequence used by an order, or 0
func (r *GormWorkOrderRepository) MaxSequence(ctx context.Context, orderID string) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&models.WorkOrderModel{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("manufacturing_order_id = ?", orderID).
		Scan(&highest).Error
	return highest, err
}

// Ensure GormWorkOrderRepository implements WorkOrderRepository
var _ manufacturing.WorkOrderRepository = (*GormWorkOrderRepository)(nil)
