package persistence

import (
	"context"
	"strings"

	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormManufacturingOrderRepository implements ManufacturingOrderRepository using GORM
type GormManufacturingOrderRepository struct {
	db *gorm.DB
}

// NewGormManufacturingOrderRepository creates a new GormManufacturingOrderRepository
func NewGormManufacturingOrderRepository(db *gorm.DB) *GormManufacturingOrderRepository {
	return &GormManufacturingOrderRepository{db: db}
}

// MaxOrderSequence returns the highest numeric suffix used by order numbers with prefix.
// Ids that do not parse as PREFIX-N are ignored.
// On postgres it first takes a transaction-scoped advisory lock keyed by the prefix,
// so concurrent creators allocate numbers one at a time until the holder commits.
func (r *GormManufacturingOrderRepository) MaxOrderSequence(ctx context.Context, prefix string) (int, error) {
	if err := lockOrderNumbers(r.db.WithContext(ctx), prefix); err != nil {
		return 0, err
	}
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.ManufacturingOrderModel{}).
		Where(`id LIKE ? ESCAPE '\'`, escapeLike(prefix)+"-%").
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	highest := 0
	for _, id := range ids {
		if n, ok := manufacturing.ParseOrderNumber(prefix, id); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

// lockOrderNumbers serializes number allocation per prefix. sqlite already
// serializes writers, so it needs no lock.
func lockOrderNumbers(db *gorm.DB, prefix string) error {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "manufacturing_orders:"+prefix).Error
}

// FindByID finds an order by its order number
func (r *GormManufacturingOrderRepository) FindByID(ctx context.Context, id string) (*manufacturing.ManufacturingOrder, error) {
	var model models.ManufacturingOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an order and locks its row until the transaction ends.
// Every work order change takes this lock, serializing changes within one order.
func (r *GormManufacturingOrderRepository) FindByIDForUpdate(ctx context.Context, id string) (*manufacturing.ManufacturingOrder, error) {
	var model models.ManufacturingOrderModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders with paging, newest first
func (r *GormManufacturingOrderRepository) FindAll(ctx context.Context, filter manufacturing.OrderFilter) ([]manufacturing.ManufacturingOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ManufacturingOrderModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.BOMID != nil {
		query = query.Where("bom_id = ?", *filter.BOMID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		query = query.Where(`(LOWER(product_name) LIKE ? ESCAPE '\' OR LOWER(id) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ManufacturingOrderModel
	if err := paginate(query, filter.Filter, ManufacturingOrderSortFields, "created_at").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]manufacturing.ManufacturingOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Create inserts a new order. A taken order number yields ErrConcurrencyConflict.
func (r *GormManufacturingOrderRepository) Create(ctx context.Context, order *manufacturing.ManufacturingOrder) error {
	model := models.ManufacturingOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	order.MarkPersisted()
	return nil
}

// Save updates an order, checking the optimistic lock version
func (r *GormManufacturingOrderRepository) Save(ctx context.Context, order *manufacturing.ManufacturingOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.ManufacturingOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.PersistedVersion()).
		Updates(map[string]any{
			"product_name": order.ProductName,
			"quantity":     order.Quantity,
			"bom_id":       order.BOMID,
			"status":       order.Status.String(),
			"priority":     string(order.Priority),
			"deadline":     order.Deadline,
			"started_at":   order.StartedAt,
			"completed_at": order.CompletedAt,
			"notes":        order.Notes,
			"version":      order.Version,
			"updated_at":   order.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.ManufacturingOrderModel{}).
			Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return optimisticLockError("Manufacturing order")
	}
	order.MarkPersisted()
	return nil
}

// Delete deletes an order and every work order it owns
func (r *GormManufacturingOrderRepository) Delete(ctx context.Context, id string) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.WorkOrderModel{}, "manufacturing_order_id = ?", id).Error; err != nil {
		return err
	}
	result := db.Delete(&models.ManufacturingOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByBOM counts orders referencing a BOM
func (r *GormManufacturingOrderRepository) CountByBOM(ctx context.Context, bomID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ManufacturingOrderModel{}).
		Where("bom_id = ?", bomID).
		Count(&count).Error
	return count, err
}

// Ensure GormManufacturingOrderRepository implements ManufacturingOrderRepository
var _ manufacturing.ManufacturingOrderRepository = (*GormManufacturingOrderRepository)(nil)
