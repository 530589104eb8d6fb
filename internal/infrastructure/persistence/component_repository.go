package persistence

import (
	"context"
	"strings"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormComponentRepository implements ComponentRepository using GORM
type GormComponentRepository struct {
	db *gorm.DB
}

// NewGormComponentRepository creates a new GormComponentRepository
func NewGormComponentRepository(db *gorm.DB) *GormComponentRepository {
	return &GormComponentRepository{db: db}
}

// FindByID finds a component by its ID
func (r *GormComponentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Component, error) {
	var model models.ComponentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a component and locks its row until the transaction ends
func (r *GormComponentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Component, error) {
	var model models.ComponentModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple components by their IDs
func (r *GormComponentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Component, error) {
	if len(ids) == 0 {
		return []inventory.Component{}, nil
	}
	var rows []models.ComponentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return componentsToDomain(rows), nil
}

// FindByIDsForUpdate locks the rows of multiple components.
// Rows are locked in ascending id order so concurrent consumers cannot deadlock.
func (r *GormComponentRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Component, error) {
	if len(ids) == 0 {
		return []inventory.Component{}, nil
	}
	var rows []models.ComponentModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return componentsToDomain(rows), nil
}

// FindAll lists components with paging
func (r *GormComponentRepository) FindAll(ctx context.Context, filter inventory.ComponentFilter) ([]inventory.Component, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ComponentModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(supplier) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.LowStockOnly {
		query = query.Where("reorder_level > 0 AND quantity_on_hand < reorder_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ComponentModel
	if err := paginate(query, filter.Filter, ComponentSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return componentsToDomain(rows), total, nil
}

// Save creates or updates a component.
// Updates only apply when the stored version still equals the version the component was loaded with.
func (r *GormComponentRepository) Save(ctx context.Context, component *inventory.Component) error {
	if !component.IsPersisted() {
		model := models.ComponentModelFromDomain(component)
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
			return translateError(err)
		}
		component.MarkPersisted()
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.ComponentModel{}).
		Where("id = ? AND version = ?", component.ID, component.PersistedVersion()).
		Updates(map[string]any{
			"name":             component.Name,
			"quantity_on_hand": component.QuantityOnHand,
			"unit_cost":        component.UnitCost,
			"supplier":         component.Supplier,
			"reorder_level":    component.ReorderLevel,
			"version":          component.Version,
			"updated_at":       component.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return optimisticLockError("Component")
	}
	component.MarkPersisted()
	return nil
}

// Delete deletes a component. Components still referenced by a BOM or the ledger are kept.
func (r *GormComponentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ComponentModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func componentsToDomain(rows []models.ComponentModel) []inventory.Component {
	components := make([]inventory.Component, len(rows))
	for i := range rows {
		components[i] = *rows[i].ToDomain()
	}
	return components
}

// Ensure GormComponentRepository implements ComponentRepository
var _ inventory.ComponentRepository = (*GormComponentRepository)(nil)
