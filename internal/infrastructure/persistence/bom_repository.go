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

// GormBOMRepository implements BOMRepository using GORM.
// A BOM row and its component lines are written together; callers run Save
// inside a transaction scope.
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a BOM with its component lines
func (r *GormBOMRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.BillOfMaterial, error) {
	var model models.BOMModel
	if err := r.db.WithContext(ctx).
		Preload("Components", orderedLines).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists BOMs with paging
func (r *GormBOMRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.BillOfMaterial, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BOMModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(strings.ToLower(search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BOMModel
	if err := paginate(query, filter, BOMSortFields, "name").
		Preload("Components", orderedLines).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	boms := make([]inventory.BillOfMaterial, len(rows))
	for i := range rows {
		boms[i] = *rows[i].ToDomain()
	}
	return boms, total, nil
}

// Save creates or updates a BOM and replaces its component lines
func (r *GormBOMRepository) Save(ctx context.Context, bom *inventory.BillOfMaterial) error {
	db := r.db.WithContext(ctx)
	if !bom.IsPersisted() {
		if err := db.Omit(clause.Associations).Create(models.BOMModelFromDomain(bom)).Error; err != nil {
			return translateError(err)
		}
	} else {
		result := db.Model(&models.BOMModel{}).
			Where("id = ? AND version = ?", bom.ID, bom.PersistedVersion()).
			Updates(map[string]any{
				"name":        bom.Name,
				"description": bom.Description,
				"version":     bom.Version,
				"updated_at":  bom.UpdatedAt,
			})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return optimisticLockError("BOM")
		}
		if err := db.Delete(&models.BOMComponentModel{}, "bom_id = ?", bom.ID).Error; err != nil {
			return err
		}
	}

	if lines := models.BOMComponentModelsFromDomain(bom); len(lines) > 0 {
		if err := db.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return translateError(err)
		}
	}
	bom.MarkPersisted()
	return nil
}

// Delete deletes a BOM and its component lines.
// A BOM still referenced by a manufacturing order yields ErrReferenceViolation.
func (r *GormBOMRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.BOMComponentModel{}, "bom_id = ?", id).Error; err != nil {
		return err
	}
	result := db.Delete(&models.BOMModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByComponent reports whether any BOM references the component
func (r *GormBOMRepository) ExistsByComponent(ctx context.Context, componentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BOMComponentModel{}).
		Where("component_id = ?", componentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormBOMRepository implements BOMRepository
var _ inventory.BOMRepository = (*GormBOMRepository)(nil)
