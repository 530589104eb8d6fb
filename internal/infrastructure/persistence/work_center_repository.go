package persistence

import (
	"context"
	"strings"

	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkCenterRepository implements WorkCenterRepository using GORM
type GormWorkCenterRepository struct {
	db *gorm.DB
}

// NewGormWorkCenterRepository creates a new GormWorkCenterRepository
func NewGormWorkCenterRepository(db *gorm.DB) *GormWorkCenterRepository {
	return &GormWorkCenterRepository{db: db}
}

// FindByID finds a work center by its ID
func (r *GormWorkCenterRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.WorkCenter, error) {
	var model models.WorkCenterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists work centers with paging
func (r *GormWorkCenterRepository) FindAll(ctx context.Context, filter manufacturing.WorkCenterFilter) ([]manufacturing.WorkCenter, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkCenterModel{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(strings.ToLower(search)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.WorkCenterModel
	if err := paginate(query, filter.Filter, WorkCenterSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	centers := make([]manufacturing.WorkCenter, len(rows))
	for i := range rows {
		centers[i] = *rows[i].ToDomain()
	}
	return centers, total, nil
}

// Save creates or updates a work center, checking the optimistic lock version on update
func (r *GormWorkCenterRepository) Save(ctx context.Context, wc *manufacturing.WorkCenter) error {
	if !wc.IsPersisted() {
		// Select("*") writes zero values such as IsActive=false instead of column defaults
		if err := r.db.WithContext(ctx).Select("*").Omit(clause.Associations).Create(models.WorkCenterModelFromDomain(wc)).Error; err != nil {
			return translateError(err)
		}
		wc.MarkPersisted()
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.WorkCenterModel{}).
		Where("id = ? AND version = ?", wc.ID, wc.PersistedVersion()).
		Updates(map[string]any{
			"name":          wc.Name,
			"description":   wc.Description,
			"cost_per_hour": wc.CostPerHour,
			"capacity":      wc.Capacity,
			"efficiency":    wc.Efficiency,
			"is_active":     wc.IsActive,
			"version":       wc.Version,
			"updated_at":    wc.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return optimisticLockError("Work center")
	}
	wc.MarkPersisted()
	return nil
}

// Ensure GormWorkCenterRepository implements WorkCenterRepository
var _ manufacturing.WorkCenterRepository = (*GormWorkCenterRepository)(nil)
