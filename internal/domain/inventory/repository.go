package inventory

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// ComponentFilter narrows component listings
type ComponentFilter struct {
	shared.Filter
	// LowStockOnly keeps components under their reorder level
	LowStockOnly bool
}

// MovementFilter narrows stock movement listings
type MovementFilter struct {
	shared.Filter
	ComponentID *uuid.UUID
	Type        *MovementType
}

// ComponentRepository defines the interface for component persistence
type ComponentRepository interface {
	// FindByID finds a component by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Component, error)

	// FindByIDForUpdate finds a component and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Component, error)

	// FindByIDs finds multiple components by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Component, error)

	// FindByIDsForUpdate locks the rows of multiple components in ascending id order
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Component, error)

	// FindAll lists components with paging
	FindAll(ctx context.Context, filter ComponentFilter) ([]Component, int64, error)

	// Save creates or updates a component, checking the optimistic lock version on update
	Save(ctx context.Context, component *Component) error

	// Delete deletes a component
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockMovementRepository defines the interface for the append-only stock ledger
type StockMovementRepository interface {
	// Create appends one movement
	Create(ctx context.Context, movement *StockMovement) error

	// CreateBatch appends several movements in one statement
	CreateBatch(ctx context.Context, movements []*StockMovement) error

	// FindAll lists movements, newest first
	FindAll(ctx context.Context, filter MovementFilter) ([]StockMovement, int64, error)

	// SumDeltaByComponent returns the on-hand quantity implied by the ledger
	SumDeltaByComponent(ctx context.Context, componentID uuid.UUID) (int64, error)

	// DeleteByComponent removes a component's history when the component itself is deleted
	DeleteByComponent(ctx context.Context, componentID uuid.UUID) error
}

// BOMRepository defines the interface for bill of materials persistence
type BOMRepository interface {
	// FindByID finds a BOM with its component lines
	FindByID(ctx context.Context, id uuid.UUID) (*BillOfMaterial, error)

	// FindAll lists BOMs with paging
	FindAll(ctx context.Context, filter shared.Filter) ([]BillOfMaterial, int64, error)

	// Save creates or updates a BOM and replaces its component lines
	Save(ctx context.Context, bom *BillOfMaterial) error

	// Delete deletes a BOM and its component lines
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByComponent reports whether any BOM references the component
	ExistsByComponent(ctx context.Context, componentID uuid.UUID) (bool, error)
}
