package manufacturing

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows manufacturing order listings
type OrderFilter struct {
	shared.Filter
	Status *OrderStatus
	BOMID  *uuid.UUID
}

// WorkCenterFilter narrows work center listings
type WorkCenterFilter struct {
	shared.Filter
	ActiveOnly bool
}

// ManufacturingOrderRepository defines the interface for manufacturing order persistence
type ManufacturingOrderRepository interface {
	SequenceSource

	// FindByID finds an order by its order number
	FindByID(ctx context.Context, id string) (*ManufacturingOrder, error)

	// FindByIDForUpdate finds an order and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id string) (*ManufacturingOrder, error)

	// FindAll lists orders with paging, newest first
	FindAll(ctx context.Context, filter OrderFilter) ([]ManufacturingOrder, int64, error)

	// Create inserts a new order
	Create(ctx context.Context, order *ManufacturingOrder) error

	// Save updates an order, checking the optimistic lock version
	Save(ctx context.Context, order *ManufacturingOrder) error

	// Delete deletes an order and every work order it owns
	Delete(ctx context.Context, id string) error

	// CountByBOM counts orders referencing a BOM
	CountByBOM(ctx context.Context, bomID uuid.UUID) (int64, error)
}

// WorkOrderRepository defines the interface for work order persistence
type WorkOrderRepository interface {
	// FindByID finds a work order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)

	// FindByOrder lists the work orders of an order by sequence
	FindByOrder(ctx context.Context, orderID string) ([]WorkOrder, error)

	// Save creates or updates a work order
	Save(ctx context.Context, workOrder *WorkOrder) error

	// SaveAll creates or updates several work orders
	SaveAll(ctx context.Context, workOrders []*WorkOrder) error

	// MaxSequence returns the highest sequence used by an order, or 0
	MaxSequence(ctx context.Context, orderID string) (int, error)
}

// WorkCenterRepository defines the interface for work center persistence
type WorkCenterRepository interface {
	// FindByID finds a work center by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*WorkCenter, error)

	// FindAll lists work centers with paging
	FindAll(ctx context.Context, filter WorkCenterFilter) ([]WorkCenter, int64, error)

	// Save creates or updates a work center
	Save(ctx context.Context, workCenter *WorkCenter) error
}
