package inventory

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComponentResponse represents a component in API responses
type ComponentResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	QuantityOnHand    int64           `json:"quantity_on_hand"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Supplier          string          `json:"supplier,omitempty"`
	ReorderLevel      int64           `json:"reorder_level"`
	BelowReorderLevel bool            `json:"below_reorder_level"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ComponentListFilter represents filter options for the component list
type ComponentListFilter struct {
	Search       string `form:"search"`
	LowStockOnly bool   `form:"low_stock"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateComponentRequest represents a request to create a component
type CreateComponentRequest struct {
	Name            string          `json:"name" binding:"required,max=100"`
	InitialQuantity int64           `json:"initial_quantity" binding:"min=0"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Supplier        string          `json:"supplier" binding:"max=100"`
	ReorderLevel    int64           `json:"reorder_level" binding:"min=0"`
}

// UpdateComponentRequest represents a request to update a component.
// QuantityOnHand is a target level reached through an ADJUSTMENT movement.
type UpdateComponentRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=100"`
	UnitCost       *decimal.Decimal `json:"unit_cost"`
	Supplier       *string          `json:"supplier" binding:"omitempty,max=100"`
	ReorderLevel   *int64           `json:"reorder_level" binding:"omitempty,min=0"`
	QuantityOnHand *int64           `json:"quantity_on_hand" binding:"omitempty,min=0"`
}

// StockMovementResponse represents a ledger entry in API responses
type StockMovementResponse struct {
	ID            uuid.UUID `json:"id"`
	ComponentID   uuid.UUID `json:"component_id"`
	Type          string    `json:"type"`
	Quantity      int64     `json:"quantity"`
	Delta         int64     `json:"delta"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostMovementRequest represents a request to post a stock movement.
// For ADJUSTMENT, Quantity is the target on-hand level.
type PostMovementRequest struct {
	ComponentID uuid.UUID `json:"component_id" binding:"required"`
	Type        string    `json:"type" binding:"required,movement_type"`
	Quantity    int64     `json:"quantity" binding:"min=0"`
	Reference   string    `json:"reference" binding:"max=200"`
}

// PostMovementResponse is the result of posting a movement
type PostMovementResponse struct {
	Movement  *StockMovementResponse `json:"movement"`
	Component ComponentResponse      `json:"component"`
}

// MovementListFilter represents filter options for the stock movement list
type MovementListFilter struct {
	ComponentID *uuid.UUID `form:"component_id"`
	Type        string     `form:"type" binding:"omitempty,movement_type"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReconcileResponse reports whether the cached on-hand quantity matches the ledger
type ReconcileResponse struct {
	ComponentID    uuid.UUID `json:"component_id"`
	QuantityOnHand int64     `json:"quantity_on_hand"`
	LedgerTotal    int64     `json:"ledger_total"`
	Difference     int64     `json:"difference"`
	Consistent     bool      `json:"consistent"`
}

const reconcilePageSize = 100

// ReconcileSummary is the result of reconciling every component
type ReconcileSummary struct {
	Checked int                 `json:"checked"`
	Drifted []ReconcileResponse `json:"drifted"`
}

// BOMLineRequest is one component line of a BOM request
type BOMLineRequest struct {
	ComponentID      uuid.UUID `json:"component_id" binding:"required"`
	QuantityRequired int64     `json:"quantity_required" binding:"required,min=1"`
}

// CreateBOMRequest represents a request to create a BOM
type CreateBOMRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Description string           `json:"description" binding:"max=500"`
	Components  []BOMLineRequest `json:"components" binding:"required,min=1,dive"`
}

// UpdateBOMRequest represents a request to update a BOM.
// When Components is set, the component lines are replaced as a whole.
type UpdateBOMRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Components  []BOMLineRequest `json:"components" binding:"omitempty,min=1,dive"`
}

// BOMComponentResponse is one BOM line in API responses
type BOMComponentResponse struct {
	ComponentID      uuid.UUID `json:"component_id"`
	ComponentName    string    `json:"component_name,omitempty"`
	QuantityRequired int64     `json:"quantity_required"`
	QuantityOnHand   int64     `json:"quantity_on_hand"`
}

// BOMResponse represents a bill of materials in API responses
type BOMResponse struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Components  []BOMComponentResponse `json:"components"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// AvailabilityResponse is the resolution of a BOM for a production quantity
type AvailabilityResponse struct {
	BOMID        uuid.UUID              `json:"bom_id"`
	Quantity     int64                  `json:"quantity"`
	CanProduce   bool                   `json:"can_produce"`
	Requirements inventory.Requirements `json:"requirements"`
	Shortages    inventory.Requirements `json:"shortages"`
}

// ToComponentResponse converts a domain component to a response DTO
func ToComponentResponse(c *inventory.Component) ComponentResponse {
	return ComponentResponse{
		ID:                c.ID,
		Name:              c.Name,
		QuantityOnHand:    c.QuantityOnHand,
		UnitCost:          c.UnitCost,
		Supplier:          c.Supplier,
		ReorderLevel:      c.ReorderLevel,
		BelowReorderLevel: c.IsBelowReorderLevel(),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Version:           c.Version,
	}
}

// ToComponentResponses converts a slice of components
func ToComponentResponses(components []inventory.Component) []ComponentResponse {
	responses := make([]ComponentResponse, len(components))
	for i := range components {
		responses[i] = ToComponentResponse(&components[i])
	}
	return responses
}

// ToStockMovementResponse converts a domain movement to a response DTO
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		ComponentID:   m.ComponentID,
		Type:          m.Type.String(),
		Quantity:      m.Quantity,
		Delta:         m.Delta,
		BalanceBefore: m.BalanceBefore(),
		BalanceAfter:  m.BalanceAfter,
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
}

// ToStockMovementResponses converts a slice of movements
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}

// ToBOMResponse converts a BOM to a response DTO. components may be nil, in
// which case names and stock levels are left empty.
func ToBOMResponse(b *inventory.BillOfMaterial, components map[uuid.UUID]*inventory.Component) BOMResponse {
	lines := make([]BOMComponentResponse, len(b.Components))
	for i, line := range b.Components {
		lines[i] = BOMComponentResponse{
			ComponentID:      line.ComponentID,
			QuantityRequired: line.QuantityRequired,
		}
		if c, ok := components[line.ComponentID]; ok {
			lines[i].ComponentName = c.Name
			lines[i].QuantityOnHand = c.QuantityOnHand
		}
	}
	return BOMResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Components:  lines,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBOMLines(requests []BOMLineRequest) []inventory.BOMLine {
	lines := make([]inventory.BOMLine, len(requests))
	for i, r := range requests {
		lines[i] = inventory.BOMLine{ComponentID: r.ComponentID, QuantityRequired: r.QuantityRequired}
	}
	return lines
}

func toFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	filter.Search = search
	return filter
}
