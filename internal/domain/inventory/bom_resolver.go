package inventory

import (
	"math"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Requirement is the resolved need for one component of a BOM
type Requirement struct {
	ComponentID   uuid.UUID `json:"component_id"`
	ComponentName string    `json:"component_name"`
	Required      int64     `json:"required"`
	Available     int64     `json:"available"`
	Shortage      int64     `json:"shortage"`
}

// IsShort returns true if the component cannot cover the requirement
func (r Requirement) IsShort() bool {
	return r.Shortage > 0
}

// Requirements is the resolution of a whole BOM, in BOM line order
type Requirements []Requirement

// Shortages returns only the requirements that are short
func (rs Requirements) Shortages() Requirements {
	out := make(Requirements, 0)
	for _, r := range rs {
		if r.IsShort() {
			out = append(out, r)
		}
	}
	return out
}

// FirstShortage returns an INSUFFICIENT_STOCK error for the first short line, or nil
func (rs Requirements) FirstShortage() *shared.InsufficientStockError {
	for _, r := range rs {
		if r.IsShort() {
			return &shared.InsufficientStockError{
				ComponentID:   r.ComponentID.String(),
				ComponentName: r.ComponentName,
				Required:      r.Required,
				Available:     r.Available,
			}
		}
	}
	return nil
}

// BOMResolver computes component requirements for a production quantity and
// consumes them through each component's ledger
type BOMResolver struct{}

// NewBOMResolver creates a BOM resolver
func NewBOMResolver() *BOMResolver {
	return &BOMResolver{}
}

// ResolveRequirements computes required = quantity_required × produceQty for
// every BOM line and the shortage against the supplied component stock.
// components must contain every component the BOM references.
func (r *BOMResolver) ResolveRequirements(bom *BillOfMaterial, produceQty int64, components map[uuid.UUID]*Component) (Requirements, error) {
	if bom == nil {
		return nil, shared.NewDomainError("INVALID_BOM", "BOM is required")
	}
	if produceQty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Production quantity must be positive")
	}

	requirements := make(Requirements, 0, len(bom.Components))
	for _, line := range bom.Components {
		component, ok := components[line.ComponentID]
		if !ok || component == nil {
			return nil, shared.NewNotFoundError("component", line.ComponentID.String())
		}
		if line.QuantityRequired > 0 && produceQty > math.MaxInt64/line.QuantityRequired {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Production quantity exceeds what the BOM can express").
				WithDetails(map[string]any{"component_id": line.ComponentID.String(), "quantity": produceQty})
		}
		required := line.QuantityRequired * produceQty
		shortage := required - component.QuantityOnHand
		if shortage < 0 {
			shortage = 0
		}
		requirements = append(requirements, Requirement{
			ComponentID:   component.ID,
			ComponentName: component.Name,
			Required:      required,
			Available:     component.QuantityOnHand,
			Shortage:      shortage,
		})
	}
	return requirements, nil
}

// Consume re-resolves the BOM against current stock and, only if every line is
// covered, issues one OUT movement per line. On any shortage no component is
// touched and the first shortage is returned.
func (r *BOMResolver) Consume(bom *BillOfMaterial, produceQty int64, components map[uuid.UUID]*Component, reference string, now time.Time) ([]*StockMovement, error) {
	requirements, err := r.ResolveRequirements(bom, produceQty, components)
	if err != nil {
		return nil, err
	}
	if shortage := requirements.FirstShortage(); shortage != nil {
		return nil, shortage
	}

	movements := make([]*StockMovement, 0, len(requirements))
	for _, req := range requirements {
		movement, err := components[req.ComponentID].Issue(req.Required, reference, now)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, nil
}
