package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Component is a stocked part consumed by manufacturing orders.
// QuantityOnHand is a cached running sum of the component's stock movements and
// changes only through Receive, Issue and AdjustTo, each of which returns the
// ledger entry that must be persisted alongside the component.
type Component struct {
	shared.BaseAggregateRoot
	Name           string
	QuantityOnHand int64
	UnitCost       decimal.Decimal
	Supplier       string
	ReorderLevel   int64
}

// NewComponent creates a component with zero stock.
// Opening stock is posted afterwards as an IN movement.
func NewComponent(name string, unitCost decimal.Decimal, supplier string, reorderLevel int64, now time.Time) (*Component, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Component name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Component name cannot exceed 100 characters")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if reorderLevel < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reorder level cannot be negative")
	}

	root := shared.NewBaseAggregateRoot()
	root.CreatedAt = now
	root.UpdatedAt = now
	return &Component{
		BaseAggregateRoot: root,
		Name:              name,
		QuantityOnHand:    0,
		UnitCost:          unitCost,
		Supplier:          strings.TrimSpace(supplier),
		ReorderLevel:      reorderLevel,
	}, nil
}

// ComponentUpdate carries optional descriptive changes. Nil fields are left untouched.
type ComponentUpdate struct {
	Name         *string
	UnitCost     *decimal.Decimal
	Supplier     *string
	ReorderLevel *int64
}

// Update applies descriptive changes. Quantity is never changed here.
func (c *Component) Update(u ComponentUpdate, now time.Time) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Component name cannot be empty")
		}
		c.Name = name
	}
	if u.UnitCost != nil {
		if u.UnitCost.IsNegative() {
			return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
		}
		c.UnitCost = *u.UnitCost
	}
	if u.Supplier != nil {
		c.Supplier = strings.TrimSpace(*u.Supplier)
	}
	if u.ReorderLevel != nil {
		if *u.ReorderLevel < 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Reorder level cannot be negative")
		}
		c.ReorderLevel = *u.ReorderLevel
	}
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// Receive posts an IN movement of quantity units
func (c *Component) Receive(quantity int64, reference string, now time.Time) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return c.apply(MovementTypeIn, quantity, reference, now), nil
}

// Issue posts an OUT movement of quantity units.
// Fails with INSUFFICIENT_STOCK when quantity exceeds the on-hand quantity.
func (c *Component) Issue(quantity int64, reference string, now time.Time) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > c.QuantityOnHand {
		return nil, c.shortage(quantity)
	}
	return c.apply(MovementTypeOut, -quantity, reference, now), nil
}

// AdjustTo posts an ADJUSTMENT movement whose delta brings the on-hand quantity to target.
// Returns nil without error when the component already holds target units.
func (c *Component) AdjustTo(target int64, reference string, now time.Time) (*StockMovement, error) {
	if target < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Target quantity cannot be negative")
	}
	delta := target - c.QuantityOnHand
	if delta == 0 {
		return nil, nil
	}
	if reference == "" {
		reference = fmt.Sprintf("Manual adjustment: %d → %d", c.QuantityOnHand, target)
	}
	return c.apply(MovementTypeAdjustment, delta, reference, now), nil
}

// CanCover returns true if quantity units are on hand
func (c *Component) CanCover(quantity int64) bool {
	return c.QuantityOnHand >= quantity
}

// IsBelowReorderLevel returns true if stock fell under the reorder level
func (c *Component) IsBelowReorderLevel() bool {
	return c.ReorderLevel > 0 && c.QuantityOnHand < c.ReorderLevel
}

func (c *Component) shortage(required int64) *shared.InsufficientStockError {
	return &shared.InsufficientStockError{
		ComponentID:   c.ID.String(),
		ComponentName: c.Name,
		Required:      required,
		Available:     c.QuantityOnHand,
	}
}

func (c *Component) apply(movementType MovementType, delta int64, reference string, now time.Time) *StockMovement {
	c.QuantityOnHand += delta
	c.UpdatedAt = now
	c.IncrementVersion()

	movement := newStockMovement(c.ID, movementType, delta, c.QuantityOnHand, reference, now)
	c.AddDomainEvent(NewStockMovementPostedEvent(c, movement))
	if delta < 0 && c.IsBelowReorderLevel() {
		c.AddDomainEvent(NewStockBelowReorderLevelEvent(c, now))
	}
	return movement
}
