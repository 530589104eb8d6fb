package inventory

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType represents the type of a stock movement
type MovementType string

const (
	// MovementTypeIn represents stock received into inventory
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents stock leaving inventory (consumption, scrap)
	MovementTypeOut MovementType = "OUT"
	// MovementTypeAdjustment represents a signed correction to reach a counted quantity
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// ParseMovementType parses a movement type. Matching is exact.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(s)
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type must be one of IN, OUT, ADJUSTMENT").
			WithDetails(map[string]any{"value": s})
	}
	return t, nil
}

// Movement references
const (
	ReferenceInitialStock = "Initial stock"
)

// StockMovement is an immutable ledger entry for one component.
// Quantity is the non-negative magnitude; Delta is the signed change applied to
// the on-hand quantity, so the sum of all deltas equals the current on-hand.
type StockMovement struct {
	shared.BaseEntity
	ComponentID  uuid.UUID
	Type         MovementType
	Quantity     int64
	Delta        int64
	BalanceAfter int64
	Reference    string
}

// BalanceBefore returns the on-hand quantity before the movement was applied
func (m *StockMovement) BalanceBefore() int64 {
	return m.BalanceAfter - m.Delta
}

// IsIncrease returns true if the movement raised the on-hand quantity
func (m *StockMovement) IsIncrease() bool {
	return m.Delta > 0
}

func newStockMovement(componentID uuid.UUID, movementType MovementType, delta, balanceAfter int64, reference string, now time.Time) *StockMovement {
	quantity := delta
	if quantity < 0 {
		quantity = -quantity
	}
	entity := shared.NewBaseEntityAt(now)
	return &StockMovement{
		BaseEntity:   entity,
		ComponentID:  componentID,
		Type:         movementType,
		Quantity:     quantity,
		Delta:        delta,
		BalanceAfter: balanceAfter,
		Reference:    reference,
	}
}

// SumDeltas returns the on-hand quantity implied by a movement history
func SumDeltas(movements []StockMovement) int64 {
	var total int64
	for i := range movements {
		total += movements[i].Delta
	}
	return total
}
