package inventory

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeComponent = "Component"

// Event type constants
const (
	EventTypeStockMovementPosted    = "StockMovementPosted"
	EventTypeStockBelowReorderLevel = "StockBelowReorderLevel"
)

// StockMovementPostedEvent is raised for every ledger entry
type StockMovementPostedEvent struct {
	shared.BaseDomainEvent
	ComponentID   uuid.UUID    `json:"component_id"`
	ComponentName string       `json:"component_name"`
	MovementID    uuid.UUID    `json:"movement_id"`
	MovementType  MovementType `json:"movement_type"`
	Quantity      int64        `json:"quantity"`
	Delta         int64        `json:"delta"`
	BalanceAfter  int64        `json:"balance_after"`
	Reference     string       `json:"reference"`
}

// NewStockMovementPostedEvent creates a new StockMovementPostedEvent
func NewStockMovementPostedEvent(c *Component, m *StockMovement) *StockMovementPostedEvent {
	return &StockMovementPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementPosted, AggregateTypeComponent, c.ID.String(), m.CreatedAt),
		ComponentID:     c.ID,
		ComponentName:   c.Name,
		MovementID:      m.ID,
		MovementType:    m.Type,
		Quantity:        m.Quantity,
		Delta:           m.Delta,
		BalanceAfter:    m.BalanceAfter,
		Reference:       m.Reference,
	}
}

// EventType returns the event type name
func (e *StockMovementPostedEvent) EventType() string {
	return EventTypeStockMovementPosted
}

// StockBelowReorderLevelEvent is raised when an outflow drops stock under the reorder level
type StockBelowReorderLevelEvent struct {
	shared.BaseDomainEvent
	ComponentID    uuid.UUID `json:"component_id"`
	ComponentName  string    `json:"component_name"`
	QuantityOnHand int64     `json:"quantity_on_hand"`
	ReorderLevel   int64     `json:"reorder_level"`
}

// NewStockBelowReorderLevelEvent creates a new StockBelowReorderLevelEvent
func NewStockBelowReorderLevelEvent(c *Component, now time.Time) *StockBelowReorderLevelEvent {
	return &StockBelowReorderLevelEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderLevel, AggregateTypeComponent, c.ID.String(), now),
		ComponentID:     c.ID,
		ComponentName:   c.Name,
		QuantityOnHand:  c.QuantityOnHand,
		ReorderLevel:    c.ReorderLevel,
	}
}

// EventType returns the event type name
func (e *StockBelowReorderLevelEvent) EventType() string {
	return EventTypeStockBelowReorderLevel
}
