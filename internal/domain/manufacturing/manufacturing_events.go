package manufacturing

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeManufacturingOrder = "ManufacturingOrder"

// Event type constants
const (
	EventTypeManufacturingOrderCreated       = "ManufacturingOrderCreated"
	EventTypeManufacturingOrderStatusChanged = "ManufacturingOrderStatusChanged"
	EventTypeManufacturingOrderCompleted     = "ManufacturingOrderCompleted"
	EventTypeWorkOrderStatusChanged          = "WorkOrderStatusChanged"
)

// ManufacturingOrderCreatedEvent is raised when an order is planned
type ManufacturingOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     string    `json:"order_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	BOMID       uuid.UUID `json:"bom_id"`
	Deadline    time.Time `json:"deadline"`
}

// NewManufacturingOrderCreatedEvent creates a new ManufacturingOrderCreatedEvent
func NewManufacturingOrderCreatedEvent(m *ManufacturingOrder) *ManufacturingOrderCreatedEvent {
	return &ManufacturingOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderCreated, AggregateTypeManufacturingOrder, m.ID, m.CreatedAt),
		OrderID:         m.ID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		BOMID:           m.BOMID,
		Deadline:        m.Deadline,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderCreatedEvent) EventType() string {
	return EventTypeManufacturingOrderCreated
}

// ManufacturingOrderStatusChangedEvent is raised on every order status change,
// explicit or cascaded
type ManufacturingOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   string      `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

// NewManufacturingOrderStatusChangedEvent creates a new ManufacturingOrderStatusChangedEvent
func NewManufacturingOrderStatusChangedEvent(m *ManufacturingOrder, old OrderStatus, now time.Time) *ManufacturingOrderStatusChangedEvent {
	return &ManufacturingOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderStatusChanged, AggregateTypeManufacturingOrder, m.ID, now),
		OrderID:         m.ID,
		OldStatus:       old,
		NewStatus:       m.Status,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderStatusChangedEvent) EventType() string {
	return EventTypeManufacturingOrderStatusChanged
}

// ManufacturingOrderCompletedEvent is raised when an order completes with stock consumption
type ManufacturingOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID             string    `json:"order_id"`
	ProductName         string    `json:"product_name"`
	Quantity            int64     `json:"quantity"`
	WorkOrdersCompleted int       `json:"work_orders_completed"`
	ComponentsConsumed  int       `json:"components_consumed"`
	CompletedAt         time.Time `json:"completed_at"`
}

// NewManufacturingOrderCompletedEvent creates a new ManufacturingOrderCompletedEvent
func NewManufacturingOrderCompletedEvent(m *ManufacturingOrder, workOrders, components int) *ManufacturingOrderCompletedEvent {
	completedAt := m.UpdatedAt
	if m.CompletedAt != nil {
		completedAt = *m.CompletedAt
	}
	return &ManufacturingOrderCompletedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeManufacturingOrderCompleted, AggregateTypeManufacturingOrder, m.ID, completedAt),
		OrderID:             m.ID,
		ProductName:         m.ProductName,
		Quantity:            m.Quantity,
		WorkOrdersCompleted: workOrders,
		ComponentsConsumed:  components,
		CompletedAt:         completedAt,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderCompletedEvent) EventType() string {
	return EventTypeManufacturingOrderCompleted
}

// WorkOrderStatusChangedEvent is raised when a work order moves between states
type WorkOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	WorkOrderID uuid.UUID       `json:"work_order_id"`
	OrderID     string          `json:"order_id"`
	OldStatus   WorkOrderStatus `json:"old_status"`
	NewStatus   WorkOrderStatus `json:"new_status"`
	ActualCost  string          `json:"actual_cost,omitempty"`
}

// NewWorkOrderStatusChangedEvent creates a new WorkOrderStatusChangedEvent.
// The event is recorded on the owning order.
func NewWorkOrderStatusChangedEvent(wo *WorkOrder, old WorkOrderStatus, now time.Time) *WorkOrderStatusChangedEvent {
	cost := ""
	if wo.ActualCost.Valid {
		cost = wo.ActualCost.Decimal.StringFixed(2)
	}
	return &WorkOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkOrderStatusChanged, AggregateTypeManufacturingOrder, wo.ManufacturingOrderID, now),
		WorkOrderID:     wo.ID,
		OrderID:         wo.ManufacturingOrderID,
		OldStatus:       old,
		NewStatus:       wo.Status,
		ActualCost:      cost,
	}
}

// EventType returns the event type name
func (e *WorkOrderStatusChangedEvent) EventType() string {
	return EventTypeWorkOrderStatusChanged
}
