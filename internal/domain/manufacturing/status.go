package manufacturing

import "github.com/erp/manufacturing/internal/domain/shared"

// OrderStatus is the lifecycle state of a manufacturing order
type OrderStatus string

const (
	OrderStatusPlanned    OrderStatus = "Planned"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusDone       OrderStatus = "Done"
	OrderStatusCanceled   OrderStatus = "Canceled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known values
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlanned, OrderStatusInProgress, OrderStatusDone, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true if no further explicit edits are accepted
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDone
}

// ParseOrderStatus parses an order status. Values are matched exactly;
// anything else fails with INVALID_STATUS_VALUE.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.IsValid() {
		return "", shared.NewInvalidStatusValueError("manufacturing order", s)
	}
	return status, nil
}

// AllOrderStatuses lists the order statuses in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPlanned, OrderStatusInProgress, OrderStatusDone, OrderStatusCanceled}
}

// WorkOrderStatus is the lifecycle state of a work order
type WorkOrderStatus string

const (
	WorkOrderStatusPending   WorkOrderStatus = "Pending"
	WorkOrderStatusStarted   WorkOrderStatus = "Started"
	WorkOrderStatusPaused    WorkOrderStatus = "Paused"
	WorkOrderStatusCompleted WorkOrderStatus = "Completed"
)

// String returns the string representation of WorkOrderStatus
func (s WorkOrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known values
func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderStatusPending, WorkOrderStatusStarted, WorkOrderStatusPaused, WorkOrderStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the work order state machine has an edge from s to target.
// Staying in the same status is not an edge.
func (s WorkOrderStatus) CanTransitionTo(target WorkOrderStatus) bool {
	switch s {
	case WorkOrderStatusPending:
		return target == WorkOrderStatusStarted
	case WorkOrderStatusStarted:
		return target == WorkOrderStatusPaused || target == WorkOrderStatusCompleted
	case WorkOrderStatusPaused:
		return target == WorkOrderStatusStarted || target == WorkOrderStatusCompleted
	}
	return false
}

// ParseWorkOrderStatus parses a work order status. Values are matched exactly;
// anything else fails with INVALID_STATUS_VALUE.
func ParseWorkOrderStatus(s string) (WorkOrderStatus, error) {
	status := WorkOrderStatus(s)
	if !status.IsValid() {
		return "", shared.NewInvalidStatusValueError("work order", s)
	}
	return status, nil
}

// AllWorkOrderStatuses lists the work order statuses in lifecycle order
func AllWorkOrderStatuses() []WorkOrderStatus {
	return []WorkOrderStatus{WorkOrderStatusPending, WorkOrderStatusStarted, WorkOrderStatusPaused, WorkOrderStatusCompleted}
}

// Priority ranks manufacturing orders
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValid returns true if the priority is one of the known values
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses a priority, defaulting empty input to Medium
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", shared.NewDomainError("INVALID_PRIORITY", "Priority must be one of Low, Medium, High").
			WithDetails(map[string]any{"value": s})
	}
	return p, nil
}
