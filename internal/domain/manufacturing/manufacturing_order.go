package manufacturing

import (
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// ManufacturingOrder is a production request for Quantity units of a product per a BOM.
// It is the aggregate root over its work orders: status changes cascade to them,
// and their aggregate state drives the order's own status.
type ManufacturingOrder struct {
	shared.Versioned
	shared.EventRecorder
	ID          string
	ProductName string
	Quantity    int64
	BOMID       uuid.UUID
	Status      OrderStatus
	Priority    Priority
	Deadline    time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MaxOrderQuantity caps the units a single order may produce
const MaxOrderQuantity int64 = 1_000_000

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > MaxOrderQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-order maximum").
			WithDetails(map[string]any{"max": MaxOrderQuantity})
	}
	return nil
}

// NewManufacturingOrder creates a Planned manufacturing order
func NewManufacturingOrder(id, productName string, quantity int64, bomID uuid.UUID, deadline time.Time, priority Priority, notes string, now time.Time) (*ManufacturingOrder, error) {
	if id == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if bomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOM", "BOM ID cannot be empty")
	}
	if deadline.IsZero() {
		return nil, shared.NewDomainError("INVALID_DEADLINE", "Deadline is required")
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Priority must be one of Low, Medium, High")
	}

	mo := &ManufacturingOrder{
		Versioned:   shared.Versioned{Version: 1},
		ID:          id,
		ProductName: productName,
		Quantity:    quantity,
		BOMID:       bomID,
		Status:      OrderStatusPlanned,
		Priority:    priority,
		Deadline:    deadline,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mo.AddDomainEvent(NewManufacturingOrderCreatedEvent(mo))
	return mo, nil
}

// OrderUpdate carries optional descriptive changes. Nil fields are left untouched.
type OrderUpdate struct {
	ProductName *string
	Quantity    *int64
	Deadline    *time.Time
	BOMID       *uuid.UUID
	Priority    *Priority
	Notes       *string
}

// IsEmpty returns true if no field is set
func (u OrderUpdate) IsEmpty() bool {
	return u.ProductName == nil && u.Quantity == nil && u.Deadline == nil &&
		u.BOMID == nil && u.Priority == nil && u.Notes == nil
}

// UpdateDetails applies descriptive changes. Done orders are frozen.
func (m *ManufacturingOrder) UpdateDetails(u OrderUpdate, now time.Time) error {
	if u.IsEmpty() {
		return nil
	}
	if m.Status == OrderStatusDone {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Completed manufacturing orders cannot be edited")
	}
	if u.ProductName != nil {
		name := strings.TrimSpace(*u.ProductName)
		if name == "" {
			return shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
		}
		m.ProductName = name
	}
	if u.Quantity != nil {
		if err := validateQuantity(*u.Quantity); err != nil {
			return err
		}
		m.Quantity = *u.Quantity
	}
	if u.Deadline != nil {
		if u.Deadline.IsZero() {
			return shared.NewDomainError("INVALID_DEADLINE", "Deadline is required")
		}
		m.Deadline = *u.Deadline
	}
	if u.BOMID != nil {
		if *u.BOMID == uuid.Nil {
			return shared.NewDomainError("INVALID_BOM", "BOM ID cannot be empty")
		}
		m.BOMID = *u.BOMID
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			return shared.NewDomainError("INVALID_PRIORITY", "Priority must be one of Low, Medium, High")
		}
		m.Priority = *u.Priority
	}
	if u.Notes != nil {
		m.Notes = *u.Notes
	}
	m.UpdatedAt = now
	m.IncrementVersion()
	return nil
}

// ChangeStatus applies an explicit status edit together with its effect on the work orders:
//   - In Progress starts every Pending work order
//   - Done force-completes every work order without touching stock
//   - Canceled resets every non-Completed work order to Pending
//   - Planned reopens a Canceled order
//
// Done is terminal. Re-submitting the current status re-applies its work order effect.
func (m *ManufacturingOrder) ChangeStatus(target OrderStatus, workOrders []*WorkOrder, now time.Time) (*CascadeReport, error) {
	if !target.IsValid() {
		return nil, shared.NewInvalidStatusValueError("manufacturing order", string(target))
	}
	if err := m.checkExplicitTransition(target); err != nil {
		return nil, err
	}

	report := newCascadeReport(m)
	if m.Status == OrderStatusDone {
		report.finish(m)
		return report, nil
	}

	switch target {
	case OrderStatusInProgress:
		for _, wo := range workOrders {
			if wo.Status != WorkOrderStatusPending {
				continue
			}
			old := wo.Status
			if err := wo.Start(nil, now); err != nil {
				return nil, err
			}
			report.recordWorkOrder(wo, old, now)
		}
		if m.StartedAt == nil {
			m.StartedAt = timePtr(now)
		}
	case OrderStatusDone:
		m.forceCompleteWorkOrders(workOrders, report, now)
		m.CompletedAt = timePtr(now)
	case OrderStatusCanceled:
		for _, wo := range workOrders {
			old := wo.Status
			if wo.ResetToPending(now) {
				report.recordWorkOrder(wo, old, now)
			}
		}
	}

	m.setStatus(target, now)
	report.finish(m)
	return report, nil
}

// EnsureCompletable guards the stock-consuming completion command
func (m *ManufacturingOrder) EnsureCompletable() error {
	switch m.Status {
	case OrderStatusDone:
		return shared.ErrAlreadyDone.WithDetails(map[string]any{"order_id": m.ID})
	case OrderStatusCanceled:
		return shared.NewInvalidTransitionError("manufacturing order", string(m.Status), string(OrderStatusDone))
	}
	return nil
}

// Complete marks the order Done after its components were consumed, force-completing
// every work order. consumedComponents is recorded on the completion event.
func (m *ManufacturingOrder) Complete(workOrders []*WorkOrder, consumedComponents int, now time.Time) (*CascadeReport, error) {
	if err := m.EnsureCompletable(); err != nil {
		return nil, err
	}
	report := newCascadeReport(m)
	m.forceCompleteWorkOrders(workOrders, report, now)
	m.CompletedAt = timePtr(now)
	m.setStatus(OrderStatusDone, now)
	report.finish(m)
	m.AddDomainEvent(NewManufacturingOrderCompletedEvent(m, len(report.WorkOrdersUpdated), consumedComponents))
	return report, nil
}

// ApplyWorkOrderAggregate recomputes the order status from its work orders after a
// work order changed. workOrders must reflect the change already.
// All work orders Completed moves the order to Done; otherwise a Planned order with
// any Completed or Started work order moves to In Progress.
func (m *ManufacturingOrder) ApplyWorkOrderAggregate(workOrders []*WorkOrder, now time.Time) *CascadeReport {
	report := newCascadeReport(m)
	total := len(workOrders)
	completed := 0
	anyStarted := false
	for _, wo := range workOrders {
		switch wo.Status {
		case WorkOrderStatusCompleted:
			completed++
		case WorkOrderStatusStarted:
			anyStarted = true
		}
	}

	switch {
	case total > 0 && completed == total && m.Status != OrderStatusDone:
		m.CompletedAt = timePtr(now)
		m.setStatus(OrderStatusDone, now)
		report.ManufacturingOrderUpdated = true
	case m.Status == OrderStatusPlanned && (completed > 0 || anyStarted):
		if m.StartedAt == nil {
			m.StartedAt = timePtr(now)
		}
		m.setStatus(OrderStatusInProgress, now)
		report.ManufacturingOrderUpdated = true
	}
	report.CompletedWorkOrders = completed
	report.TotalWorkOrders = total
	report.finish(m)
	return report
}

// AcceptsNewWorkOrders returns true while the order is still open
func (m *ManufacturingOrder) AcceptsNewWorkOrders() bool {
	return m.Status == OrderStatusPlanned || m.Status == OrderStatusInProgress
}

func (m *ManufacturingOrder) checkExplicitTransition(target OrderStatus) error {
	if m.Status == target {
		return nil
	}
	allowed := false
	switch m.Status {
	case OrderStatusPlanned:
		allowed = target == OrderStatusInProgress || target == OrderStatusDone || target == OrderStatusCanceled
	case OrderStatusInProgress:
		allowed = target == OrderStatusDone || target == OrderStatusCanceled
	case OrderStatusCanceled:
		allowed = target == OrderStatusPlanned
	}
	if !allowed {
		return shared.NewInvalidTransitionError("manufacturing order", string(m.Status), string(target))
	}
	return nil
}

func (m *ManufacturingOrder) forceCompleteWorkOrders(workOrders []*WorkOrder, report *CascadeReport, now time.Time) {
	for _, wo := range workOrders {
		old := wo.Status
		if wo.ForceComplete(now) {
			report.recordWorkOrder(wo, old, now)
		}
	}
}

func (m *ManufacturingOrder) setStatus(target OrderStatus, now time.Time) {
	old := m.Status
	m.Status = target
	m.UpdatedAt = now
	m.IncrementVersion()
	if old != target {
		m.AddDomainEvent(NewManufacturingOrderStatusChangedEvent(m, old, now))
	}
}
