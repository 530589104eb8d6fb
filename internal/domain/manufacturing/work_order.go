package manufacturing

import (
	"math"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWorkOrderDurationMinutes is the estimate used when none is supplied
const DefaultWorkOrderDurationMinutes = 60

// WorkOrder is one sequenced task of a manufacturing order.
// It is owned by its order and deleted with it.
type WorkOrder struct {
	shared.BaseEntity
	Name                  string
	ManufacturingOrderID  string
	WorkCenterID          *uuid.UUID
	AssignedUserID        *uuid.UUID
	Status                WorkOrderStatus
	Sequence              int
	StartedAt             *time.Time
	CompletedAt           *time.Time
	DurationMinutes       int
	ActualDurationMinutes *int
	ActualCost            decimal.NullDecimal
	QualityCheck          bool
	Notes                 string
	Issues                string
}

// NewWorkOrder creates a Pending work order for an order
func NewWorkOrder(orderID, name string, sequence, durationMinutes int, now time.Time) (*WorkOrder, error) {
	name = strings.TrimSpace(name)
	if orderID == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "Manufacturing order ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Work order name cannot be empty")
	}
	if sequence <= 0 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Sequence must be positive")
	}
	if durationMinutes == 0 {
		durationMinutes = DefaultWorkOrderDurationMinutes
	}
	if durationMinutes < 0 {
		return nil, shared.NewDomainError("INVALID_DURATION", "Duration cannot be negative")
	}
	return &WorkOrder{
		BaseEntity:           shared.NewBaseEntityAt(now),
		Name:                 name,
		ManufacturingOrderID: orderID,
		Status:               WorkOrderStatusPending,
		Sequence:             sequence,
		DurationMinutes:      durationMinutes,
	}, nil
}

// CompletionDetails carries the optional fields recorded when a work order completes
type CompletionDetails struct {
	Notes        *string
	Issues       *string
	QualityCheck *bool
}

// Start moves a Pending work order to Started and assigns actor if nobody is assigned yet
func (w *WorkOrder) Start(actor *uuid.UUID, now time.Time) error {
	if w.Status != WorkOrderStatusPending {
		return w.invalidTransition(WorkOrderStatusStarted)
	}
	w.Status = WorkOrderStatusStarted
	w.StartedAt = timePtr(now)
	if w.AssignedUserID == nil && actor != nil && *actor != uuid.Nil {
		id := *actor
		w.AssignedUserID = &id
	}
	w.UpdatedAt = now
	return nil
}

// Pause moves a Started work order to Paused
func (w *WorkOrder) Pause(now time.Time) error {
	if w.Status != WorkOrderStatusStarted {
		return w.invalidTransition(WorkOrderStatusPaused)
	}
	w.Status = WorkOrderStatusPaused
	w.UpdatedAt = now
	return nil
}

// Resume moves a Paused work order back to Started
func (w *WorkOrder) Resume(now time.Time) error {
	if w.Status != WorkOrderStatusPaused {
		return w.invalidTransition(WorkOrderStatusStarted)
	}
	w.Status = WorkOrderStatusStarted
	if w.StartedAt == nil {
		w.StartedAt = timePtr(now)
	}
	w.UpdatedAt = now
	return nil
}

// Complete moves a Started or Paused work order to Completed and derives the
// actual duration and, when costPerHour is positive, the actual cost.
func (w *WorkOrder) Complete(details CompletionDetails, costPerHour decimal.Decimal, now time.Time) error {
	if w.Status != WorkOrderStatusStarted && w.Status != WorkOrderStatusPaused {
		return w.invalidTransition(WorkOrderStatusCompleted)
	}
	w.Status = WorkOrderStatusCompleted
	w.CompletedAt = timePtr(now)
	if details.Notes != nil {
		w.Notes = *details.Notes
	}
	if details.Issues != nil {
		w.Issues = *details.Issues
	}
	if details.QualityCheck != nil {
		w.QualityCheck = *details.QualityCheck
	}
	w.deriveActuals(costPerHour)
	w.UpdatedAt = now
	return nil
}

// SetStatus is the generic transition used by direct edits. It follows the
// same edges as Start, Pause, Resume and Complete. Setting the current status
// is a no-op and reports changed=false.
func (w *WorkOrder) SetStatus(target WorkOrderStatus, costPerHour decimal.Decimal, now time.Time) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewInvalidStatusValueError("work order", string(target))
	}
	if target == w.Status {
		return false, nil
	}
	if !w.Status.CanTransitionTo(target) {
		return false, w.invalidTransition(target)
	}

	w.Status = target
	switch target {
	case WorkOrderStatusStarted:
		if w.StartedAt == nil {
			w.StartedAt = timePtr(now)
		}
	case WorkOrderStatusCompleted:
		if w.CompletedAt == nil {
			w.CompletedAt = timePtr(now)
		}
		w.deriveActuals(costPerHour)
	}
	w.UpdatedAt = now
	return true, nil
}

// ForceComplete completes the work order regardless of its state, used when the
// whole manufacturing order is marked Done. Returns false if it was already Completed.
func (w *WorkOrder) ForceComplete(now time.Time) bool {
	if w.Status == WorkOrderStatusCompleted {
		return false
	}
	w.Status = WorkOrderStatusCompleted
	w.CompletedAt = timePtr(now)
	if w.StartedAt == nil {
		w.StartedAt = timePtr(now)
	}
	w.UpdatedAt = now
	return true
}

// ResetToPending reverts a non-Completed work order to Pending, keeping its timestamps.
// Returns false if nothing changed.
func (w *WorkOrder) ResetToPending(now time.Time) bool {
	if w.Status == WorkOrderStatusCompleted || w.Status == WorkOrderStatusPending {
		return false
	}
	w.Status = WorkOrderStatusPending
	w.UpdatedAt = now
	return true
}

// WorkOrderUpdate carries optional descriptive changes. Nil fields are left untouched.
type WorkOrderUpdate struct {
	Name            *string
	WorkCenterID    *uuid.UUID
	ClearWorkCenter bool
	AssignedUserID  *uuid.UUID
	DurationMinutes *int
	Notes           *string
	Issues          *string
	QualityCheck    *bool
}

// Update applies descriptive changes; status is never changed here
func (w *WorkOrder) Update(u WorkOrderUpdate, now time.Time) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Work order name cannot be empty")
		}
		w.Name = name
	}
	if u.ClearWorkCenter {
		w.WorkCenterID = nil
	} else if u.WorkCenterID != nil {
		id := *u.WorkCenterID
		w.WorkCenterID = &id
	}
	if u.AssignedUserID != nil {
		id := *u.AssignedUserID
		w.AssignedUserID = &id
	}
	if u.DurationMinutes != nil {
		if *u.DurationMinutes <= 0 {
			return shared.NewDomainError("INVALID_DURATION", "Duration must be positive")
		}
		w.DurationMinutes = *u.DurationMinutes
	}
	if u.Notes != nil {
		w.Notes = *u.Notes
	}
	if u.Issues != nil {
		w.Issues = *u.Issues
	}
	if u.QualityCheck != nil {
		w.QualityCheck = *u.QualityCheck
	}
	w.UpdatedAt = now
	return nil
}

// IsCompleted returns true if the work order reached its terminal state
func (w *WorkOrder) IsCompleted() bool {
	return w.Status == WorkOrderStatusCompleted
}

// deriveActuals sets actual duration from the recorded timestamps and the cost
// from the work center rate. Cost uses the exact elapsed time, not the rounded minutes.
func (w *WorkOrder) deriveActuals(costPerHour decimal.Decimal) {
	if w.StartedAt == nil || w.CompletedAt == nil {
		return
	}
	elapsed := w.CompletedAt.Sub(*w.StartedAt)
	minutes := int(math.Round(elapsed.Minutes()))
	w.ActualDurationMinutes = &minutes
	if costPerHour.IsPositive() {
		cost := decimal.NewFromInt(elapsed.Milliseconds()).
			Div(decimal.NewFromInt(time.Hour.Milliseconds())).
			Mul(costPerHour).
			Round(2)
		w.ActualCost = decimal.NewNullDecimal(cost)
	}
}

func (w *WorkOrder) invalidTransition(target WorkOrderStatus) error {
	return shared.NewInvalidTransitionError("work order", string(w.Status), string(target))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
