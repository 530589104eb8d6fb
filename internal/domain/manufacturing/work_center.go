package manufacturing

import (
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CodeWorkCenterInactive rejects assigning work to a deactivated work center
const CodeWorkCenterInactive = "WORK_CENTER_INACTIVE"

// WorkCenter is a station where work orders are performed.
// Its hourly rate prices completed work orders.
type WorkCenter struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	CostPerHour decimal.Decimal
	Capacity    int
	Efficiency  decimal.Decimal
	IsActive    bool
}

// NewWorkCenter creates an active work center.
// Zero capacity defaults to 1 and zero efficiency to 1.0.
func NewWorkCenter(name, description string, costPerHour decimal.Decimal, capacity int, efficiency decimal.Decimal, now time.Time) (*WorkCenter, error) {
	if capacity == 0 {
		capacity = 1
	}
	if efficiency.IsZero() {
		efficiency = decimal.NewFromInt(1)
	}
	root := shared.NewBaseAggregateRoot()
	root.CreatedAt = now
	root.UpdatedAt = now
	wc := &WorkCenter{
		BaseAggregateRoot: root,
		Description:       strings.TrimSpace(description),
		IsActive:          true,
	}
	if err := wc.setName(name); err != nil {
		return nil, err
	}
	if err := wc.setRates(costPerHour, capacity, efficiency); err != nil {
		return nil, err
	}
	return wc, nil
}

// WorkCenterUpdate carries optional changes. Nil fields are left untouched.
type WorkCenterUpdate struct {
	Name        *string
	Description *string
	CostPerHour *decimal.Decimal
	Capacity    *int
	Efficiency  *decimal.Decimal
}

// Update applies changes after validating them
func (w *WorkCenter) Update(u WorkCenterUpdate, now time.Time) error {
	if u.Name != nil {
		if err := w.setName(*u.Name); err != nil {
			return err
		}
	}
	if u.Description != nil {
		w.Description = strings.TrimSpace(*u.Description)
	}
	cost, capacity, efficiency := w.CostPerHour, w.Capacity, w.Efficiency
	if u.CostPerHour != nil {
		cost = *u.CostPerHour
	}
	if u.Capacity != nil {
		capacity = *u.Capacity
	}
	if u.Efficiency != nil {
		efficiency = *u.Efficiency
	}
	if err := w.setRates(cost, capacity, efficiency); err != nil {
		return err
	}
	w.UpdatedAt = now
	w.IncrementVersion()
	return nil
}

// Activate makes the work center available again
func (w *WorkCenter) Activate(now time.Time) {
	w.IsActive = true
	w.UpdatedAt = now
	w.IncrementVersion()
}

// Deactivate hides the work center from default listings
func (w *WorkCenter) Deactivate(now time.Time) {
	w.IsActive = false
	w.UpdatedAt = now
	w.IncrementVersion()
}

func (w *WorkCenter) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Work center name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Work center name cannot exceed 100 characters")
	}
	w.Name = name
	return nil
}

func (w *WorkCenter) setRates(costPerHour decimal.Decimal, capacity int, efficiency decimal.Decimal) error {
	if costPerHour.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost per hour cannot be negative")
	}
	if capacity < 1 {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity must be at least 1")
	}
	if !efficiency.IsPositive() {
		return shared.NewDomainError("INVALID_EFFICIENCY", "Efficiency must be positive")
	}
	w.CostPerHour = costPerHour
	w.Capacity = capacity
	w.Efficiency = efficiency
	return nil
}
