package manufacturing

import (
	"time"

	"github.com/google/uuid"
)

// WorkOrderChange records one work order touched by a cascade
type WorkOrderChange struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	OldStatus WorkOrderStatus `json:"old_status"`
	NewStatus WorkOrderStatus `json:"new_status"`
	ChangedAt time.Time       `json:"changed_at"`
}

// CascadeReport describes what a status change did to an order and its work orders
type CascadeReport struct {
	OrderID                   string            `json:"order_id"`
	OldStatus                 OrderStatus       `json:"old_status"`
	NewStatus                 OrderStatus       `json:"new_status"`
	ManufacturingOrderUpdated bool              `json:"manufacturing_order_updated"`
	CompletedWorkOrders       int               `json:"completed_work_orders"`
	TotalWorkOrders           int               `json:"total_work_orders"`
	WorkOrdersUpdated         []WorkOrderChange `json:"work_orders_updated"`
}

// AffectedWorkOrders returns how many work orders changed status
func (r *CascadeReport) AffectedWorkOrders() int {
	return len(r.WorkOrdersUpdated)
}

func newCascadeReport(m *ManufacturingOrder) *CascadeReport {
	return &CascadeReport{
		OrderID:           m.ID,
		OldStatus:         m.Status,
		NewStatus:         m.Status,
		WorkOrdersUpdated: make([]WorkOrderChange, 0),
	}
}

func (r *CascadeReport) recordWorkOrder(wo *WorkOrder, old WorkOrderStatus, now time.Time) {
	r.WorkOrdersUpdated = append(r.WorkOrdersUpdated, WorkOrderChange{
		ID:        wo.ID,
		Name:      wo.Name,
		OldStatus: old,
		NewStatus: wo.Status,
		ChangedAt: now,
	})
}

func (r *CascadeReport) finish(m *ManufacturingOrder) {
	r.NewStatus = m.Status
	if r.OldStatus != r.NewStatus {
		r.ManufacturingOrderUpdated = true
	}
}
