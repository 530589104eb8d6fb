package manufacturing

import (
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderResponse represents a manufacturing order in API responses
type OrderResponse struct {
	ID          string     `json:"id"`
	ProductName string     `json:"product_name"`
	Quantity    int64      `json:"quantity"`
	BOMID       uuid.UUID  `json:"bom_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    time.Time  `json:"deadline"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// OrderDetailResponse is an order together with its work orders
type OrderDetailResponse struct {
	OrderResponse
	WorkOrders []WorkOrderResponse `json:"work_orders"`
}

// WorkOrderResponse represents a work order in API responses
type WorkOrderResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	ManufacturingOrderID  string           `json:"manufacturing_order_id"`
	WorkCenterID          *uuid.UUID       `json:"work_center_id,omitempty"`
	AssignedUserID        *uuid.UUID       `json:"assigned_user_id,omitempty"`
	Status                string           `json:"status"`
	Sequence              int              `json:"sequence"`
	StartedAt             *time.Time       `json:"started_at,omitempty"`
	CompletedAt           *time.Time       `json:"completed_at,omitempty"`
	DurationMinutes       int              `json:"duration_minutes"`
	ActualDurationMinutes *int             `json:"actual_duration_minutes,omitempty"`
	ActualCost            *decimal.Decimal `json:"actual_cost,omitempty"`
	QualityCheck          bool             `json:"quality_check"`
	Notes                 string           `json:"notes,omitempty"`
	Issues                string           `json:"issues,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	BOMID    *uuid.UUID `form:"bom_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateOrderRequest represents a request to plan a manufacturing order
type CreateOrderRequest struct {
	ProductName     string     `json:"product_name" binding:"required,max=200"`
	Quantity        int64      `json:"quantity" binding:"required,min=1,max=1000000"`
	BOMID           uuid.UUID  `json:"bom_id" binding:"required"`
	Deadline        time.Time  `json:"deadline" binding:"required"`
	Priority        string     `json:"priority" binding:"omitempty,priority"`
	Notes           string     `json:"notes" binding:"max=2000"`
	DurationMinutes int        `json:"duration_minutes" binding:"min=0"`
	AssignedUserID  *uuid.UUID `json:"assigned_user_id"`
	WorkCenterID    *uuid.UUID `json:"work_center_id"`
}

// CreateOrderResponse is the planned order, its generated work order and any
// component shortages known at planning time
type CreateOrderResponse struct {
	Order      OrderResponse          `json:"order"`
	WorkOrders []WorkOrderResponse    `json:"work_orders"`
	Warnings   inventory.Requirements `json:"warnings"`
}

// UpdateOrderRequest represents a request to edit an order. Status is applied
// after the descriptive fields and triggers its work order cascade.
type UpdateOrderRequest struct {
	ProductName *string    `json:"product_name" binding:"omitempty,max=200"`
	Quantity    *int64     `json:"quantity" binding:"omitempty,min=1,max=1000000"`
	Deadline    *time.Time `json:"deadline"`
	BOMID       *uuid.UUID `json:"bom_id"`
	Priority    *string    `json:"priority" binding:"omitempty,priority"`
	Notes       *string    `json:"notes" binding:"omitempty,max=2000"`
	Status      *string    `json:"status"`
}

// OrderUpdateResponse is the order after an update and the cascade it caused
type OrderUpdateResponse struct {
	Order   OrderResponse                `json:"order"`
	Cascade *manufacturing.CascadeReport `json:"cascade,omitempty"`
}

// CompletionResponse is the result of completing an order with stock consumption
type CompletionResponse struct {
	Order             OrderResponse                        `json:"order"`
	ConsumedMovements []inventoryapp.StockMovementResponse `json:"consumed_movements"`
	WorkOrdersUpdated []manufacturing.WorkOrderChange      `json:"work_orders_updated"`
}

// CreateWorkOrderRequest represents a request to append a work order to an order
type CreateWorkOrderRequest struct {
	Name            string     `json:"name" binding:"required,max=200"`
	WorkCenterID    *uuid.UUID `json:"work_center_id"`
	AssignedUserID  *uuid.UUID `json:"assigned_user_id"`
	DurationMinutes int        `json:"duration_minutes" binding:"min=0"`
	Notes           string     `json:"notes" binding:"max=2000"`
}

// UpdateWorkOrderRequest represents a request to edit a work order.
// Status goes through the same transition rules as the action endpoints.
type UpdateWorkOrderRequest struct {
	Name            *string    `json:"name" binding:"omitempty,max=200"`
	WorkCenterID    *uuid.UUID `json:"work_center_id"`
	ClearWorkCenter bool       `json:"clear_work_center"`
	AssignedUserID  *uuid.UUID `json:"assigned_user_id"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,min=1"`
	Notes           *string    `json:"notes" binding:"omitempty,max=2000"`
	Issues          *string    `json:"issues" binding:"omitempty,max=2000"`
	QualityCheck    *bool      `json:"quality_check"`
	Status          *string    `json:"status"`
}

// CompleteWorkOrderRequest carries the optional fields recorded on completion
type CompleteWorkOrderRequest struct {
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
	Issues       *string `json:"issues" binding:"omitempty,max=2000"`
	QualityCheck *bool   `json:"quality_check"`
}

// WorkOrderActionResponse is a work order after a change and the cascade it caused on its order
type WorkOrderActionResponse struct {
	WorkOrder WorkOrderResponse            `json:"work_order"`
	Cascade   *manufacturing.CascadeReport `json:"cascade"`
}

// WorkCenterResponse represents a work center in API responses
type WorkCenterResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CostPerHour decimal.Decimal `json:"cost_per_hour"`
	Capacity    int             `json:"capacity"`
	Efficiency  decimal.Decimal `json:"efficiency"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WorkCenterListFilter represents filter options for the work center list
type WorkCenterListFilter struct {
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreateWorkCenterRequest represents a request to register a work center
type CreateWorkCenterRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=500"`
	CostPerHour decimal.Decimal `json:"cost_per_hour"`
	Capacity    int             `json:"capacity" binding:"min=0"`
	Efficiency  decimal.Decimal `json:"efficiency"`
}

// UpdateWorkCenterRequest represents a request to edit a work center
type UpdateWorkCenterRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	CostPerHour *decimal.Decimal `json:"cost_per_hour"`
	Capacity    *int             `json:"capacity" binding:"omitempty,min=1"`
	Efficiency  *decimal.Decimal `json:"efficiency"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(m *manufacturing.ManufacturingOrder) OrderResponse {
	return OrderResponse{
		ID:          m.ID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		BOMID:       m.BOMID,
		Status:      m.Status.String(),
		Priority:    string(m.Priority),
		Deadline:    m.Deadline,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Version:     m.Version,
	}
}

// ToWorkOrderResponse converts a domain work order to a response DTO
func ToWorkOrderResponse(w *manufacturing.WorkOrder) WorkOrderResponse {
	resp := WorkOrderResponse{
		ID:                    w.ID,
		Name:                  w.Name,
		ManufacturingOrderID:  w.ManufacturingOrderID,
		WorkCenterID:          w.WorkCenterID,
		AssignedUserID:        w.AssignedUserID,
		Status:                w.Status.String(),
		Sequence:              w.Sequence,
		StartedAt:             w.StartedAt,
		CompletedAt:           w.CompletedAt,
		DurationMinutes:       w.DurationMinutes,
		ActualDurationMinutes: w.ActualDurationMinutes,
		QualityCheck:          w.QualityCheck,
		Notes:                 w.Notes,
		Issues:                w.Issues,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
	}
	if w.ActualCost.Valid {
		cost := w.ActualCost.Decimal
		resp.ActualCost = &cost
	}
	return resp
}

// ToWorkOrderResponses converts a slice of work orders
func ToWorkOrderResponses(workOrders []*manufacturing.WorkOrder) []WorkOrderResponse {
	responses := make([]WorkOrderResponse, len(workOrders))
	for i, wo := range workOrders {
		responses[i] = ToWorkOrderResponse(wo)
	}
	return responses
}

// ToWorkCenterResponse converts a domain work center to a response DTO
func ToWorkCenterResponse(w *manufacturing.WorkCenter) WorkCenterResponse {
	return WorkCenterResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		CostPerHour: w.CostPerHour,
		Capacity:    w.Capacity,
		Efficiency:  w.Efficiency,
		IsActive:    w.IsActive,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
