package handler

import (
	mfgapp "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// WorkOrderStatusRequest is the body of the work order status endpoint
type WorkOrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Started"`
}

// WorkOrderHandler handles the work order endpoints
type WorkOrderHandler struct {
	BaseHandler
	service *mfgapp.ManufacturingService
}

// NewWorkOrderHandler creates a new WorkOrderHandler
func NewWorkOrderHandler(service *mfgapp.ManufacturingService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

// ListByOrder godoc
// @ID           listWorkOrders
// @Summary      List the work orders of a manufacturing order
// @Tags         work-orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  APIResponse[[]mfgapp.WorkOrderResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id}/work-orders [get]
func (h *WorkOrderHandler) ListByOrder(c *gin.Context) {
	workOrders, err := h.service.ListWorkOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, workOrders)
}

// Create godoc
// @ID           createWorkOrder
// @Summary      Add a work order to a manufacturing order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Order ID"
// @Param        request  body      mfgapp.CreateWorkOrderRequest  true  "Work order"
// @Success      201      {object}  APIResponse[mfgapp.WorkOrderResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id}/work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req mfgapp.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	workOrder, err := h.service.CreateWorkOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, workOrder)
}

// GetByID godoc
// @ID           getWorkOrder
// @Summary      Get a work order
// @Tags         work-orders
// @Produce      json
// @Param        id   path      string  true  "Work order ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkOrderResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	workOrder, err := h.service.GetWorkOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, workOrder)
}

// Update godoc
// @ID           updateWorkOrder
// @Summary      Update a work order
// @Description  Edits details; a status value goes through the same transition rules as the actions
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Work order ID"
// @Param        request  body      mfgapp.UpdateWorkOrderRequest  true  "Changes"
// @Success      200      {object}  APIResponse[mfgapp.WorkOrderActionResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req mfgapp.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.UpdateWorkOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateStatus godoc
// @ID           updateWorkOrderStatus
// @Summary      Change the status of a work order
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Work order ID"
// @Param        request  body      WorkOrderStatusRequest  true  "Target status"
// @Success      200      {object}  APIResponse[mfgapp.WorkOrderActionResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id}/status [put]
func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req WorkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.UpdateWorkOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Start godoc
// @ID           startWorkOrder
// @Summary      Start a work order
// @Description  Pending to Started. The caller becomes the assignee when none is set.
// @Tags         work-orders
// @Produce      json
// @Param        id   path      string  true  "Work order ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkOrderActionResponse]
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id}/start [post]
func (h *WorkOrderHandler) Start(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.StartWorkOrder(c.Request.Context(), id, middleware.GetActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Pause godoc
// @ID           pauseWorkOrder
// @Summary      Pause a started work order
// @Tags         work-orders
// @Produce      json
// @Param        id   path      string  true  "Work order ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkOrderActionResponse]
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id}/pause [post]
func (h *WorkOrderHandler) Pause(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.PauseWorkOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Resume godoc
// @ID           resumeWorkOrder
// @Summary      Resume a paused work order
// @Tags         work-orders
// @Produce      json
// @Param        id   path      string  true  "Work order ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkOrderActionResponse]
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id}/resume [post]
func (h *WorkOrderHandler) Resume(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.ResumeWorkOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Complete godoc
// @ID           completeWorkOrder
// @Summary      Complete a started or paused work order
// @Description  Records the actual duration and cost. Completing the last open work order
// @Description  moves its manufacturing order to Done.
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true   "Work order ID"
// @Param        request  body      mfgapp.CompleteWorkOrderRequest  false  "Completion notes"
// @Success      200      {object}  APIResponse[mfgapp.WorkOrderActionResponse]
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-orders/{id}/complete [post]
func (h *WorkOrderHandler) Complete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req mfgapp.CompleteWorkOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.ValidationError(c, err)
			return
		}
	}

	result, err := h.service.CompleteWorkOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
