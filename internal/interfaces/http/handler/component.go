package handler

import (
	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// ComponentHandler handles the component catalog endpoints
type ComponentHandler struct {
	BaseHandler
	componentService *inventoryapp.ComponentService
	ledgerService    *inventoryapp.StockLedgerService
}

// NewComponentHandler creates a new ComponentHandler
func NewComponentHandler(componentService *inventoryapp.ComponentService, ledgerService *inventoryapp.StockLedgerService) *ComponentHandler {
	return &ComponentHandler{
		componentService: componentService,
		ledgerService:    ledgerService,
	}
}

// List godoc
// @ID           listComponents
// @Summary      List components
// @Description  Paginated component catalog with optional name search and low stock filter
// @Tags         components
// @Produce      json
// @Param        search     query     string  false  "Name contains"
// @Param        low_stock  query     bool    false  "Only components below their reorder level"
// @Param        page       query     int     false  "Page number"  default(1)
// @Param        page_size  query     int     false  "Page size"    default(20)
// @Param        order_by   query     string  false  "Sort field"
// @Param        order_dir  query     string  false  "asc or desc"
// @Success      200        {object}  APIResponse[[]inventoryapp.ComponentResponse]
// @Failure      400        {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/components [get]
func (h *ComponentHandler) List(c *gin.Context) {
	var filter inventoryapp.ComponentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	components, total, err := h.componentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, components, total, filter.Page, filter.PageSize)
}

// Create godoc
// @ID           createComponent
// @Summary      Create a component
// @Description  Registers a component. A positive initial quantity is posted as an IN movement.
// @Tags         components
// @Accept       json
// @Produce      json
// @Param        request  body      inventoryapp.CreateComponentRequest  true  "Component"
// @Success      201      {object}  APIResponse[inventoryapp.ComponentResponse]
// @Failure      400      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/components [post]
func (h *ComponentHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	component, err := h.componentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, component)
}

// GetByID godoc
// @ID           getComponent
// @Summary      Get a component
// @Tags         components
// @Produce      json
// @Param        id   path      string  true  "Component ID"
// @Success      200  {object}  APIResponse[inventoryapp.ComponentResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/components/{id} [get]
func (h *ComponentHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	component, err := h.componentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, component)
}

// Update godoc
// @ID           updateComponent
// @Summary      Update a component
// @Description  Edits component fields. quantity_on_hand is reached through an ADJUSTMENT movement.
// @Tags         components
// @Accept       json
// @Produce      json
// @Param        id       path      string                               true  "Component ID"
// @Param        request  body      inventoryapp.UpdateComponentRequest  true  "Changes"
// @Success      200      {object}  APIResponse[inventoryapp.ComponentResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/components/{id} [put]
func (h *ComponentHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	component, err := h.componentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, component)
}

// Delete godoc
// @ID           deleteComponent
// @Summary      Delete a component
// @Description  Fails with COMPONENT_IN_USE while a BOM references the component
// @Tags         components
// @Param        id  path  string  true  "Component ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/components/{id} [delete]
func (h *ComponentHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.componentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Reconcile godoc
// @ID           reconcileComponent
// @Summary      Compare on-hand quantity with the ledger
// @Tags         components
// @Produce      json
// @Param        id   path      string  true  "Component ID"
// @Success      200  {object}  APIResponse[inventoryapp.ReconcileResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/components/{id}/reconcile [get]
func (h *ComponentHandler) Reconcile(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.ledgerService.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
