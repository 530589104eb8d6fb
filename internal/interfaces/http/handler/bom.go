package handler

import (
	"strconv"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BOMHandler handles the bill of materials endpoints
type BOMHandler struct {
	BaseHandler
	bomService *inventoryapp.BOMService
}

// NewBOMHandler creates a new BOMHandler
func NewBOMHandler(bomService *inventoryapp.BOMService) *BOMHandler {
	return &BOMHandler{bomService: bomService}
}

// List godoc
// @ID           listBOMs
// @Summary      List bills of materials
// @Tags         boms
// @Produce      json
// @Param        search     query     string  false  "Name contains"
// @Param        page       query     int     false  "Page number"  default(1)
// @Param        page_size  query     int     false  "Page size"    default(20)
// @Success      200        {object}  APIResponse[[]inventoryapp.BOMResponse]
// @Failure      400        {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/boms [get]
func (h *BOMHandler) List(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		h.BadRequest(c, "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(c, "page_size", 20)
	if err != nil || pageSize < 1 || pageSize > 100 {
		h.BadRequest(c, "page_size must be between 1 and 100")
		return
	}

	boms, total, err := h.bomService.List(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, boms, total, page, pageSize)
}

// Create godoc
// @ID           createBOM
// @Summary      Create a bill of materials
// @Tags         boms
// @Accept       json
// @Produce      json
// @Param        request  body      inventoryapp.CreateBOMRequest  true  "BOM"
// @Success      201      {object}  APIResponse[inventoryapp.BOMResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/boms [post]
func (h *BOMHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	bom, err := h.bomService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, bom)
}

// GetByID godoc
// @ID           getBOM
// @Summary      Get a bill of materials
// @Tags         boms
// @Produce      json
// @Param        id   path      string  true  "BOM ID"
// @Success      200  {object}  APIResponse[inventoryapp.BOMResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/boms/{id} [get]
func (h *BOMHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bom, err := h.bomService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bom)
}

// Update godoc
// @ID           updateBOM
// @Summary      Update a bill of materials
// @Description  A components list replaces every line of the BOM
// @Tags         boms
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "BOM ID"
// @Param        request  body      inventoryapp.UpdateBOMRequest  true  "Changes"
// @Success      200      {object}  APIResponse[inventoryapp.BOMResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/boms/{id} [put]
func (h *BOMHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	bom, err := h.bomService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, bom)
}

// Delete godoc
// @ID           deleteBOM
// @Summary      Delete a bill of materials
// @Description  Fails with BOM_IN_USE while a manufacturing order references it
// @Tags         boms
// @Param        id  path  string  true  "BOM ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/boms/{id} [delete]
func (h *BOMHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bomService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Availability godoc
// @ID           checkBOMAvailability
// @Summary      Resolve component requirements
// @Description  Required and available quantity per component for producing quantity units
// @Tags         boms
// @Produce      json
// @Param        id        path      string  true  "BOM ID"
// @Param        quantity  query     int     true  "Units to produce"
// @Success      200       {object}  APIResponse[inventoryapp.AvailabilityResponse]
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/boms/{id}/availability [get]
func (h *BOMHandler) Availability(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidQuantity), dto.ErrCodeInvalidQuantity, "quantity must be a positive integer")
		return
	}

	result, err := h.bomService.CheckAvailability(c.Request.Context(), id, quantity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
