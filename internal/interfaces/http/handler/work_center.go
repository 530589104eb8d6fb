package handler

import (
	mfgapp "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/gin-gonic/gin"
)

// WorkCenterHandler handles the work center registry endpoints
type WorkCenterHandler struct {
	BaseHandler
	workCenterService *mfgapp.WorkCenterService
}

// NewWorkCenterHandler creates a new WorkCenterHandler
func NewWorkCenterHandler(workCenterService *mfgapp.WorkCenterService) *WorkCenterHandler {
	return &WorkCenterHandler{workCenterService: workCenterService}
}

// List godoc
// @ID           listWorkCenters
// @Summary      List work centers
// @Tags         work-centers
// @Produce      json
// @Param        search            query     string  false  "Name contains"
// @Param        include_inactive  query     bool    false  "Include deactivated work centers"
// @Param        page              query     int     false  "Page number"  default(1)
// @Param        page_size         query     int     false  "Page size"    default(20)
// @Success      200               {object}  APIResponse[[]mfgapp.WorkCenterResponse]
// @Security     BearerAuth
// @Router       /manufacturing/work-centers [get]
func (h *WorkCenterHandler) List(c *gin.Context) {
	var filter mfgapp.WorkCenterListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	centers, total, err := h.workCenterService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, centers, total, filter.Page, filter.PageSize)
}

// Create godoc
// @ID           createWorkCenter
// @Summary      Register a work center
// @Tags         work-centers
// @Accept       json
// @Produce      json
// @Param        request  body      mfgapp.CreateWorkCenterRequest  true  "Work center"
// @Success      201      {object}  APIResponse[mfgapp.WorkCenterResponse]
// @Failure      400      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-centers [post]
func (h *WorkCenterHandler) Create(c *gin.Context) {
	var req mfgapp.CreateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	center, err := h.workCenterService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, center)
}

// GetByID godoc
// @ID           getWorkCenter
// @Summary      Get a work center
// @Tags         work-centers
// @Produce      json
// @Param        id   path      string  true  "Work center ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkCenterResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-centers/{id} [get]
func (h *WorkCenterHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	center, err := h.workCenterService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, center)
}

// Update godoc
// @ID           updateWorkCenter
// @Summary      Update a work center
// @Tags         work-centers
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Work center ID"
// @Param        request  body      mfgapp.UpdateWorkCenterRequest  true  "Changes"
// @Success      200      {object}  APIResponse[mfgapp.WorkCenterResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-centers/{id} [put]
func (h *WorkCenterHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req mfgapp.UpdateWorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	center, err := h.workCenterService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, center)
}

// Activate godoc
// @ID           activateWorkCenter
// @Summary      Activate a work center
// @Tags         work-centers
// @Produce      json
// @Param        id   path      string  true  "Work center ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkCenterResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-centers/{id}/activate [post]
func (h *WorkCenterHandler) Activate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	center, err := h.workCenterService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, center)
}

// Deactivate godoc
// @ID           deactivateWorkCenter
// @Summary      Deactivate a work center
// @Description  Inactive work centers cannot be assigned to new or edited work orders
// @Tags         work-centers
// @Produce      json
// @Param        id   path      string  true  "Work center ID"
// @Success      200  {object}  APIResponse[mfgapp.WorkCenterResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/work-centers/{id}/deactivate [post]
func (h *WorkCenterHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	center, err := h.workCenterService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, center)
}
