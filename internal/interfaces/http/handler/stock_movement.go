package handler

import (
	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// StockMovementHandler exposes the stock ledger
type StockMovementHandler struct {
	BaseHandler
	ledgerService *inventoryapp.StockLedgerService
}

// NewStockMovementHandler creates a new StockMovementHandler
func NewStockMovementHandler(ledgerService *inventoryapp.StockLedgerService) *StockMovementHandler {
	return &StockMovementHandler{ledgerService: ledgerService}
}

// List godoc
// @ID           listStockMovements
// @Summary      List ledger entries
// @Tags         stock-movements
// @Produce      json
// @Param        component_id  query     string  false  "Component ID"
// @Param        type          query     string  false  "IN, OUT or ADJUSTMENT"
// @Param        page          query     int     false  "Page number"  default(1)
// @Param        page_size     query     int     false  "Page size"    default(20)
// @Success      200           {object}  APIResponse[[]inventoryapp.StockMovementResponse]
// @Failure      400           {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/stock-movements [get]
func (h *StockMovementHandler) List(c *gin.Context) {
	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	movements, total, err := h.ledgerService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// Post godoc
// @ID           postStockMovement
// @Summary      Post a stock movement
// @Description  IN adds, OUT removes, ADJUSTMENT sets the on-hand level to quantity.
// @Description  OUT beyond the on-hand level fails with INSUFFICIENT_STOCK.
// @Tags         stock-movements
// @Accept       json
// @Produce      json
// @Param        request  body      inventoryapp.PostMovementRequest  true  "Movement"
// @Success      201      {object}  APIResponse[inventoryapp.PostMovementResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/stock-movements [post]
func (h *StockMovementHandler) Post(c *gin.Context) {
	var req inventoryapp.PostMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.PostMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}
