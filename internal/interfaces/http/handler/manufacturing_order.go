package handler

import (
	"net/http"
	"time"

	mfgapp "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries a client chosen key that makes an order
// completion request safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderStatusRequest is the body of the order status endpoint
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"In Progress"`
}

// ManufacturingOrderHandler handles the manufacturing order endpoints
type ManufacturingOrderHandler struct {
	BaseHandler
	service        *mfgapp.ManufacturingService
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
}

// NewManufacturingOrderHandler creates a new ManufacturingOrderHandler.
// A nil idempotency store disables Idempotency-Key handling.
func NewManufacturingOrderHandler(service *mfgapp.ManufacturingService, idempotency shared.IdempotencyStore, ttl time.Duration) *ManufacturingOrderHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ManufacturingOrderHandler{
		service:        service,
		idempotency:    idempotency,
		idempotencyTTL: ttl,
	}
}

// List godoc
// @ID           listManufacturingOrders
// @Summary      List manufacturing orders
// @Tags         manufacturing-orders
// @Produce      json
// @Param        status     query     string  false  "Planned, In Progress, Done or Canceled"
// @Param        search     query     string  false  "Product name or order id contains"
// @Param        bom_id     query     string  false  "BOM ID"
// @Param        page       query     int     false  "Page number"  default(1)
// @Param        page_size  query     int     false  "Page size"    default(20)
// @Success      200        {object}  APIResponse[[]mfgapp.OrderResponse]
// @Failure      400        {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders [get]
func (h *ManufacturingOrderHandler) List(c *gin.Context) {
	var filter mfgapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	orders, total, err := h.service.ListManufacturingOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Create godoc
// @ID           createManufacturingOrder
// @Summary      Plan a manufacturing order
// @Description  Creates the order in Planned with one Pending assembly work order.
// @Description  Component shortages are returned as warnings and do not block planning.
// @Tags         manufacturing-orders
// @Accept       json
// @Produce      json
// @Param        request  body      mfgapp.CreateOrderRequest  true  "Order"
// @Success      201      {object}  APIResponse[mfgapp.CreateOrderResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders [post]
func (h *ManufacturingOrderHandler) Create(c *gin.Context) {
	var req mfgapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.service.CreateManufacturingOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID godoc
// @ID           getManufacturingOrder
// @Summary      Get a manufacturing order with its work orders
// @Tags         manufacturing-orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"  example(MO-001)
// @Success      200  {object}  APIResponse[mfgapp.OrderDetailResponse]
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id} [get]
func (h *ManufacturingOrderHandler) GetByID(c *gin.Context) {
	order, err := h.service.GetManufacturingOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// Update godoc
// @ID           updateManufacturingOrder
// @Summary      Update a manufacturing order
// @Description  Edits order fields. A status change cascades to the work orders.
// @Tags         manufacturing-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Order ID"
// @Param        request  body      mfgapp.UpdateOrderRequest  true  "Changes"
// @Success      200      {object}  APIResponse[mfgapp.OrderUpdateResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id} [put]
func (h *ManufacturingOrderHandler) Update(c *gin.Context) {
	var req mfgapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.UpdateManufacturingOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateStatus godoc
// @ID           updateManufacturingOrderStatus
// @Summary      Change the status of a manufacturing order
// @Description  Moving to Done completes every work order; Canceled resets open work orders to Pending.
// @Description  Done through this endpoint does not consume stock; use the complete action for that.
// @Tags         manufacturing-orders
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Order ID"
// @Param        request  body      OrderStatusRequest  true  "Target status"
// @Success      200      {object}  APIResponse[mfgapp.OrderUpdateResponse]
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id}/status [put]
func (h *ManufacturingOrderHandler) UpdateStatus(c *gin.Context) {
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.UpdateManufacturingOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deleteManufacturingOrder
// @Summary      Delete a manufacturing order and its work orders
// @Tags         manufacturing-orders
// @Param        id  path  string  true  "Order ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id} [delete]
func (h *ManufacturingOrderHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteManufacturingOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Complete godoc
// @ID           completeManufacturingOrder
// @Summary      Complete a manufacturing order
// @Description  Consumes the BOM components for the order quantity, marks the order Done and
// @Description  completes every open work order, all in one transaction. A repeated
// @Description  Idempotency-Key is rejected with DUPLICATE_REQUEST.
// @Tags         manufacturing-orders
// @Produce      json
// @Param        id               path      string  true   "Order ID"
// @Param        Idempotency-Key  header    string  false  "Client retry key"
// @Success      200              {object}  APIResponse[mfgapp.CompletionResponse]
// @Failure      404              {object}  ErrorResponse
// @Failure      409              {object}  ErrorResponse
// @Failure      422              {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /manufacturing/orders/{id}/complete [post]
func (h *ManufacturingOrderHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	key := c.GetHeader(IdempotencyKeyHeader)
	guarded := false
	if key != "" && h.idempotency != nil {
		storeKey := "mo-complete:" + id + ":" + key
		fresh, err := h.idempotency.MarkProcessed(ctx, storeKey, h.idempotencyTTL)
		switch {
		case err != nil:
			// The order row lock still rejects a second completion with ALREADY_DONE
			logger.L(ctx).Warn("Idempotency store unavailable, completing without key check",
				zap.String("order_id", id),
				zap.Error(err),
			)
		case !fresh:
			h.Error(c, http.StatusConflict, dto.ErrCodeDuplicateKey, "A completion with this Idempotency-Key was already accepted")
			return
		default:
			guarded = true
			defer func() {
				if c.Writer.Status() >= http.StatusBadRequest {
					if err := h.idempotency.Release(ctx, storeKey); err != nil {
						logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
					}
				}
			}()
		}
	}

	result, err := h.service.CompleteManufacturingOrder(ctx, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if guarded {
		c.Header(IdempotencyKeyHeader, key)
	}
	h.Success(c, result)
}
