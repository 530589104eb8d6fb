package router

import (
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
)

// Handlers groups the API handlers mounted by RegisterAPI
type Handlers struct {
	Components     *handler.ComponentHandler
	StockMovements *handler.StockMovementHandler
	BOMs           *handler.BOMHandler
	WorkCenters    *handler.WorkCenterHandler
	Orders         *handler.ManufacturingOrderHandler
	WorkOrders     *handler.WorkOrderHandler
	System         *handler.SystemHandler
}

// InventoryRoutes mounts the component catalog, stock ledger and BOM routes
func InventoryRoutes(h Handlers) *DomainGroup {
	inventory := NewDomainGroup("inventory", "/inventory")

	inventory.Group("components", "/components").
		GET("", h.Components.List).
		POST("", h.Components.Create).
		GET("/:id", h.Components.GetByID).
		PUT("/:id", h.Components.Update).
		DELETE("/:id", h.Components.Delete).
		GET("/:id/reconcile", h.Components.Reconcile)

	inventory.Group("stock-movements", "/stock-movements").
		GET("", h.StockMovements.List).
		POST("", h.StockMovements.Post)

	inventory.Group("boms", "/boms").
		GET("", h.BOMs.List).
		POST("", h.BOMs.Create).
		GET("/:id", h.BOMs.GetByID).
		PUT("/:id", h.BOMs.Update).
		DELETE("/:id", h.BOMs.Delete).
		GET("/:id/availability", h.BOMs.Availability)

	return inventory
}

// ManufacturingRoutes mounts the work center, order and work order routes
func ManufacturingRoutes(h Handlers) *DomainGroup {
	mfg := NewDomainGroup("manufacturing", "/manufacturing")

	mfg.Group("work-centers", "/work-centers").
		GET("", h.WorkCenters.List).
		POST("", h.WorkCenters.Create).
		GET("/:id", h.WorkCenters.GetByID).
		PUT("/:id", h.WorkCenters.Update).
		POST("/:id/activate", h.WorkCenters.Activate).
		POST("/:id/deactivate", h.WorkCenters.Deactivate)

	mfg.Group("orders", "/orders").
		GET("", h.Orders.List).
		POST("", h.Orders.Create).
		GET("/:id", h.Orders.GetByID).
		PUT("/:id", h.Orders.Update).
		DELETE("/:id", h.Orders.Delete).
		PUT("/:id/status", h.Orders.UpdateStatus).
		POST("/:id/complete", h.Orders.Complete).
		GET("/:id/work-orders", h.WorkOrders.ListByOrder).
		POST("/:id/work-orders", h.WorkOrders.Create)

	mfg.Group("work-orders", "/work-orders").
		GET("/:id", h.WorkOrders.GetByID).
		PUT("/:id", h.WorkOrders.Update).
		PUT("/:id/status", h.WorkOrders.UpdateStatus).
		POST("/:id/start", h.WorkOrders.Start).
		POST("/:id/pause", h.WorkOrders.Pause).
		POST("/:id/resume", h.WorkOrders.Resume).
		POST("/:id/complete", h.WorkOrders.Complete)

	return mfg
}

// SystemRoutes mounts the versioned system routes
func SystemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.System.Ping).
		GET("/info", h.System.GetSystemInfo)
}

// RegisterAPI registers every domain group of the API on r
func RegisterAPI(r *Router, h Handlers) *Router {
	return r.Register(InventoryRoutes(h), ManufacturingRoutes(h), SystemRoutes(h))
}
