package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	mfgapp "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/cache"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/erp/manufacturing/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var apiNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func init() {
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

type apiFixture struct {
	store  *testutil.MemoryStore
	engine *gin.Engine
}

// newAPIFixture wires the handlers over in-memory repositories with the
// same paths the router registers
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := testutil.NewMemoryStore()
	clock := &shared.FixedClock{T: apiNow}
	log := zap.NewNop()

	invScope := inventoryapp.NewNoOpTransactionScope(store.Components(), store.StockMovements(), store.BOMs())
	mfgScope := mfgapp.NewNoOpTransactionScope(mfgapp.Repositories{
		Components:          store.Components(),
		StockMovements:      store.StockMovements(),
		BOMs:                store.BOMs(),
		ManufacturingOrders: store.ManufacturingOrders(),
		WorkOrders:          store.WorkOrders(),
		WorkCenters:         store.WorkCenters(),
	})

	components := NewComponentHandler(
		inventoryapp.NewComponentService(invScope, store.Components(), clock, log),
		inventoryapp.NewStockLedgerService(invScope, store.Components(), store.StockMovements(), clock, log),
	)
	movements := NewStockMovementHandler(
		inventoryapp.NewStockLedgerService(invScope, store.Components(), store.StockMovements(), clock, log),
	)
	boms := NewBOMHandler(
		inventoryapp.NewBOMService(invScope, store.BOMs(), store.Components(), store.ManufacturingOrders(), clock, log),
	)
	service := mfgapp.NewManufacturingService(mfgScope, store.ManufacturingOrders(), store.WorkOrders(), clock, mfgapp.DefaultConfig(), log)
	orders := NewManufacturingOrderHandler(service, cache.NewInMemoryIdempotencyStore(), time.Hour)
	workOrders := NewWorkOrderHandler(service)

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.POST("/inventory/components", components.Create)
	api.GET("/inventory/components/:id", components.GetByID)
	api.GET("/inventory/components/:id/reconcile", components.Reconcile)
	api.POST("/inventory/stock-movements", movements.Post)
	api.POST("/inventory/boms", boms.Create)
	api.GET("/inventory/boms/:id/availability", boms.Availability)
	api.POST("/manufacturing/orders", orders.Create)
	api.GET("/manufacturing/orders/:id", orders.GetByID)
	api.POST("/manufacturing/orders/:id/complete", orders.Complete)
	api.GET("/manufacturing/orders/:id/work-orders", workOrders.ListByOrder)
	api.POST("/manufacturing/work-orders/:id/start", workOrders.Start)
	api.POST("/manufacturing/work-orders/:id/pause", workOrders.Pause)
	api.POST("/manufacturing/work-orders/:id/resume", workOrders.Resume)
	api.POST("/manufacturing/work-orders/:id/complete", workOrders.Complete)

	return &apiFixture{store: store, engine: engine}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) seedComponent(t *testing.T, name string, onHand int64) *inventory.Component {
	t.Helper()
	c, err := inventory.NewComponent(name, decimal.NewFromInt(3), "", 0, apiNow)
	require.NoError(t, err)
	c.QuantityOnHand = onHand
	f.store.SeedComponent(c)
	return c
}

func (f *apiFixture) seedBOM(t *testing.T, lines ...inventory.BOMLine) *inventory.BillOfMaterial {
	t.Helper()
	bom, err := inventory.NewBillOfMaterial("Table", "", lines, apiNow)
	require.NoError(t, err)
	require.NoError(t, f.store.BOMs().Save(context.Background(), bom))
	return bom
}

func (f *apiFixture) createOrder(t *testing.T, bomID uuid.UUID, qty int64) mfgapp.CreateOrderResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/manufacturing/orders", mfgapp.CreateOrderRequest{
		ProductName: "Table",
		Quantity:    qty,
		BOMID:       bomID,
		Deadline:    apiNow.Add(72 * time.Hour),
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataAs[mfgapp.CreateOrderResponse](t, w)
}

// outMovements returns the ledger entries posted by consumption or manual issue,
// leaving out the opening IN rows that seeding records
func (f *apiFixture) outMovements() []inventory.StockMovement {
	var out []inventory.StockMovement
	for _, m := range f.store.AllMovements() {
		if m.Type == inventory.MovementTypeOut {
			out = append(out, m)
		}
	}
	return out
}

func dataAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	return envelope.Data
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	resp := decodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestComponentAPI_CreatePostsInitialStock(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/inventory/components", map[string]any{
		"name":             "legs",
		"initial_quantity": 10,
		"unit_cost":        "2.50",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataAs[inventoryapp.ComponentResponse](t, w)
	assert.Equal(t, int64(10), created.QuantityOnHand)

	movements := f.store.AllMovements()
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeIn, movements[0].Type)
	assert.Equal(t, inventory.ReferenceInitialStock, movements[0].Reference)

	w = f.do(t, http.MethodGet, "/api/v1/inventory/components/"+created.ID.String()+"/reconcile", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, dataAs[inventoryapp.ReconcileResponse](t, w).Consistent)
}

func TestComponentAPI_Rejections(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing name", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/inventory/components", map[string]any{"initial_quantity": 1}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorOf(t, w).Code)
	})

	t.Run("unknown component", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/inventory/components/"+uuid.NewString(), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeNotFound, errorOf(t, w).Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/inventory/components/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStockMovementAPI_Post(t *testing.T) {
	f := newAPIFixture(t)
	legs := f.seedComponent(t, "legs", 10)

	t.Run("OUT beyond on-hand is rejected with details", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/inventory/stock-movements", inventoryapp.PostMovementRequest{
			ComponentID: legs.ID,
			Type:        "OUT",
			Quantity:    25,
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		apiErr := errorOf(t, w)
		assert.Equal(t, shared.CodeInsufficientStock, apiErr.Code)
		assert.Equal(t, legs.ID.String(), apiErr.Details["component_id"])
		assert.EqualValues(t, 25, apiErr.Details["required"])
		assert.EqualValues(t, 10, apiErr.Details["available"])
	})

	t.Run("OUT within on-hand decrements", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/inventory/stock-movements", inventoryapp.PostMovementRequest{
			ComponentID: legs.ID,
			Type:        "OUT",
			Quantity:    4,
			Reference:   "scrap",
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		posted := dataAs[inventoryapp.PostMovementResponse](t, w)
		require.NotNil(t, posted.Movement)
		assert.Equal(t, int64(-4), posted.Movement.Delta)
		assert.Equal(t, int64(6), posted.Component.QuantityOnHand)
	})

	t.Run("unknown movement type", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/inventory/stock-movements", map[string]any{
			"component_id": legs.ID,
			"type":         "SIDEWAYS",
			"quantity":     1,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorOf(t, w).Code)
	})
}

func TestBOMAPI_Availability(t *testing.T) {
	f := newAPIFixture(t)
	legs := f.seedComponent(t, "legs", 10)
	top := f.seedComponent(t, "top", 5)

	w := f.do(t, http.MethodPost, "/api/v1/inventory/boms", inventoryapp.CreateBOMRequest{
		Name: "Table",
		Components: []inventoryapp.BOMLineRequest{
			{ComponentID: legs.ID, QuantityRequired: 4},
			{ComponentID: top.ID, QuantityRequired: 1},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bom := dataAs[inventoryapp.BOMResponse](t, w)
	path := "/api/v1/inventory/boms/" + bom.ID.String() + "/availability"

	w = f.do(t, http.MethodGet, path+"?quantity=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, dataAs[inventoryapp.AvailabilityResponse](t, w).CanProduce)

	w = f.do(t, http.MethodGet, path+"?quantity=3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	availability := dataAs[inventoryapp.AvailabilityResponse](t, w)
	assert.False(t, availability.CanProduce)
	require.Len(t, availability.Shortages, 1)
	assert.Equal(t, legs.ID, availability.Shortages[0].ComponentID)
	assert.Equal(t, int64(2), availability.Shortages[0].Shortage)

	for _, q := range []string{"", "0", "-1", "two"} {
		w = f.do(t, http.MethodGet, path+"?quantity="+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "quantity=%q", q)
		assert.Equal(t, dto.ErrCodeInvalidQuantity, errorOf(t, w).Code)
	}
}

func TestOrderAPI_CompleteWithIdempotencyKey(t *testing.T) {
	f := newAPIFixture(t)
	legs := f.seedComponent(t, "legs", 40)
	top := f.seedComponent(t, "top", 10)
	bom := f.seedBOM(t,
		inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4},
		inventory.BOMLine{ComponentID: top.ID, QuantityRequired: 1},
	)
	order := f.createOrder(t, bom.ID, 5)
	path := "/api/v1/manufacturing/orders/" + order.Order.ID + "/complete"
	key := map[string]string{IdempotencyKeyHeader: "complete-1"}

	w := f.do(t, http.MethodPost, path, nil, key)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "complete-1", w.Header().Get(IdempotencyKeyHeader))
	completion := dataAs[mfgapp.CompletionResponse](t, w)
	assert.Equal(t, "Done", completion.Order.Status)
	assert.Len(t, completion.ConsumedMovements, 2)

	stored, err := f.store.Components().FindByID(context.Background(), legs.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), stored.QuantityOnHand)

	w = f.do(t, http.MethodPost, path, nil, key)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateKey, errorOf(t, w).Code)

	w = f.do(t, http.MethodPost, path, nil, map[string]string{IdempotencyKeyHeader: "complete-2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeAlreadyDone, errorOf(t, w).Code)

	assert.Len(t, f.outMovements(), 2)
	assert.Len(t, f.store.AllMovements(), 4)
}

func TestOrderAPI_FailedCompletionReleasesKey(t *testing.T) {
	f := newAPIFixture(t)
	legs := f.seedComponent(t, "legs", 3)
	bom := f.seedBOM(t, inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4})
	order := f.createOrder(t, bom.ID, 1)
	path := "/api/v1/manufacturing/orders/" + order.Order.ID + "/complete"
	key := map[string]string{IdempotencyKeyHeader: "retry-me"}

	for i := 0; i < 2; i++ {
		w := f.do(t, http.MethodPost, path, nil, key)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, shared.CodeInsufficientStock, errorOf(t, w).Code)
	}

	w := f.do(t, http.MethodGet, "/api/v1/manufacturing/orders/"+order.Order.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Planned", dataAs[mfgapp.OrderDetailResponse](t, w).Status)
	assert.Empty(t, f.outMovements())
	assert.Len(t, f.store.AllMovements(), 1)
}

func TestOrderAPI_CreateRejectsUnknownBOM(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/manufacturing/orders", mfgapp.CreateOrderRequest{
		ProductName: "Table",
		Quantity:    1,
		BOMID:       uuid.New(),
		Deadline:    apiNow.Add(time.Hour),
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/manufacturing/orders", map[string]any{
		"product_name": "Table",
		"quantity":     1_000_001,
		"bom_id":       uuid.New(),
		"deadline":     apiNow.Add(time.Hour),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorOf(t, w).Code)

	w = f.do(t, http.MethodPost, "/api/v1/manufacturing/orders", map[string]any{
		"product_name": "Table",
		"quantity":     1,
		"bom_id":       uuid.New(),
		"deadline":     apiNow.Add(time.Hour),
		"priority":     "Urgent",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorOf(t, w).Code)
}

func TestWorkOrderAPI_Lifecycle(t *testing.T) {
	f := newAPIFixture(t)
	legs := f.seedComponent(t, "legs", 40)
	bom := f.seedBOM(t, inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4})
	order := f.createOrder(t, bom.ID, 2)
	require.Len(t, order.WorkOrders, 1)

	w := f.do(t, http.MethodGet, "/api/v1/manufacturing/orders/"+order.Order.ID+"/work-orders", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := dataAs[[]mfgapp.WorkOrderResponse](t, w)
	require.Len(t, listed, 1)
	woPath := "/api/v1/manufacturing/work-orders/" + listed[0].ID.String()

	w = f.do(t, http.MethodPost, woPath+"/complete", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeInvalidTransition, errorOf(t, w).Code)

	w = f.do(t, http.MethodPost, woPath+"/start", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	started := dataAs[mfgapp.WorkOrderActionResponse](t, w)
	assert.Equal(t, "Started", started.WorkOrder.Status)
	require.NotNil(t, started.Cascade)
	assert.Equal(t, "In Progress", string(started.Cascade.NewStatus))

	w = f.do(t, http.MethodPost, woPath+"/pause", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paused", dataAs[mfgapp.WorkOrderActionResponse](t, w).WorkOrder.Status)

	w = f.do(t, http.MethodPost, woPath+"/resume", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, woPath+"/complete", map[string]any{"quality_check": true, "notes": "ok"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := dataAs[mfgapp.WorkOrderActionResponse](t, w)
	assert.Equal(t, "Completed", completed.WorkOrder.Status)
	assert.True(t, completed.WorkOrder.QualityCheck)
	require.NotNil(t, completed.Cascade)
	assert.Equal(t, "Done", string(completed.Cascade.NewStatus))

	// completing through work orders does not consume stock
	assert.Empty(t, f.outMovements())
	assert.Len(t, f.store.AllMovements(), 1)
}
