package manufacturing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type manufacturingFixture struct {
	store     *testutil.MemoryStore
	clock     *shared.FixedClock
	publisher *testutil.RecordingPublisher
	svc       *ManufacturingService
	centers   *WorkCenterService
}

func newManufacturingFixture(t *testing.T) *manufacturingFixture {
	t.Helper()
	store := testutil.NewMemoryStore()
	clock := &shared.FixedClock{T: testNow}
	publisher := testutil.NewRecordingPublisher()
	scope := NewNoOpTransactionScope(Repositories{
		Components:          store.Components(),
		StockMovements:      store.StockMovements(),
		BOMs:                store.BOMs(),
		ManufacturingOrders: store.ManufacturingOrders(),
		WorkOrders:          store.WorkOrders(),
		WorkCenters:         store.WorkCenters(),
	})

	svc := NewManufacturingService(scope, store.ManufacturingOrders(), store.WorkOrders(), clock, DefaultConfig(), zap.NewNop())
	svc.SetEventPublisher(publisher)

	return &manufacturingFixture{
		store:     store,
		clock:     clock,
		publisher: publisher,
		svc:       svc,
		centers:   NewWorkCenterService(store.WorkCenters(), clock, zap.NewNop()),
	}
}

func (f *manufacturingFixture) seedComponent(t *testing.T, name string, onHand int64) *inventory.Component {
	t.Helper()
	c, err := inventory.NewComponent(name, decimal.NewFromInt(3), "", 0, testNow)
	require.NoError(t, err)
	c.QuantityOnHand = onHand
	f.store.SeedComponent(c)
	return c
}

// seedTableBOM seeds a BOM of 4 legs and 1 top per table
func (f *manufacturingFixture) seedTableBOM(t *testing.T, legs, tops int64) (*inventory.BillOfMaterial, *inventory.Component, *inventory.Component) {
	t.Helper()
	leg := f.seedComponent(t, "legs", legs)
	top := f.seedComponent(t, "top", tops)
	bom, err := inventory.NewBillOfMaterial("Table", "", []inventory.BOMLine{
		{ComponentID: leg.ID, QuantityRequired: 4},
		{ComponentID: top.ID, QuantityRequired: 1},
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, f.store.BOMs().Save(context.Background(), bom))
	return bom, leg, top
}

func (f *manufacturingFixture) createOrder(t *testing.T, bomID uuid.UUID, qty int64) *CreateOrderResponse {
	t.Helper()
	resp, err := f.svc.CreateManufacturingOrder(context.Background(), CreateOrderRequest{
		ProductName: "Table",
		Quantity:    qty,
		BOMID:       bomID,
		Deadline:    testNow.Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return resp
}

func (f *manufacturingFixture) addWorkOrder(t *testing.T, orderID, name string) uuid.UUID {
	t.Helper()
	wo, err := f.svc.CreateWorkOrder(context.Background(), orderID, CreateWorkOrderRequest{Name: name})
	require.NoError(t, err)
	return wo.ID
}

func (f *manufacturingFixture) onHand(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	c, err := f.store.Components().FindByID(context.Background(), id)
	require.NoError(t, err)
	return c.QuantityOnHand
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("plans order with generated id and assembly work order", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 40, 10)

		resp := f.createOrder(t, bom.ID, 2)

		assert.Equal(t, "MO-001", resp.Order.ID)
		assert.Equal(t, "Planned", resp.Order.Status)
		assert.Equal(t, "Medium", resp.Order.Priority)
		require.Len(t, resp.WorkOrders, 1)
		assert.Equal(t, "Assembly - Table", resp.WorkOrders[0].Name)
		assert.Equal(t, 1, resp.WorkOrders[0].Sequence)
		assert.Equal(t, "Pending", resp.WorkOrders[0].Status)
		assert.Equal(t, manufacturing.DefaultWorkOrderDurationMinutes, resp.WorkOrders[0].DurationMinutes)
		assert.Empty(t, resp.Warnings)
		assert.Len(t, f.publisher.EventsOfType(manufacturing.EventTypeManufacturingOrderCreated), 1)

		second := f.createOrder(t, bom.ID, 1)
		assert.Equal(t, "MO-002", second.Order.ID)
	})

	t.Run("reports shortages as warnings without blocking", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, leg, top := f.seedTableBOM(t, 10, 1)

		resp := f.createOrder(t, bom.ID, 3)

		require.Len(t, resp.Warnings, 2)
		assert.Equal(t, leg.ID, resp.Warnings[0].ComponentID)
		assert.Equal(t, int64(12), resp.Warnings[0].Required)
		assert.Equal(t, int64(2), resp.Warnings[0].Shortage)
		assert.Equal(t, top.ID, resp.Warnings[1].ComponentID)
		assert.Equal(t, int64(10), f.onHand(t, leg.ID))
	})

	t.Run("continues numbering after the highest existing order", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 40, 10)
		existing, err := manufacturing.NewManufacturingOrder("MO-007", "Chair", 1, bom.ID, testNow.Add(time.Hour), "", "", testNow)
		require.NoError(t, err)
		require.NoError(t, f.store.ManufacturingOrders().Create(ctx, existing))

		resp := f.createOrder(t, bom.ID, 1)

		assert.Equal(t, "MO-008", resp.Order.ID)
	})

	t.Run("assigns work center and operator", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 40, 10)
		wc, err := f.centers.Create(ctx, CreateWorkCenterRequest{Name: "Assembly Line", CostPerHour: decimal.NewFromInt(30)})
		require.NoError(t, err)
		operator := uuid.New()

		resp, err := f.svc.CreateManufacturingOrder(ctx, CreateOrderRequest{
			ProductName:     "Table",
			Quantity:        1,
			BOMID:           bom.ID,
			Deadline:        testNow.Add(24 * time.Hour),
			Priority:        "High",
			DurationMinutes: 90,
			WorkCenterID:    &wc.ID,
			AssignedUserID:  &operator,
		})
		require.NoError(t, err)

		wo := resp.WorkOrders[0]
		assert.Equal(t, &wc.ID, wo.WorkCenterID)
		assert.Equal(t, &operator, wo.AssignedUserID)
		assert.Equal(t, 90, wo.DurationMinutes)
		assert.Equal(t, "High", resp.Order.Priority)
	})

	t.Run("unknown BOM", func(t *testing.T) {
		f := newManufacturingFixture(t)

		_, err := f.svc.CreateManufacturingOrder(ctx, CreateOrderRequest{
			ProductName: "Table",
			Quantity:    1,
			BOMID:       uuid.New(),
			Deadline:    testNow.Add(time.Hour),
		})
		requireCode(t, err, shared.CodeNotFound)
	})

	t.Run("invalid priority", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 40, 10)

		_, err := f.svc.CreateManufacturingOrder(ctx, CreateOrderRequest{
			ProductName: "Table",
			Quantity:    1,
			BOMID:       bom.ID,
			Deadline:    testNow.Add(time.Hour),
			Priority:    "urgent",
		})
		requireCode(t, err, "INVALID_PRIORITY")
	})
}

func TestCompleteManufacturingOrder_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, leg, top := f.seedTableBOM(t, 10, 1)
	order := f.createOrder(t, bom.ID, 3)
	before := len(f.store.AllMovements())

	_, err := f.svc.CompleteManufacturingOrder(ctx, order.Order.ID)

	var shortage *shared.InsufficientStockError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, leg.ID.String(), shortage.ComponentID)
	assert.Equal(t, "legs", shortage.ComponentName)
	assert.Equal(t, int64(12), shortage.Required)
	assert.Equal(t, int64(10), shortage.Available)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	assert.Len(t, f.store.AllMovements(), before)
	assert.Equal(t, int64(10), f.onHand(t, leg.ID))
	assert.Equal(t, int64(1), f.onHand(t, top.ID))
	detail, err := f.svc.GetManufacturingOrder(ctx, order.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Planned", detail.Status)
	assert.Equal(t, "Pending", detail.WorkOrders[0].Status)
}

func TestCompleteManufacturingOrder_ConsumesStock(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, leg, top := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 2)
	f.addWorkOrder(t, order.Order.ID, "Finishing")
	f.publisher.Reset()
	f.clock.Advance(2 * time.Hour)

	resp, err := f.svc.CompleteManufacturingOrder(ctx, order.Order.ID)
	require.NoError(t, err)

	assert.Equal(t, "Done", resp.Order.Status)
	require.NotNil(t, resp.Order.CompletedAt)
	assert.Equal(t, testNow.Add(2*time.Hour), *resp.Order.CompletedAt)

	require.Len(t, resp.ConsumedMovements, 2)
	assert.Equal(t, leg.ID, resp.ConsumedMovements[0].ComponentID)
	assert.Equal(t, int64(8), resp.ConsumedMovements[0].Quantity)
	assert.Equal(t, "OUT", resp.ConsumedMovements[0].Type)
	assert.Equal(t, "Consumed for MO-001 - Table", resp.ConsumedMovements[0].Reference)
	assert.Equal(t, top.ID, resp.ConsumedMovements[1].ComponentID)
	assert.Equal(t, int64(2), resp.ConsumedMovements[1].Quantity)
	assert.Equal(t, int64(2), f.onHand(t, leg.ID))
	assert.Equal(t, int64(1), f.onHand(t, top.ID))

	assert.Len(t, resp.WorkOrdersUpdated, 2)
	workOrders, err := f.svc.ListWorkOrders(ctx, order.Order.ID)
	require.NoError(t, err)
	for _, wo := range workOrders {
		assert.Equal(t, "Completed", wo.Status)
	}

	assert.Len(t, f.publisher.EventsOfType(inventory.EventTypeStockMovementPosted), 2)
	assert.Len(t, f.publisher.EventsOfType(manufacturing.EventTypeWorkOrderStatusChanged), 2)
	completed := f.publisher.EventsOfType(manufacturing.EventTypeManufacturingOrderCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, 2, completed[0].(*manufacturing.ManufacturingOrderCompletedEvent).ComponentsConsumed)

	t.Run("second completion is rejected without consuming again", func(t *testing.T) {
		movements := len(f.store.AllMovements())

		_, err := f.svc.CompleteManufacturingOrder(ctx, order.Order.ID)

		requireCode(t, err, shared.CodeAlreadyDone)
		assert.Len(t, f.store.AllMovements(), movements)
		assert.Equal(t, int64(2), f.onHand(t, leg.ID))
	})
}

func TestCompleteManufacturingOrder_Canceled(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)
	_, err := f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "Canceled")
	require.NoError(t, err)

	_, err = f.svc.CompleteManufacturingOrder(ctx, order.Order.ID)

	requireCode(t, err, shared.CodeInvalidTransition)
}

func TestCompleteManufacturingOrder_NotFound(t *testing.T) {
	f := newManufacturingFixture(t)

	_, err := f.svc.CompleteManufacturingOrder(context.Background(), "MO-404")

	requireCode(t, err, shared.CodeNotFound)
}

func TestWorkOrderCompletion_CascadesToOrder(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, leg, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)
	first := order.WorkOrders[0].ID
	second := f.addWorkOrder(t, order.Order.ID, "Sanding")
	third := f.addWorkOrder(t, order.Order.ID, "Painting")

	started, err := f.svc.StartWorkOrder(ctx, first, nil)
	require.NoError(t, err)
	assert.True(t, started.Cascade.ManufacturingOrderUpdated)
	assert.Equal(t, manufacturing.OrderStatusInProgress, started.Cascade.NewStatus)

	for _, id := range []uuid.UUID{first, second} {
		if id != first {
			_, err = f.svc.StartWorkOrder(ctx, id, nil)
			require.NoError(t, err)
		}
		resp, err := f.svc.CompleteWorkOrder(ctx, id, CompleteWorkOrderRequest{})
		require.NoError(t, err)
		assert.False(t, resp.Cascade.ManufacturingOrderUpdated)
	}

	_, err = f.svc.StartWorkOrder(ctx, third, nil)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)
	resp, err := f.svc.CompleteWorkOrder(ctx, third, CompleteWorkOrderRequest{})
	require.NoError(t, err)

	assert.True(t, resp.Cascade.ManufacturingOrderUpdated)
	assert.Equal(t, manufacturing.OrderStatusDone, resp.Cascade.NewStatus)
	assert.Equal(t, 3, resp.Cascade.CompletedWorkOrders)
	assert.Equal(t, 3, resp.Cascade.TotalWorkOrders)

	detail, err := f.svc.GetManufacturingOrder(ctx, order.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Done", detail.Status)
	require.NotNil(t, detail.CompletedAt)
	assert.Equal(t, testNow.Add(30*time.Minute), *detail.CompletedAt)
	assert.Equal(t, int64(10), f.onHand(t, leg.ID), "work order completion never consumes stock")

	_, err = f.svc.CompleteManufacturingOrder(ctx, order.Order.ID)
	requireCode(t, err, shared.CodeAlreadyDone)
}

func TestCancelOrder_ResetsOpenWorkOrders(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)
	open := order.WorkOrders[0].ID
	done := f.addWorkOrder(t, order.Order.ID, "Inspection")

	_, err := f.svc.StartWorkOrder(ctx, open, nil)
	require.NoError(t, err)
	_, err = f.svc.StartWorkOrder(ctx, done, nil)
	require.NoError(t, err)
	_, err = f.svc.CompleteWorkOrder(ctx, done, CompleteWorkOrderRequest{})
	require.NoError(t, err)
	movements := len(f.store.AllMovements())

	resp, err := f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "Canceled")
	require.NoError(t, err)

	assert.Equal(t, "Canceled", resp.Order.Status)
	require.NotNil(t, resp.Cascade)
	require.Len(t, resp.Cascade.WorkOrdersUpdated, 1)
	assert.Equal(t, open, resp.Cascade.WorkOrdersUpdated[0].ID)
	assert.Equal(t, manufacturing.WorkOrderStatusPending, resp.Cascade.WorkOrdersUpdated[0].NewStatus)

	openWO, err := f.svc.GetWorkOrder(ctx, open)
	require.NoError(t, err)
	assert.Equal(t, "Pending", openWO.Status)
	doneWO, err := f.svc.GetWorkOrder(ctx, done)
	require.NoError(t, err)
	assert.Equal(t, "Completed", doneWO.Status)
	assert.Len(t, f.store.AllMovements(), movements)

	t.Run("work orders of a canceled order keep their status", func(t *testing.T) {
		_, err := f.svc.StartWorkOrder(ctx, open, nil)
		requireCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("reopening allows work again", func(t *testing.T) {
		_, err := f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "Planned")
		require.NoError(t, err)

		_, err = f.svc.StartWorkOrder(ctx, open, nil)
		require.NoError(t, err)
	})
}

func TestUpdateManufacturingOrder_StatusCascades(t *testing.T) {
	ctx := context.Background()

	t.Run("In Progress starts pending work orders", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 10, 3)
		order := f.createOrder(t, bom.ID, 1)
		f.addWorkOrder(t, order.Order.ID, "Sanding")

		resp, err := f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "In Progress")
		require.NoError(t, err)

		assert.Equal(t, "In Progress", resp.Order.Status)
		assert.NotNil(t, resp.Order.StartedAt)
		assert.Len(t, resp.Cascade.WorkOrdersUpdated, 2)
	})

	t.Run("Done force-completes work orders without consuming stock", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, leg, _ := f.seedTableBOM(t, 10, 3)
		order := f.createOrder(t, bom.ID, 2)

		resp, err := f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "Done")
		require.NoError(t, err)

		assert.Equal(t, "Done", resp.Order.Status)
		assert.Len(t, resp.Cascade.WorkOrdersUpdated, 1)
		assert.Equal(t, int64(10), f.onHand(t, leg.ID))

		_, err = f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "Planned")
		requireCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("unknown status value", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 10, 3)
		order := f.createOrder(t, bom.ID, 1)

		_, err := f.svc.UpdateManufacturingOrderStatus(ctx, order.Order.ID, "done")
		requireCode(t, err, shared.CodeInvalidStatusValue)
	})

	t.Run("details and status together", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 10, 3)
		order := f.createOrder(t, bom.ID, 1)
		qty := int64(4)
		notes := "rush"
		status := "In Progress"

		resp, err := f.svc.UpdateManufacturingOrder(ctx, order.Order.ID, UpdateOrderRequest{
			Quantity: &qty,
			Notes:    &notes,
			Status:   &status,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(4), resp.Order.Quantity)
		assert.Equal(t, "rush", resp.Order.Notes)
		assert.Equal(t, "In Progress", resp.Order.Status)
	})

	t.Run("moving to an unknown BOM", func(t *testing.T) {
		f := newManufacturingFixture(t)
		bom, _, _ := f.seedTableBOM(t, 10, 3)
		order := f.createOrder(t, bom.ID, 1)
		other := uuid.New()

		_, err := f.svc.UpdateManufacturingOrder(ctx, order.Order.ID, UpdateOrderRequest{BOMID: &other})
		requireCode(t, err, shared.CodeNotFound)
	})
}

func TestWorkOrderTransitions(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)
	id := order.WorkOrders[0].ID

	t.Run("pending cannot complete directly", func(t *testing.T) {
		_, err := f.svc.CompleteWorkOrder(ctx, id, CompleteWorkOrderRequest{})
		requireCode(t, err, shared.CodeInvalidTransition)

		_, err = f.svc.UpdateWorkOrderStatus(ctx, id, "Completed")
		requireCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("pending cannot pause", func(t *testing.T) {
		_, err := f.svc.PauseWorkOrder(ctx, id)
		requireCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("start assigns the acting user", func(t *testing.T) {
		actor := uuid.New()
		resp, err := f.svc.StartWorkOrder(ctx, id, &actor)
		require.NoError(t, err)
		assert.Equal(t, "Started", resp.WorkOrder.Status)
		assert.Equal(t, &actor, resp.WorkOrder.AssignedUserID)
	})

	t.Run("pause and resume", func(t *testing.T) {
		resp, err := f.svc.PauseWorkOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Paused", resp.WorkOrder.Status)

		_, err = f.svc.PauseWorkOrder(ctx, id)
		requireCode(t, err, shared.CodeInvalidTransition)

		resp, err = f.svc.ResumeWorkOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Started", resp.WorkOrder.Status)
	})

	t.Run("setting the current status is a no-op", func(t *testing.T) {
		f.publisher.Reset()
		resp, err := f.svc.UpdateWorkOrderStatus(ctx, id, "Started")
		require.NoError(t, err)
		assert.Equal(t, "Started", resp.WorkOrder.Status)
		assert.Empty(t, f.publisher.EventsOfType(manufacturing.EventTypeWorkOrderStatusChanged))
	})

	t.Run("unknown status value", func(t *testing.T) {
		_, err := f.svc.UpdateWorkOrderStatus(ctx, id, "started")
		requireCode(t, err, shared.CodeInvalidStatusValue)
	})

	t.Run("unknown work order", func(t *testing.T) {
		_, err := f.svc.StartWorkOrder(ctx, uuid.New(), nil)
		requireCode(t, err, shared.CodeNotFound)
	})
}

func TestCompleteWorkOrder_DerivesCost(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	wc, err := f.centers.Create(ctx, CreateWorkCenterRequest{Name: "Assembly Line", CostPerHour: decimal.NewFromInt(30)})
	require.NoError(t, err)
	order := f.createOrder(t, bom.ID, 1)
	id := order.WorkOrders[0].ID

	_, err = f.svc.UpdateWorkOrder(ctx, id, UpdateWorkOrderRequest{WorkCenterID: &wc.ID})
	require.NoError(t, err)
	_, err = f.svc.StartWorkOrder(ctx, id, nil)
	require.NoError(t, err)
	f.clock.Advance(90 * time.Minute)

	quality := true
	notes := "no defects"
	resp, err := f.svc.CompleteWorkOrder(ctx, id, CompleteWorkOrderRequest{QualityCheck: &quality, Notes: &notes})
	require.NoError(t, err)

	require.NotNil(t, resp.WorkOrder.ActualDurationMinutes)
	assert.Equal(t, 90, *resp.WorkOrder.ActualDurationMinutes)
	require.NotNil(t, resp.WorkOrder.ActualCost)
	assert.True(t, decimal.NewFromInt(45).Equal(*resp.WorkOrder.ActualCost))
	assert.True(t, resp.WorkOrder.QualityCheck)
	assert.Equal(t, "no defects", resp.WorkOrder.Notes)

	events := f.publisher.EventsOfType(manufacturing.EventTypeWorkOrderStatusChanged)
	last := events[len(events)-1].(*manufacturing.WorkOrderStatusChangedEvent)
	assert.Equal(t, "45.00", last.ActualCost)
}

func TestUpdateWorkOrder(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)
	id := order.WorkOrders[0].ID

	t.Run("edits details", func(t *testing.T) {
		name := "Final assembly"
		minutes := 45
		resp, err := f.svc.UpdateWorkOrder(ctx, id, UpdateWorkOrderRequest{Name: &name, DurationMinutes: &minutes})
		require.NoError(t, err)
		assert.Equal(t, "Final assembly", resp.WorkOrder.Name)
		assert.Equal(t, 45, resp.WorkOrder.DurationMinutes)
		assert.False(t, resp.Cascade.ManufacturingOrderUpdated)
	})

	t.Run("status edit cascades to the order", func(t *testing.T) {
		status := "Started"
		resp, err := f.svc.UpdateWorkOrder(ctx, id, UpdateWorkOrderRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, "Started", resp.WorkOrder.Status)
		assert.True(t, resp.Cascade.ManufacturingOrderUpdated)
		assert.Equal(t, manufacturing.OrderStatusInProgress, resp.Cascade.NewStatus)
	})

	t.Run("inactive work center is rejected", func(t *testing.T) {
		wc, err := f.centers.Create(ctx, CreateWorkCenterRequest{Name: "Old Press"})
		require.NoError(t, err)
		_, err = f.centers.Deactivate(ctx, wc.ID)
		require.NoError(t, err)

		_, err = f.svc.UpdateWorkOrder(ctx, id, UpdateWorkOrderRequest{WorkCenterID: &wc.ID})
		requireCode(t, err, "WORK_CENTER_INACTIVE")
	})

	t.Run("invalid duration", func(t *testing.T) {
		minutes := 0
		_, err := f.svc.UpdateWorkOrder(ctx, id, UpdateWorkOrderRequest{DurationMinutes: &minutes})
		requireCode(t, err, "INVALID_DURATION")
	})
}

func TestCreateWorkOrder(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)

	wo, err := f.svc.CreateWorkOrder(ctx, order.Order.ID, CreateWorkOrderRequest{Name: "Sanding", DurationMinutes: 20, Notes: "grit 120"})
	require.NoError(t, err)
	assert.Equal(t, 2, wo.Sequence)
	assert.Equal(t, 20, wo.DurationMinutes)
	assert.Equal(t, "grit 120", wo.Notes)
	assert.Equal(t, "Pending", wo.Status)

	_, err = f.svc.CreateWorkOrder(ctx, "MO-404", CreateWorkOrderRequest{Name: "Sanding"})
	requireCode(t, err, shared.CodeNotFound)

	_, err = f.svc.CompleteManufacturingOrder(ctx, order.Order.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateWorkOrder(ctx, order.Order.ID, CreateWorkOrderRequest{Name: "Rework"})
	requireCode(t, err, shared.CodeInvalidTransition)
}

func TestDeleteManufacturingOrder(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 10, 3)
	order := f.createOrder(t, bom.ID, 1)
	woID := order.WorkOrders[0].ID

	require.NoError(t, f.svc.DeleteManufacturingOrder(ctx, order.Order.ID))

	_, err := f.svc.GetManufacturingOrder(ctx, order.Order.ID)
	requireCode(t, err, shared.CodeNotFound)
	_, err = f.svc.GetWorkOrder(ctx, woID)
	requireCode(t, err, shared.CodeNotFound)

	err = f.svc.DeleteManufacturingOrder(ctx, order.Order.ID)
	requireCode(t, err, shared.CodeNotFound)
}

func TestListManufacturingOrders(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)
	bom, _, _ := f.seedTableBOM(t, 40, 10)
	first := f.createOrder(t, bom.ID, 1)
	f.clock.Advance(time.Minute)
	f.createOrder(t, bom.ID, 1)
	_, err := f.svc.UpdateManufacturingOrderStatus(ctx, first.Order.ID, "Canceled")
	require.NoError(t, err)

	all, total, err := f.svc.ListManufacturingOrders(ctx, OrderListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "MO-002", all[0].ID)

	canceled, total, err := f.svc.ListManufacturingOrders(ctx, OrderListFilter{Status: "Canceled"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "MO-001", canceled[0].ID)

	_, _, err = f.svc.ListManufacturingOrders(ctx, OrderListFilter{Status: "cancelled"})
	requireCode(t, err, shared.CodeInvalidStatusValue)
}

func TestWorkCenterService(t *testing.T) {
	ctx := context.Background()
	f := newManufacturingFixture(t)

	press, err := f.centers.Create(ctx, CreateWorkCenterRequest{Name: "Press", CostPerHour: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.Equal(t, 1, press.Capacity)
	assert.True(t, decimal.NewFromInt(1).Equal(press.Efficiency))
	_, err = f.centers.Create(ctx, CreateWorkCenterRequest{Name: "Lathe"})
	require.NoError(t, err)

	_, err = f.centers.Deactivate(ctx, press.ID)
	require.NoError(t, err)

	active, total, err := f.centers.List(ctx, WorkCenterListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Lathe", active[0].Name)

	_, total, err = f.centers.List(ctx, WorkCenterListFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	reactivated, err := f.centers.Activate(ctx, press.ID)
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive)

	capacity := 0
	_, err = f.centers.Update(ctx, press.ID, UpdateWorkCenterRequest{Capacity: &capacity})
	requireCode(t, err, "INVALID_CAPACITY")

	_, err = f.centers.GetByID(ctx, uuid.New())
	requireCode(t, err, shared.CodeNotFound)
}
