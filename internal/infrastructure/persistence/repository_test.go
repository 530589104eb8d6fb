package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	appinv "github.com/erp/manufacturing/internal/application/inventory"
	appmfg "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

var repoNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// newSQLiteDatabase opens a private in-memory database with foreign keys enforced
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := Open(sqlite.Open(dsn), Options{})
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(context.Background()))

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedComponent stores a component and receives onHand through the ledger so
// the on-hand quantity always equals the movement sum
func seedComponent(t *testing.T, db *Database, name string, onHand int64) *inventory.Component {
	t.Helper()
	ctx := context.Background()
	components := NewGormComponentRepository(db.DB)

	c, err := inventory.NewComponent(name, decimal.NewFromInt(2), "", 0, repoNow)
	require.NoError(t, err)
	require.NoError(t, components.Save(ctx, c))
	if onHand > 0 {
		movement, err := c.Receive(onHand, inventory.ReferenceInitialStock, repoNow)
		require.NoError(t, err)
		require.NoError(t, components.Save(ctx, c))
		require.NoError(t, NewGormStockMovementRepository(db.DB).Create(ctx, movement))
	}
	c.ClearDomainEvents()
	return c
}

func seedBOM(t *testing.T, db *Database, lines ...inventory.BOMLine) *inventory.BillOfMaterial {
	t.Helper()
	bom, err := inventory.NewBillOfMaterial("Table", "four legs and a top", lines, repoNow)
	require.NoError(t, err)
	require.NoError(t, NewGormBOMRepository(db.DB).Save(context.Background(), bom))
	return bom
}

func seedOrder(t *testing.T, db *Database, id string, bomID uuid.UUID) *manufacturing.ManufacturingOrder {
	t.Helper()
	order, err := manufacturing.NewManufacturingOrder(id, "Table", 2, bomID, repoNow.Add(48*time.Hour), manufacturing.PriorityMedium, "", repoNow)
	require.NoError(t, err)
	require.NoError(t, NewGormManufacturingOrderRepository(db.DB).Create(context.Background(), order))
	return order
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestGormComponentRepository_OptimisticLock(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormComponentRepository(db.DB)
	c := seedComponent(t, db, "legs", 10)

	first, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)

	_, err = first.Receive(5, "PO-1", repoNow)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	_, err = second.Issue(3, "scrap", repoNow)
	require.NoError(t, err)
	requireDomainCode(t, repo.Save(ctx, second), shared.CodeOptimisticLockFailed)

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), stored.QuantityOnHand)
	assert.Equal(t, first.Version, stored.Version)
}

func TestGormComponentRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormComponentRepository(db.DB)

	low, err := inventory.NewComponent("Oak_Top", decimal.NewFromInt(40), "Timber Co", 5, repoNow)
	require.NoError(t, err)
	low.QuantityOnHand = 2
	require.NoError(t, repo.Save(ctx, low))
	seedComponent(t, db, "Oak legs", 100)
	seedComponent(t, db, "Screws", 500)

	t.Run("search escapes LIKE wildcards", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, inventory.ComponentFilter{Filter: shared.Filter{Search: "oak_"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, "Oak_Top", found[0].Name)
	})

	t.Run("low stock only", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, inventory.ComponentFilter{LowStockOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, low.ID, found[0].ID)
	})

	t.Run("sorted by name by default", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, inventory.ComponentFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []string{"Oak legs", "Oak_Top", "Screws"}, []string{found[0].Name, found[1].Name, found[2].Name})
	})
}

func TestGormComponentRepository_DeleteReferencedByLedger(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormComponentRepository(db.DB)
	c := seedComponent(t, db, "legs", 0)

	movement, err := c.Receive(4, "PO-9", repoNow)
	require.NoError(t, err)
	require.NoError(t, NewGormStockMovementRepository(db.DB).Create(ctx, movement))

	err = repo.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrReferenceViolation)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormStockMovementRepository_LedgerSum(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	movements := NewGormStockMovementRepository(db.DB)
	c := seedComponent(t, db, "legs", 0)

	in, err := c.Receive(10, "PO-1", repoNow)
	require.NoError(t, err)
	out, err := c.Issue(4, "MO-0001", repoNow.Add(time.Minute))
	require.NoError(t, err)
	adj, err := c.AdjustTo(5, "count", repoNow.Add(2*time.Minute))
	require.NoError(t, err)
	require.NoError(t, movements.CreateBatch(ctx, []*inventory.StockMovement{in, out, adj}))

	sum, err := movements.SumDeltaByComponent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.QuantityOnHand, sum)
	assert.Equal(t, int64(5), sum)

	listed, total, err := movements.FindAll(ctx, inventory.MovementFilter{ComponentID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, inventory.MovementTypeAdjustment, listed[0].Type)

	outType := inventory.MovementTypeOut
	listed, total, err = movements.FindAll(ctx, inventory.MovementFilter{Type: &outType})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(-4), listed[0].Delta)
}

func TestGormBOMRepository_PreservesLineOrder(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormBOMRepository(db.DB)
	top := seedComponent(t, db, "top", 0)
	legs := seedComponent(t, db, "legs", 0)
	screws := seedComponent(t, db, "screws", 0)

	bom := seedBOM(t, db,
		inventory.BOMLine{ComponentID: top.ID, QuantityRequired: 1},
		inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4},
	)

	stored, err := repo.FindByID(ctx, bom.ID)
	require.NoError(t, err)
	require.Len(t, stored.Components, 2)
	assert.Equal(t, top.ID, stored.Components[0].ComponentID)
	assert.Equal(t, legs.ID, stored.Components[1].ComponentID)

	require.NoError(t, stored.ReplaceComponents([]inventory.BOMLine{
		{ComponentID: screws.ID, QuantityRequired: 16},
		{ComponentID: top.ID, QuantityRequired: 1},
	}, repoNow))
	require.NoError(t, repo.Save(ctx, stored))

	reloaded, err := repo.FindByID(ctx, bom.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Components, 2)
	assert.Equal(t, screws.ID, reloaded.Components[0].ComponentID)
	assert.Equal(t, int64(16), reloaded.Components[0].QuantityRequired)

	used, err := repo.ExistsByComponent(ctx, legs.ID)
	require.NoError(t, err)
	assert.False(t, used)
	used, err = repo.ExistsByComponent(ctx, screws.ID)
	require.NoError(t, err)
	assert.True(t, used)
}

func TestGormManufacturingOrderRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormManufacturingOrderRepository(db.DB)
	legs := seedComponent(t, db, "legs", 0)
	bom := seedBOM(t, db, inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4})

	seedOrder(t, db, "MO-0001", bom.ID)
	seedOrder(t, db, "MO-0012", bom.ID)
	seedOrder(t, db, "MOX-0099", bom.ID)

	t.Run("max sequence ignores other prefixes", func(t *testing.T) {
		highest, err := repo.MaxOrderSequence(ctx, "MO")
		require.NoError(t, err)
		assert.Equal(t, 12, highest)
	})

	t.Run("taken order number is a concurrency conflict", func(t *testing.T) {
		dup, err := manufacturing.NewManufacturingOrder("MO-0001", "Chair", 1, bom.ID, repoNow.Add(time.Hour), manufacturing.PriorityLow, "", repoNow)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrConcurrencyConflict)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		first, err := repo.FindByID(ctx, "MO-0012")
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, "MO-0012")
		require.NoError(t, err)

		_, err = first.ChangeStatus(manufacturing.OrderStatusInProgress, nil, repoNow)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		_, err = second.ChangeStatus(manufacturing.OrderStatusCanceled, nil, repoNow)
		require.NoError(t, err)
		requireDomainCode(t, repo.Save(ctx, second), shared.CodeOptimisticLockFailed)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "MO-9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "MO-9999"), shared.ErrNotFound)
	})

	t.Run("count by BOM", func(t *testing.T) {
		count, err := repo.CountByBOM(ctx, bom.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormWorkOrderRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormWorkOrderRepository(db.DB)
	legs := seedComponent(t, db, "legs", 0)
	bom := seedBOM(t, db, inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4})
	seedOrder(t, db, "MO-0001", bom.ID)

	cut, err := manufacturing.NewWorkOrder("MO-0001", "Cut", 1, 30, repoNow)
	require.NoError(t, err)
	sand, err := manufacturing.NewWorkOrder("MO-0001", "Sand", 2, 0, repoNow)
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(ctx, []*manufacturing.WorkOrder{sand, cut}))

	require.NoError(t, cut.Start(nil, repoNow))
	require.NoError(t, repo.Save(ctx, cut))

	listed, err := repo.FindByOrder(ctx, "MO-0001")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Cut", listed[0].Name)
	assert.Equal(t, manufacturing.WorkOrderStatusStarted, listed[0].Status)
	assert.Equal(t, manufacturing.DefaultWorkOrderDurationMinutes, listed[1].DurationMinutes)

	highest, err := repo.MaxSequence(ctx, "MO-0001")
	require.NoError(t, err)
	assert.Equal(t, 2, highest)
	highest, err = repo.MaxSequence(ctx, "MO-0404")
	require.NoError(t, err)
	assert.Equal(t, 0, highest)

	require.NoError(t, NewGormManufacturingOrderRepository(db.DB).Delete(ctx, "MO-0001"))
	_, err = repo.FindByID(ctx, cut.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormWorkCenterRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormWorkCenterRepository(db.DB)

	active, err := manufacturing.NewWorkCenter("Assembly", "", decimal.NewFromInt(30), 2, decimal.NewFromInt(100), repoNow)
	require.NoError(t, err)
	idle, err := manufacturing.NewWorkCenter("Paint", "", decimal.NewFromInt(45), 1, decimal.NewFromInt(100), repoNow)
	require.NoError(t, err)
	idle.Deactivate(repoNow)
	require.NoError(t, repo.Save(ctx, active))
	require.NoError(t, repo.Save(ctx, idle))

	found, total, err := repo.FindAll(ctx, manufacturing.WorkCenterFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Assembly", found[0].Name)

	_, total, err = repo.FindAll(ctx, manufacturing.WorkCenterFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	stored, err := repo.FindByID(ctx, idle.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.True(t, stored.CostPerHour.Equal(decimal.NewFromInt(45)))
}

// completionFixture wires the real services over one sqlite database
type completionFixture struct {
	db     *Database
	orders *appmfg.ManufacturingService
	ledger *appinv.StockLedgerService
}

func newCompletionFixture(t *testing.T) *completionFixture {
	t.Helper()
	db := newSQLiteDatabase(t)
	clock := &shared.FixedClock{T: repoNow}
	orders := appmfg.NewManufacturingService(
		NewGormManufacturingTransactionScope(db.DB),
		NewGormManufacturingOrderRepository(db.DB),
		NewGormWorkOrderRepository(db.DB),
		clock,
		appmfg.DefaultConfig(),
		zap.NewNop(),
	)
	ledger := appinv.NewStockLedgerService(
		NewGormTransactionScope(db.DB),
		NewGormComponentRepository(db.DB),
		NewGormStockMovementRepository(db.DB),
		clock,
		zap.NewNop(),
	)
	return &completionFixture{db: db, orders: orders, ledger: ledger}
}

func TestCompleteManufacturingOrder_AllOrNothing(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes every component and completes work orders", func(t *testing.T) {
		f := newCompletionFixture(t)
		legs := seedComponent(t, f.db, "legs", 10)
		top := seedComponent(t, f.db, "top", 3)
		bom := seedBOM(t, f.db,
			inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4},
			inventory.BOMLine{ComponentID: top.ID, QuantityRequired: 1},
		)
		created, err := f.orders.CreateManufacturingOrder(ctx, appmfg.CreateOrderRequest{
			ProductName: "Table", Quantity: 2, BOMID: bom.ID, Deadline: repoNow.Add(72 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, "MO-001", created.Order.ID)

		result, err := f.orders.CompleteManufacturingOrder(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, manufacturing.OrderStatusDone.String(), result.Order.Status)
		assert.Len(t, result.ConsumedMovements, 2)
		assert.Len(t, result.WorkOrdersUpdated, 1)

		components := NewGormComponentRepository(f.db.DB)
		stored, err := components.FindByID(ctx, legs.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.QuantityOnHand)
		stored, err = components.FindByID(ctx, top.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.QuantityOnHand)

		reconciled, err := f.ledger.Reconcile(ctx, legs.ID)
		require.NoError(t, err)
		assert.True(t, reconciled.Consistent)

		_, err = f.orders.CompleteManufacturingOrder(ctx, created.Order.ID)
		requireDomainCode(t, err, shared.CodeAlreadyDone)
	})

	t.Run("shortage rolls back every consumption", func(t *testing.T) {
		f := newCompletionFixture(t)
		legs := seedComponent(t, f.db, "legs", 10)
		top := seedComponent(t, f.db, "top", 1)
		bom := seedBOM(t, f.db,
			inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4},
			inventory.BOMLine{ComponentID: top.ID, QuantityRequired: 1},
		)
		created, err := f.orders.CreateManufacturingOrder(ctx, appmfg.CreateOrderRequest{
			ProductName: "Table", Quantity: 2, BOMID: bom.ID, Deadline: repoNow.Add(72 * time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, created.Warnings, 1)

		_, err = f.orders.CompleteManufacturingOrder(ctx, created.Order.ID)
		var shortage *shared.InsufficientStockError
		require.ErrorAs(t, err, &shortage)
		assert.Equal(t, "top", shortage.ComponentName)
		assert.Equal(t, int64(2), shortage.Required)
		assert.Equal(t, int64(1), shortage.Available)

		stored, err := NewGormComponentRepository(f.db.DB).FindByID(ctx, legs.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), stored.QuantityOnHand)

		movements, total, err := f.ledger.ListMovements(ctx, appinv.MovementListFilter{Type: "OUT"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, movements)

		detail, err := f.orders.GetManufacturingOrder(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, manufacturing.OrderStatusPlanned.String(), detail.Status)
		assert.Equal(t, manufacturing.WorkOrderStatusPending.String(), detail.WorkOrders[0].Status)
	})

	t.Run("failure after consumption rolls back stock and ledger", func(t *testing.T) {
		f := newCompletionFixture(t)
		legs := seedComponent(t, f.db, "legs", 10)
		bom := seedBOM(t, f.db, inventory.BOMLine{ComponentID: legs.ID, QuantityRequired: 4})
		created, err := f.orders.CreateManufacturingOrder(ctx, appmfg.CreateOrderRequest{
			ProductName: "Table", Quantity: 2, BOMID: bom.ID, Deadline: repoNow.Add(72 * time.Hour),
		})
		require.NoError(t, err)

		// Work orders are written after the components are consumed
		require.NoError(t, f.db.DB.Exec(`CREATE TRIGGER reject_work_order_update BEFORE UPDATE ON work_orders
			BEGIN SELECT RAISE(ABORT, 'work order write rejected'); END`).Error)

		_, err = f.orders.CompleteManufacturingOrder(ctx, created.Order.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "work order write rejected")

		stored, err := NewGormComponentRepository(f.db.DB).FindByID(ctx, legs.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), stored.QuantityOnHand)

		_, total, err := f.ledger.ListMovements(ctx, appinv.MovementListFilter{Type: "OUT"})
		require.NoError(t, err)
		assert.Zero(t, total)

		reconciled, err := f.ledger.Reconcile(ctx, legs.ID)
		require.NoError(t, err)
		assert.True(t, reconciled.Consistent)

		detail, err := f.orders.GetManufacturingOrder(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, manufacturing.OrderStatusPlanned.String(), detail.Status)
		assert.Equal(t, manufacturing.WorkOrderStatusPending.String(), detail.WorkOrders[0].Status)
	})
}
