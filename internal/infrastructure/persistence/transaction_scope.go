package persistence

import (
	"context"

	appinv "github.com/erp/manufacturing/internal/application/inventory"
	appmfg "github.com/erp/manufacturing/internal/application/manufacturing"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"gorm.io/gorm"
)

// GormTransactionScope implements the inventory TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormManufacturingTransactionScope implements the manufacturing TransactionScope.
// Order completion posts stock movements and updates orders in the same transaction.
type GormManufacturingTransactionScope struct {
	db *gorm.DB
}

// NewGormManufacturingTransactionScope creates a new GormManufacturingTransactionScope.
func NewGormManufacturingTransactionScope(db *gorm.DB) *GormManufacturingTransactionScope {
	return &GormManufacturingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormManufacturingTransactionScope) Execute(ctx context.Context, fn func(repos appmfg.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Components returns the component repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Components() inventory.ComponentRepository {
	return NewGormComponentRepository(r.tx)
}

// StockMovements returns the stock ledger scoped to the current transaction.
func (r *gormTransactionalRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// BOMs returns the BOM repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BOMs() inventory.BOMRepository {
	return NewGormBOMRepository(r.tx)
}

// ManufacturingOrders returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ManufacturingOrders() manufacturing.ManufacturingOrderRepository {
	return NewGormManufacturingOrderRepository(r.tx)
}

// WorkOrders returns the work order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) WorkOrders() manufacturing.WorkOrderRepository {
	return NewGormWorkOrderRepository(r.tx)
}

// WorkCenters returns the work center repository scoped to the current transaction.
func (r *gormTransactionalRepositories) WorkCenters() manufacturing.WorkCenterRepository {
	return NewGormWorkCenterRepository(r.tx)
}

// Ensure the scopes implement their TransactionScope
var (
	_ appinv.TransactionScope = (*GormTransactionScope)(nil)
	_ appmfg.TransactionScope = (*GormManufacturingTransactionScope)(nil)
)

// Ensure gormTransactionalRepositories implements both TransactionalRepositories
var (
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appmfg.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
