package manufacturing

import (
	"context"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
)

// TransactionScope provides transactional access to the manufacturing and
// inventory repositories. Order completion writes orders, work orders,
// components and stock movements in one transaction.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository within a transaction.
// Work orders are child entities of the ManufacturingOrder aggregate; they have
// their own repository for sequence queries but are always written while the
// owning order row is locked.
type TransactionalRepositories interface {
	inventoryapp.TransactionalRepositories
	ManufacturingOrders() manufacturing.ManufacturingOrderRepository
	WorkOrders() manufacturing.WorkOrderRepository
	WorkCenters() manufacturing.WorkCenterRepository
}

// Repositories groups the repositories handed to a NoOpTransactionScope
type Repositories struct {
	Components          inventory.ComponentRepository
	StockMovements      inventory.StockMovementRepository
	BOMs                inventory.BOMRepository
	ManufacturingOrders manufacturing.ManufacturingOrderRepository
	WorkOrders          manufacturing.WorkOrderRepository
	WorkCenters         manufacturing.WorkCenterRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Components returns the component repository
func (s *NoOpTransactionScope) Components() inventory.ComponentRepository {
	return s.repos.Components
}

// StockMovements returns the stock movement repository
func (s *NoOpTransactionScope) StockMovements() inventory.StockMovementRepository {
	return s.repos.StockMovements
}

// BOMs returns the BOM repository
func (s *NoOpTransactionScope) BOMs() inventory.BOMRepository {
	return s.repos.BOMs
}

// ManufacturingOrders returns the manufacturing order repository
func (s *NoOpTransactionScope) ManufacturingOrders() manufacturing.ManufacturingOrderRepository {
	return s.repos.ManufacturingOrders
}

// WorkOrders returns the work order repository
func (s *NoOpTransactionScope) WorkOrders() manufacturing.WorkOrderRepository {
	return s.repos.WorkOrders
}

// WorkCenters returns the work center repository
func (s *NoOpTransactionScope) WorkCenters() manufacturing.WorkCenterRepository {
	return s.repos.WorkCenters
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
