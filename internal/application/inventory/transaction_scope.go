package inventory

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// All repository operations performed inside fn share one database transaction
// and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the inventory repositories within a transaction.
//
// Aggregate boundaries:
//   - Components: the Component aggregate root. Its cached on-hand quantity only
//     changes together with an appended StockMovement.
//   - StockMovements: append-only ledger entries.
//   - BOMs: the BillOfMaterial aggregate root including its component lines.
type TransactionalRepositories interface {
	Components() inventory.ComponentRepository
	StockMovements() inventory.StockMovementRepository
	BOMs() inventory.BOMRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	components inventory.ComponentRepository
	movements  inventory.StockMovementRepository
	boms       inventory.BOMRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	components inventory.ComponentRepository,
	movements inventory.StockMovementRepository,
	boms inventory.BOMRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		components: components,
		movements:  movements,
		boms:       boms,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Components returns the component repository
func (s *NoOpTransactionScope) Components() inventory.ComponentRepository {
	return s.components
}

// StockMovements returns the stock movement repository
func (s *NoOpTransactionScope) StockMovements() inventory.StockMovementRepository {
	return s.movements
}

// BOMs returns the BOM repository
func (s *NoOpTransactionScope) BOMs() inventory.BOMRepository {
	return s.boms
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
