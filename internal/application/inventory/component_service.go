package inventory

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComponentService handles the component catalog. Stock levels are never
// written directly; they change through the ledger.
type ComponentService struct {
	txScope        TransactionScope
	componentRepo  inventory.ComponentRepository
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewComponentService creates a new ComponentService
func NewComponentService(
	txScope TransactionScope,
	componentRepo inventory.ComponentRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *ComponentService {
	return &ComponentService{
		txScope:       txScope,
		componentRepo: componentRepo,
		clock:         clock,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ComponentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a component at zero stock and posts its opening balance as an
// IN movement referenced "Initial stock"
func (s *ComponentService) Create(ctx context.Context, req CreateComponentRequest) (*ComponentResponse, error) {
	if req.InitialQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}
	now := s.clock.Now()
	component, err := inventory.NewComponent(req.Name, req.UnitCost, req.Supplier, req.ReorderLevel, now)
	if err != nil {
		return nil, err
	}

	var events []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Components().Save(ctx, component); err != nil {
			return fmt.Errorf("failed to create component: %w", err)
		}
		if req.InitialQuantity == 0 {
			return nil
		}
		ledger := NewLedger(repos.Components(), repos.StockMovements(), now)
		if _, err := ledger.Post(ctx, component, inventory.MovementTypeIn, req.InitialQuantity, inventory.ReferenceInitialStock); err != nil {
			return err
		}
		events = ledger.Events()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	s.logger.Info("Component created",
		zap.String("component_id", component.ID.String()),
		zap.String("name", component.Name),
		zap.Int64("initial_quantity", req.InitialQuantity),
	)
	response := ToComponentResponse(component)
	return &response, nil
}

// Update changes descriptive fields. A QuantityOnHand target is reached by
// posting an ADJUSTMENT with the computed delta; price changes post nothing.
func (s *ComponentService) Update(ctx context.Context, id uuid.UUID, req UpdateComponentRequest) (*ComponentResponse, error) {
	now := s.clock.Now()
	var (
		component *inventory.Component
		events    []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := NewLedger(repos.Components(), repos.StockMovements(), now)
		var err error
		component, err = ledger.Lock(ctx, id)
		if err != nil {
			return err
		}
		if err := component.Update(inventory.ComponentUpdate{
			Name:         req.Name,
			UnitCost:     req.UnitCost,
			Supplier:     req.Supplier,
			ReorderLevel: req.ReorderLevel,
		}, now); err != nil {
			return err
		}

		if req.QuantityOnHand != nil {
			movement, err := ledger.Post(ctx, component, inventory.MovementTypeAdjustment, *req.QuantityOnHand, "")
			if err != nil {
				return err
			}
			if movement != nil {
				events = ledger.Events()
				return nil
			}
		}
		return repos.Components().Save(ctx, component)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	response := ToComponentResponse(component)
	return &response, nil
}

// Delete removes a component and its movement history. Components still
// referenced by a BOM fail with COMPONENT_IN_USE.
func (s *ComponentService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		component, err := repos.Components().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		inUse, err := repos.BOMs().ExistsByComponent(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check component usage: %w", err)
		}
		if inUse {
			return inventory.NewComponentInUseError(component)
		}
		if err := repos.StockMovements().DeleteByComponent(ctx, id); err != nil {
			return fmt.Errorf("failed to delete stock movements: %w", err)
		}
		return repos.Components().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Component deleted", zap.String("component_id", id.String()))
	return nil
}

// GetByID retrieves a component
func (s *ComponentService) GetByID(ctx context.Context, id uuid.UUID) (*ComponentResponse, error) {
	component, err := s.componentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToComponentResponse(component)
	return &response, nil
}

// List retrieves components with filtering and pagination
func (s *ComponentService) List(ctx context.Context, filter ComponentListFilter) ([]ComponentResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	components, total, err := s.componentRepo.FindAll(ctx, inventory.ComponentFilter{
		Filter:       toFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		LowStockOnly: filter.LowStockOnly,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list components: %w", err)
	}
	return ToComponentResponses(components), total, nil
}

func (s *ComponentService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
