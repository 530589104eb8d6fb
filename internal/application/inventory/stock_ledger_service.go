package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockLedgerService posts and queries stock movements
type StockLedgerService struct {
	txScope        TransactionScope
	componentRepo  inventory.ComponentRepository
	movementRepo   inventory.StockMovementRepository
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockLedgerService creates a new StockLedgerService
func NewStockLedgerService(
	txScope TransactionScope,
	componentRepo inventory.ComponentRepository,
	movementRepo inventory.StockMovementRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *StockLedgerService {
	return &StockLedgerService{
		txScope:       txScope,
		componentRepo: componentRepo,
		movementRepo:  movementRepo,
		clock:         clock,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockLedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PostMovement locks the component and appends one movement.
// OUT fails with INSUFFICIENT_STOCK when the quantity exceeds the on-hand
// quantity. ADJUSTMENT treats the quantity as the target level; when the
// component already holds it, no movement is posted and Movement is nil.
func (s *StockLedgerService) PostMovement(ctx context.Context, req PostMovementRequest) (*PostMovementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "StockLedgerService", "PostMovement",
		telemetry.AttrComponentID.String(req.ComponentID.String()),
	)
	resp, err := s.postMovement(ctx, req)
	telemetry.EndSpan(span, err)
	return resp, err
}

func (s *StockLedgerService) postMovement(ctx context.Context, req PostMovementRequest) (*PostMovementResponse, error) {
	movementType, err := inventory.ParseMovementType(req.Type)
	if err != nil {
		return nil, err
	}
	if movementType != inventory.MovementTypeAdjustment && req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	var (
		movement  *inventory.StockMovement
		component *inventory.Component
		events    []shared.DomainEvent
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := NewLedger(repos.Components(), repos.StockMovements(), s.clock.Now())
		var postErr error
		movement, component, postErr = ledger.PostByID(ctx, req.ComponentID, movementType, req.Quantity, req.Reference)
		if postErr != nil {
			return postErr
		}
		events = ledger.Events()
		return nil
	})
	if err != nil {
		s.logRejected(err, req)
		return nil, err
	}

	s.publish(ctx, events)
	response := &PostMovementResponse{Component: ToComponentResponse(component)}
	if movement != nil {
		m := ToStockMovementResponse(movement)
		response.Movement = &m
		s.logger.Info("Stock movement posted",
			zap.String("component_id", component.ID.String()),
			zap.String("type", movement.Type.String()),
			zap.Int64("delta", movement.Delta),
			zap.Int64("balance_after", movement.BalanceAfter),
		)
	}
	return response, nil
}

// AdjustTo posts an ADJUSTMENT bringing the component to target units
func (s *StockLedgerService) AdjustTo(ctx context.Context, componentID uuid.UUID, target int64, reference string) (*PostMovementResponse, error) {
	if target < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Target quantity cannot be negative")
	}
	return s.PostMovement(ctx, PostMovementRequest{
		ComponentID: componentID,
		Type:        inventory.MovementTypeAdjustment.String(),
		Quantity:    target,
		Reference:   reference,
	})
}

// ListMovements lists ledger entries, newest first
func (s *StockLedgerService) ListMovements(ctx context.Context, filter MovementListFilter) ([]StockMovementResponse, int64, error) {
	movementFilter := inventory.MovementFilter{
		Filter:      toFilter(filter.Page, filter.PageSize, "created_at", "desc", ""),
		ComponentID: filter.ComponentID,
	}
	if filter.Type != "" {
		movementType, err := inventory.ParseMovementType(filter.Type)
		if err != nil {
			return nil, 0, err
		}
		movementFilter.Type = &movementType
	}

	movements, total, err := s.movementRepo.FindAll(ctx, movementFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return ToStockMovementResponses(movements), total, nil
}

// Reconcile compares the cached on-hand quantity with the sum of the ledger deltas
func (s *StockLedgerService) Reconcile(ctx context.Context, componentID uuid.UUID) (*ReconcileResponse, error) {
	component, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.SumDeltaByComponent(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock movements: %w", err)
	}

	diff := component.QuantityOnHand - total
	if diff != 0 {
		s.logger.Warn("Stock ledger out of balance",
			zap.String("component_id", componentID.String()),
			zap.Int64("quantity_on_hand", component.QuantityOnHand),
			zap.Int64("ledger_total", total),
		)
	}
	return &ReconcileResponse{
		ComponentID:    componentID,
		QuantityOnHand: component.QuantityOnHand,
		LedgerTotal:    total,
		Difference:     diff,
		Consistent:     diff == 0,
	}, nil
}

// ReconcileAll reconciles every component, one page at a time, and returns
// the components whose on-hand quantity has drifted from the ledger
func (s *StockLedgerService) ReconcileAll(ctx context.Context) (*ReconcileSummary, error) {
	summary := &ReconcileSummary{Drifted: make([]ReconcileResponse, 0)}
	filter := inventory.ComponentFilter{Filter: toFilter(1, reconcilePageSize, "created_at", "asc", "")}
	for {
		components, total, err := s.componentRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list components: %w", err)
		}
		for i := range components {
			result, err := s.Reconcile(ctx, components[i].ID)
			if err != nil {
				return nil, err
			}
			summary.Checked++
			if !result.Consistent {
				summary.Drifted = append(summary.Drifted, *result)
			}
		}
		if len(components) == 0 || int64(filter.Page*filter.PageSize) >= total {
			break
		}
		filter.Page++
	}
	return summary, nil
}

func (s *StockLedgerService) logRejected(err error, req PostMovementRequest) {
	var shortage *shared.InsufficientStockError
	if errors.As(err, &shortage) {
		s.logger.Info("Stock movement rejected",
			zap.String("component_id", req.ComponentID.String()),
			zap.Int64("required", shortage.Required),
			zap.Int64("available", shortage.Available),
		)
	}
}

func (s *StockLedgerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}
