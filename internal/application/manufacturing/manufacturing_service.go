package manufacturing

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds manufacturing service settings
type Config struct {
	OrderNumberPrefix       string
	DefaultWorkOrderMinutes int
}

// DefaultConfig returns the default manufacturing settings
func DefaultConfig() Config {
	return Config{
		OrderNumberPrefix:       manufacturing.DefaultOrderNumberPrefix,
		DefaultWorkOrderMinutes: manufacturing.DefaultWorkOrderDurationMinutes,
	}
}

// ManufacturingService coordinates manufacturing orders, their work orders and
// component stock. Every state-changing operation runs in one transaction with
// the order row locked; events are published only after commit.
type ManufacturingService struct {
	txScope        TransactionScope
	orderRepo      manufacturing.ManufacturingOrderRepository
	workOrderRepo  manufacturing.WorkOrderRepository
	clock          shared.Clock
	config         Config
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewManufacturingService creates a new ManufacturingService
func NewManufacturingService(
	txScope TransactionScope,
	orderRepo manufacturing.ManufacturingOrderRepository,
	workOrderRepo manufacturing.WorkOrderRepository,
	clock shared.Clock,
	config Config,
	logger *zap.Logger,
) *ManufacturingService {
	if config.OrderNumberPrefix == "" {
		config.OrderNumberPrefix = manufacturing.DefaultOrderNumberPrefix
	}
	if config.DefaultWorkOrderMinutes <= 0 {
		config.DefaultWorkOrderMinutes = manufacturing.DefaultWorkOrderDurationMinutes
	}
	return &ManufacturingService{
		txScope:       txScope,
		orderRepo:     orderRepo,
		workOrderRepo: workOrderRepo,
		clock:         clock,
		config:        config,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ManufacturingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateManufacturingOrder plans an order with the next order number and one
// Pending work order "Assembly - <product>". Component shortages do not block
// planning; they are returned as warnings.
func (s *ManufacturingService) CreateManufacturingOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ManufacturingService", "CreateManufacturingOrder",
		telemetry.AttrBOMID.String(req.BOMID.String()),
	)
	resp, err := s.createManufacturingOrder(ctx, req)
	telemetry.EndSpan(span, err)
	return resp, err
}

func (s *ManufacturingService) createManufacturingOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	priority, err := manufacturing.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = s.config.DefaultWorkOrderMinutes
	}
	now := s.clock.Now()

	var (
		order     *manufacturing.ManufacturingOrder
		workOrder *manufacturing.WorkOrder
		warnings  inventory.Requirements
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		bom, err := repos.BOMs().FindByID(ctx, req.BOMID)
		if err != nil {
			return notFound("BOM", req.BOMID.String(), err)
		}
		ledger := inventoryapp.NewLedger(repos.Components(), repos.StockMovements(), now)
		requirements, err := ledger.Resolve(ctx, bom, req.Quantity)
		if err != nil {
			return err
		}
		warnings = requirements.Shortages()

		id, err := manufacturing.NewSequentialOrderNumberGenerator(s.config.OrderNumberPrefix, repos.ManufacturingOrders()).Next(ctx)
		if err != nil {
			return err
		}
		order, err = manufacturing.NewManufacturingOrder(id, req.ProductName, req.Quantity, bom.ID, req.Deadline, priority, req.Notes, now)
		if err != nil {
			return err
		}
		if err := repos.ManufacturingOrders().Create(ctx, order); err != nil {
			return err
		}

		workOrder, err = manufacturing.NewWorkOrder(order.ID, "Assembly - "+order.ProductName, 1, duration, now)
		if err != nil {
			return err
		}
		if err := s.assignWorkOrder(ctx, repos, workOrder, req.WorkCenterID, req.AssignedUserID, now); err != nil {
			return err
		}
		return repos.WorkOrders().Save(ctx, workOrder)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	s.logger.Info("Manufacturing order created",
		zap.String("order_id", order.ID),
		zap.String("product", order.ProductName),
		zap.Int64("quantity", order.Quantity),
		zap.Int("shortages", len(warnings)),
	)
	return &CreateOrderResponse{
		Order:      ToOrderResponse(order),
		WorkOrders: ToWorkOrderResponses([]*manufacturing.WorkOrder{workOrder}),
		Warnings:   warnings,
	}, nil
}

// UpdateManufacturingOrder applies descriptive changes and, when a status is
// given, the explicit status transition with its work order cascade
func (s *ManufacturingService) UpdateManufacturingOrder(ctx context.Context, id string, req UpdateOrderRequest) (*OrderUpdateResponse, error) {
	update, err := toOrderUpdate(req)
	if err != nil {
		return nil, err
	}
	var target *manufacturing.OrderStatus
	if req.Status != nil {
		status, err := manufacturing.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		target = &status
	}
	now := s.clock.Now()

	var (
		order  *manufacturing.ManufacturingOrder
		report *manufacturing.CascadeReport
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.ManufacturingOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound("manufacturing order", id, err)
		}
		if update.BOMID != nil && *update.BOMID != order.BOMID {
			if _, err := repos.BOMs().FindByID(ctx, *update.BOMID); err != nil {
				return notFound("BOM", update.BOMID.String(), err)
			}
		}
		if err := order.UpdateDetails(update, now); err != nil {
			return err
		}

		if target != nil {
			workOrders, err := loadWorkOrders(ctx, repos, order.ID)
			if err != nil {
				return err
			}
			report, err = order.ChangeStatus(*target, workOrders, now)
			if err != nil {
				return err
			}
			if err := saveCascade(ctx, repos, order, workOrders, report); err != nil {
				return err
			}
		}
		return repos.ManufacturingOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()
	if report != nil {
		s.logger.Info("Manufacturing order status updated",
			zap.String("order_id", order.ID),
			zap.String("old_status", report.OldStatus.String()),
			zap.String("new_status", report.NewStatus.String()),
			zap.Int("work_orders_updated", report.AffectedWorkOrders()),
		)
	}
	return &OrderUpdateResponse{Order: ToOrderResponse(order), Cascade: report}, nil
}

// UpdateManufacturingOrderStatus is the status-only form of UpdateManufacturingOrder
func (s *ManufacturingService) UpdateManufacturingOrderStatus(ctx context.Context, id, status string) (*OrderUpdateResponse, error) {
	return s.UpdateManufacturingOrder(ctx, id, UpdateOrderRequest{Status: &status})
}

// CompleteManufacturingOrder consumes the BOM components for the order
// quantity, force-completes every work order and marks the order Done, all in
// one transaction. A second completion fails with ALREADY_DONE; any shortage
// fails with INSUFFICIENT_STOCK and leaves stock untouched.
func (s *ManufacturingService) CompleteManufacturingOrder(ctx context.Context, id string) (*CompletionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ManufacturingService", "CompleteManufacturingOrder",
		telemetry.AttrOrderID.String(id),
	)
	resp, err := s.completeManufacturingOrder(ctx, id)
	telemetry.EndSpan(span, err)
	return resp, err
}

func (s *ManufacturingService) completeManufacturingOrder(ctx context.Context, id string) (*CompletionResponse, error) {
	now := s.clock.Now()
	var (
		order     *manufacturing.ManufacturingOrder
		movements []*inventory.StockMovement
		report    *manufacturing.CascadeReport
		events    []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.ManufacturingOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound("manufacturing order", id, err)
		}
		if err := order.EnsureCompletable(); err != nil {
			return err
		}
		bom, err := repos.BOMs().FindByID(ctx, order.BOMID)
		if err != nil {
			return notFound("BOM", order.BOMID.String(), err)
		}

		ledger := inventoryapp.NewLedger(repos.Components(), repos.StockMovements(), now)
		reference := fmt.Sprintf("Consumed for %s - %s", order.ID, order.ProductName)
		movements, err = ledger.ConsumeBOM(ctx, bom, order.Quantity, reference)
		if err != nil {
			return err
		}

		workOrders, err := loadWorkOrders(ctx, repos, order.ID)
		if err != nil {
			return err
		}
		report, err = order.Complete(workOrders, len(movements), now)
		if err != nil {
			return err
		}
		if err := saveCascade(ctx, repos, order, workOrders, report); err != nil {
			return err
		}
		if err := repos.ManufacturingOrders().Save(ctx, order); err != nil {
			return err
		}
		events = append(ledger.Events(), order.GetDomainEvents()...)
		return nil
	})
	if err != nil {
		var shortage *shared.InsufficientStockError
		if errors.As(err, &shortage) {
			s.logger.Info("Manufacturing order completion rejected",
				zap.String("order_id", id),
				zap.String("component", shortage.ComponentName),
				zap.Int64("required", shortage.Required),
				zap.Int64("available", shortage.Available),
			)
		}
		return nil, err
	}

	s.publish(ctx, events)
	order.ClearDomainEvents()
	s.logger.Info("Manufacturing order completed",
		zap.String("order_id", order.ID),
		zap.Int("components_consumed", len(movements)),
		zap.Int("work_orders_updated", report.AffectedWorkOrders()),
	)

	consumed := make([]inventoryapp.StockMovementResponse, len(movements))
	for i, m := range movements {
		consumed[i] = inventoryapp.ToStockMovementResponse(m)
	}
	return &CompletionResponse{
		Order:             ToOrderResponse(order),
		ConsumedMovements: consumed,
		WorkOrdersUpdated: report.WorkOrdersUpdated,
	}, nil
}

// DeleteManufacturingOrder deletes an order together with its work orders
func (s *ManufacturingService) DeleteManufacturingOrder(ctx context.Context, id string) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ManufacturingOrders().FindByIDForUpdate(ctx, id); err != nil {
			return notFound("manufacturing order", id, err)
		}
		return repos.ManufacturingOrders().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Manufacturing order deleted", zap.String("order_id", id))
	return nil
}

// GetManufacturingOrder retrieves an order with its work orders
func (s *ManufacturingService) GetManufacturingOrder(ctx context.Context, id string) (*OrderDetailResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("manufacturing order", id, err)
	}
	workOrders, err := s.workOrderRepo.FindByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load work orders: %w", err)
	}
	return &OrderDetailResponse{
		OrderResponse: ToOrderResponse(order),
		WorkOrders:    ToWorkOrderResponses(pointers(workOrders)),
	}, nil
}

// ListManufacturingOrders lists orders, newest first
func (s *ManufacturingService) ListManufacturingOrders(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	orderFilter := manufacturing.OrderFilter{
		Filter: shared.DefaultFilter(),
		BOMID:  filter.BOMID,
	}
	if filter.Page > 0 {
		orderFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		orderFilter.PageSize = filter.PageSize
	}
	orderFilter.Search = filter.Search
	if filter.Status != "" {
		status, err := manufacturing.ParseOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		orderFilter.Status = &status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, orderFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list manufacturing orders: %w", err)
	}
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// assignWorkOrder sets the work center and operator of a work order.
// The work center must exist and be active.
func (s *ManufacturingService) assignWorkOrder(ctx context.Context, repos TransactionalRepositories, wo *manufacturing.WorkOrder, workCenterID, userID *uuid.UUID, now time.Time) error {
	if workCenterID != nil {
		if err := ensureActiveWorkCenter(ctx, repos, *workCenterID); err != nil {
			return err
		}
	}
	return wo.Update(manufacturing.WorkOrderUpdate{
		WorkCenterID:   workCenterID,
		AssignedUserID: userID,
	}, now)
}

func (s *ManufacturingService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}

func ensureActiveWorkCenter(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) error {
	wc, err := repos.WorkCenters().FindByID(ctx, id)
	if err != nil {
		return notFound("work center", id.String(), err)
	}
	if !wc.IsActive {
		return shared.NewDomainError(manufacturing.CodeWorkCenterInactive, "Work center is inactive").
			WithDetails(map[string]any{"work_center_id": id.String()})
	}
	return nil
}

// costPerHour returns the rate of the work order's work center, or zero when unassigned
func costPerHour(ctx context.Context, repos TransactionalRepositories, wo *manufacturing.WorkOrder) (decimal.Decimal, error) {
	if wo.WorkCenterID == nil {
		return decimal.Zero, nil
	}
	wc, err := repos.WorkCenters().FindByID(ctx, *wo.WorkCenterID)
	if err != nil {
		return decimal.Zero, notFound("work center", wo.WorkCenterID.String(), err)
	}
	return wc.CostPerHour, nil
}

func loadWorkOrders(ctx context.Context, repos TransactionalRepositories, orderID string) ([]*manufacturing.WorkOrder, error) {
	workOrders, err := repos.WorkOrders().FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work orders: %w", err)
	}
	return pointers(workOrders), nil
}

// saveCascade persists the work orders a cascade touched and records their events on the order
func saveCascade(ctx context.Context, repos TransactionalRepositories, order *manufacturing.ManufacturingOrder, workOrders []*manufacturing.WorkOrder, report *manufacturing.CascadeReport) error {
	if len(report.WorkOrdersUpdated) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*manufacturing.WorkOrder, len(workOrders))
	for _, wo := range workOrders {
		byID[wo.ID] = wo
	}
	changed := make([]*manufacturing.WorkOrder, 0, len(report.WorkOrdersUpdated))
	for _, change := range report.WorkOrdersUpdated {
		wo := byID[change.ID]
		changed = append(changed, wo)
		order.AddDomainEvent(manufacturing.NewWorkOrderStatusChangedEvent(wo, change.OldStatus, change.ChangedAt))
	}
	return repos.WorkOrders().SaveAll(ctx, changed)
}

func pointers(workOrders []manufacturing.WorkOrder) []*manufacturing.WorkOrder {
	out := make([]*manufacturing.WorkOrder, len(workOrders))
	for i := range workOrders {
		out[i] = &workOrders[i]
	}
	return out
}

func toOrderUpdate(req UpdateOrderRequest) (manufacturing.OrderUpdate, error) {
	update := manufacturing.OrderUpdate{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Deadline:    req.Deadline,
		BOMID:       req.BOMID,
		Notes:       req.Notes,
	}
	if req.Priority != nil {
		priority, err := manufacturing.ParsePriority(*req.Priority)
		if err != nil {
			return update, err
		}
		update.Priority = &priority
	}
	return update, nil
}

// notFound turns a bare repository NOT_FOUND into one naming the entity
func notFound(entity, id string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}
