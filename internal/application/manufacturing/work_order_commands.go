package manufacturing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// workOrderMutation changes one work order in place. changed reports whether
// its status moved.
type workOrderMutation func(wo *manufacturing.WorkOrder, costPerHour decimal.Decimal, now time.Time) (changed bool, err error)

// StartWorkOrder starts a Pending work order. actor becomes the assignee when
// nobody is assigned yet.
func (s *ManufacturingService) StartWorkOrder(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*WorkOrderActionResponse, error) {
	return s.changeWorkOrder(ctx, id, "start", true, func(wo *manufacturing.WorkOrder, _ decimal.Decimal, now time.Time) (bool, error) {
		return true, wo.Start(actor, now)
	})
}

// PauseWorkOrder pauses a Started work order
func (s *ManufacturingService) PauseWorkOrder(ctx context.Context, id uuid.UUID) (*WorkOrderActionResponse, error) {
	return s.changeWorkOrder(ctx, id, "pause", true, func(wo *manufacturing.WorkOrder, _ decimal.Decimal, now time.Time) (bool, error) {
		return true, wo.Pause(now)
	})
}

// ResumeWorkOrder resumes a Paused work order
func (s *ManufacturingService) ResumeWorkOrder(ctx context.Context, id uuid.UUID) (*WorkOrderActionResponse, error) {
	return s.changeWorkOrder(ctx, id, "resume", true, func(wo *manufacturing.WorkOrder, _ decimal.Decimal, now time.Time) (bool, error) {
		return true, wo.Resume(now)
	})
}

// CompleteWorkOrder completes a Started or Paused work order. When it was the
// last open work order the owning order becomes Done, without consuming stock.
func (s *ManufacturingService) CompleteWorkOrder(ctx context.Context, id uuid.UUID, req CompleteWorkOrderRequest) (*WorkOrderActionResponse, error) {
	details := manufacturing.CompletionDetails{
		Notes:        req.Notes,
		Issues:       req.Issues,
		QualityCheck: req.QualityCheck,
	}
	return s.changeWorkOrder(ctx, id, "complete", true, func(wo *manufacturing.WorkOrder, cost decimal.Decimal, now time.Time) (bool, error) {
		return true, wo.Complete(details, cost, now)
	})
}

// UpdateWorkOrderStatus sets a work order status directly. Setting the current
// status is a no-op that still reports the order aggregate.
func (s *ManufacturingService) UpdateWorkOrderStatus(ctx context.Context, id uuid.UUID, status string) (*WorkOrderActionResponse, error) {
	target, err := manufacturing.ParseWorkOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.changeWorkOrder(ctx, id, "set_status", true, func(wo *manufacturing.WorkOrder, cost decimal.Decimal, now time.Time) (bool, error) {
		return wo.SetStatus(target, cost, now)
	})
}

// UpdateWorkOrder edits a work order's details and, when given, its status
func (s *ManufacturingService) UpdateWorkOrder(ctx context.Context, id uuid.UUID, req UpdateWorkOrderRequest) (*WorkOrderActionResponse, error) {
	var target *manufacturing.WorkOrderStatus
	if req.Status != nil {
		status, err := manufacturing.ParseWorkOrderStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		target = &status
	}
	update := manufacturing.WorkOrderUpdate{
		Name:            req.Name,
		WorkCenterID:    req.WorkCenterID,
		ClearWorkCenter: req.ClearWorkCenter,
		AssignedUserID:  req.AssignedUserID,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Issues:          req.Issues,
		QualityCheck:    req.QualityCheck,
	}

	return s.changeWorkOrderWith(ctx, id, "update", target != nil, func(repos TransactionalRepositories, wo *manufacturing.WorkOrder, now time.Time) (bool, error) {
		if update.WorkCenterID != nil && !update.ClearWorkCenter {
			if err := ensureActiveWorkCenter(ctx, repos, *update.WorkCenterID); err != nil {
				return false, err
			}
		}
		if err := wo.Update(update, now); err != nil {
			return false, err
		}
		if target == nil {
			return false, nil
		}
		// The rate comes from the work center assigned after the edit
		cost, err := costPerHour(ctx, repos, wo)
		if err != nil {
			return false, err
		}
		return wo.SetStatus(*target, cost, now)
	})
}

// CreateWorkOrder appends a Pending work order to an open order
func (s *ManufacturingService) CreateWorkOrder(ctx context.Context, orderID string, req CreateWorkOrderRequest) (*WorkOrderResponse, error) {
	duration := req.DurationMinutes
	if duration == 0 {
		duration = s.config.DefaultWorkOrderMinutes
	}
	now := s.clock.Now()

	var wo *manufacturing.WorkOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.ManufacturingOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFound("manufacturing order", orderID, err)
		}
		if !order.AcceptsNewWorkOrders() {
			return shared.NewDomainError(shared.CodeInvalidTransition,
				fmt.Sprintf("Cannot add work orders to a %s manufacturing order", order.Status)).
				WithDetails(map[string]any{"order_id": order.ID, "status": order.Status.String()})
		}
		highest, err := repos.WorkOrders().MaxSequence(ctx, order.ID)
		if err != nil {
			return err
		}
		wo, err = manufacturing.NewWorkOrder(order.ID, req.Name, highest+1, duration, now)
		if err != nil {
			return err
		}
		if req.Notes != "" {
			notes := req.Notes
			if err := wo.Update(manufacturing.WorkOrderUpdate{Notes: &notes}, now); err != nil {
				return err
			}
		}
		if err := s.assignWorkOrder(ctx, repos, wo, req.WorkCenterID, req.AssignedUserID, now); err != nil {
			return err
		}
		return repos.WorkOrders().Save(ctx, wo)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Work order created",
		zap.String("order_id", wo.ManufacturingOrderID),
		zap.String("work_order_id", wo.ID.String()),
		zap.Int("sequence", wo.Sequence),
	)
	resp := ToWorkOrderResponse(wo)
	return &resp, nil
}

// GetWorkOrder retrieves a work order by ID
func (s *ManufacturingService) GetWorkOrder(ctx context.Context, id uuid.UUID) (*WorkOrderResponse, error) {
	wo, err := s.workOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("work order", id.String(), err)
	}
	resp := ToWorkOrderResponse(wo)
	return &resp, nil
}

// ListWorkOrders lists the work orders of an order in sequence
func (s *ManufacturingService) ListWorkOrders(ctx context.Context, orderID string) ([]WorkOrderResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, notFound("manufacturing order", orderID, err)
	}
	workOrders, err := s.workOrderRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	return ToWorkOrderResponses(pointers(workOrders)), nil
}

func (s *ManufacturingService) changeWorkOrder(ctx context.Context, id uuid.UUID, action string, statusChange bool, mutate workOrderMutation) (resp *WorkOrderActionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ManufacturingService", "WorkOrder."+action,
		telemetry.AttrWorkOrderID.String(id.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	return s.changeWorkOrderWith(ctx, id, action, statusChange, func(repos TransactionalRepositories, wo *manufacturing.WorkOrder, now time.Time) (bool, error) {
		cost, err := costPerHour(ctx, repos, wo)
		if err != nil {
			return false, err
		}
		return mutate(wo, cost, now)
	})
}

// changeWorkOrderWith runs a work order change under the owning order's row lock.
// Siblings are reloaded after the lock so the aggregate recompute sees every
// committed change. Work orders of a Canceled order keep their status.
func (s *ManufacturingService) changeWorkOrderWith(
	ctx context.Context,
	id uuid.UUID,
	action string,
	statusChange bool,
	mutate func(repos TransactionalRepositories, wo *manufacturing.WorkOrder, now time.Time) (bool, error),
) (*WorkOrderActionResponse, error) {
	now := s.clock.Now()
	var (
		order  *manufacturing.ManufacturingOrder
		wo     *manufacturing.WorkOrder
		report *manufacturing.CascadeReport
		events []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.WorkOrders().FindByID(ctx, id)
		if err != nil {
			return notFound("work order", id.String(), err)
		}
		order, err = repos.ManufacturingOrders().FindByIDForUpdate(ctx, current.ManufacturingOrderID)
		if err != nil {
			return notFound("manufacturing order", current.ManufacturingOrderID, err)
		}
		if statusChange && order.Status == manufacturing.OrderStatusCanceled {
			return shared.NewDomainError(shared.CodeInvalidTransition,
				"Work orders of a canceled manufacturing order cannot change status").
				WithDetails(map[string]any{"order_id": order.ID, "work_order_id": id.String()})
		}

		workOrders, err := loadWorkOrders(ctx, repos, order.ID)
		if err != nil {
			return err
		}
		for _, candidate := range workOrders {
			if candidate.ID == id {
				wo = candidate
				break
			}
		}
		if wo == nil {
			return shared.NewNotFoundError("work order", id.String())
		}

		old := wo.Status
		changed, err := mutate(repos, wo, now)
		if err != nil {
			return err
		}
		if err := repos.WorkOrders().Save(ctx, wo); err != nil {
			return err
		}
		if changed {
			order.AddDomainEvent(manufacturing.NewWorkOrderStatusChangedEvent(wo, old, now))
		}

		report = order.ApplyWorkOrderAggregate(workOrders, now)
		if report.ManufacturingOrderUpdated {
			if err := repos.ManufacturingOrders().Save(ctx, order); err != nil {
				return err
			}
		}
		events = order.GetDomainEvents()
		return nil
	})
	if err != nil {
		s.logger.Debug("Work order change rejected",
			zap.String("work_order_id", id.String()),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, err
	}

	s.publish(ctx, events)
	order.ClearDomainEvents()
	s.logger.Info("Work order updated",
		zap.String("order_id", order.ID),
		zap.String("work_order_id", wo.ID.String()),
		zap.String("action", action),
		zap.String("status", wo.Status.String()),
		zap.Bool("order_updated", report.ManufacturingOrderUpdated),
	)
	return &WorkOrderActionResponse{WorkOrder: ToWorkOrderResponse(wo), Cascade: report}, nil
}
