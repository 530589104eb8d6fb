package manufacturing

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkCenterService handles work center application operations
type WorkCenterService struct {
	repo   manufacturing.WorkCenterRepository
	clock  shared.Clock
	logger *zap.Logger
}

// NewWorkCenterService creates a new WorkCenterService
func NewWorkCenterService(repo manufacturing.WorkCenterRepository, clock shared.Clock, logger *zap.Logger) *WorkCenterService {
	return &WorkCenterService{repo: repo, clock: clock, logger: logger}
}

// Create registers a new active work center
func (s *WorkCenterService) Create(ctx context.Context, req CreateWorkCenterRequest) (*WorkCenterResponse, error) {
	wc, err := manufacturing.NewWorkCenter(req.Name, req.Description, req.CostPerHour, req.Capacity, req.Efficiency, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, wc); err != nil {
		return nil, fmt.Errorf("failed to save work center: %w", err)
	}
	s.logger.Info("Work center created", zap.String("work_center_id", wc.ID.String()), zap.String("name", wc.Name))
	resp := ToWorkCenterResponse(wc)
	return &resp, nil
}

// Update edits a work center
func (s *WorkCenterService) Update(ctx context.Context, id uuid.UUID, req UpdateWorkCenterRequest) (*WorkCenterResponse, error) {
	return s.mutate(ctx, id, func(wc *manufacturing.WorkCenter) error {
		return wc.Update(manufacturing.WorkCenterUpdate{
			Name:        req.Name,
			Description: req.Description,
			CostPerHour: req.CostPerHour,
			Capacity:    req.Capacity,
			Efficiency:  req.Efficiency,
		}, s.clock.Now())
	})
}

// Activate makes a work center assignable again
func (s *WorkCenterService) Activate(ctx context.Context, id uuid.UUID) (*WorkCenterResponse, error) {
	return s.mutate(ctx, id, func(wc *manufacturing.WorkCenter) error {
		wc.Activate(s.clock.Now())
		return nil
	})
}

// Deactivate hides a work center. Work orders already assigned keep it.
func (s *WorkCenterService) Deactivate(ctx context.Context, id uuid.UUID) (*WorkCenterResponse, error) {
	return s.mutate(ctx, id, func(wc *manufacturing.WorkCenter) error {
		wc.Deactivate(s.clock.Now())
		return nil
	})
}

// GetByID retrieves a work center
func (s *WorkCenterService) GetByID(ctx context.Context, id uuid.UUID) (*WorkCenterResponse, error) {
	wc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("work center", id.String(), err)
	}
	resp := ToWorkCenterResponse(wc)
	return &resp, nil
}

// List lists work centers by name, active ones only unless IncludeInactive is set
func (s *WorkCenterService) List(ctx context.Context, filter WorkCenterListFilter) ([]WorkCenterResponse, int64, error) {
	wcFilter := manufacturing.WorkCenterFilter{
		Filter:     shared.DefaultFilter(),
		ActiveOnly: !filter.IncludeInactive,
	}
	wcFilter.OrderBy = "name"
	wcFilter.OrderDir = "asc"
	wcFilter.Search = filter.Search
	if filter.Page > 0 {
		wcFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		wcFilter.PageSize = filter.PageSize
	}

	centers, total, err := s.repo.FindAll(ctx, wcFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work centers: %w", err)
	}
	responses := make([]WorkCenterResponse, len(centers))
	for i := range centers {
		responses[i] = ToWorkCenterResponse(&centers[i])
	}
	return responses, total, nil
}

func (s *WorkCenterService) mutate(ctx context.Context, id uuid.UUID, fn func(wc *manufacturing.WorkCenter) error) (*WorkCenterResponse, error) {
	wc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("work center", id.String(), err)
	}
	if err := fn(wc); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, wc); err != nil {
		return nil, fmt.Errorf("failed to save work center: %w", err)
	}
	s.logger.Info("Work center updated",
		zap.String("work_center_id", wc.ID.String()),
		zap.Bool("active", wc.IsActive),
	)
	resp := ToWorkCenterResponse(wc)
	return &resp, nil
}
