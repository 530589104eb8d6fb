package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BOMUsageChecker counts manufacturing orders that reference a BOM
type BOMUsageChecker interface {
	CountByBOM(ctx context.Context, bomID uuid.UUID) (int64, error)
}

// BOMService handles the bill of materials catalog and availability checks
type BOMService struct {
	txScope       TransactionScope
	bomRepo       inventory.BOMRepository
	componentRepo inventory.ComponentRepository
	usage         BOMUsageChecker
	resolver      *inventory.BOMResolver
	clock         shared.Clock
	logger        *zap.Logger
}

// NewBOMService creates a new BOMService
func NewBOMService(
	txScope TransactionScope,
	bomRepo inventory.BOMRepository,
	componentRepo inventory.ComponentRepository,
	usage BOMUsageChecker,
	clock shared.Clock,
	logger *zap.Logger,
) *BOMService {
	return &BOMService{
		txScope:       txScope,
		bomRepo:       bomRepo,
		componentRepo: componentRepo,
		usage:         usage,
		resolver:      inventory.NewBOMResolver(),
		clock:         clock,
		logger:        logger,
	}
}

// Create creates a BOM. Every referenced component must exist.
func (s *BOMService) Create(ctx context.Context, req CreateBOMRequest) (*BOMResponse, error) {
	bom, err := inventory.NewBillOfMaterial(req.Name, req.Description, toBOMLines(req.Components), s.clock.Now())
	if err != nil {
		return nil, err
	}

	var components map[uuid.UUID]*inventory.Component
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		components, err = loadBOMComponents(ctx, repos.Components(), bom)
		if err != nil {
			return err
		}
		return repos.BOMs().Save(ctx, bom)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("BOM created",
		zap.String("bom_id", bom.ID.String()),
		zap.String("name", bom.Name),
		zap.Int("components", len(bom.Components)),
	)
	response := ToBOMResponse(bom, components)
	return &response, nil
}

// Update renames a BOM and, when component lines are supplied, replaces them as a whole
func (s *BOMService) Update(ctx context.Context, id uuid.UUID, req UpdateBOMRequest) (*BOMResponse, error) {
	now := s.clock.Now()
	var (
		bom        *inventory.BillOfMaterial
		components map[uuid.UUID]*inventory.Component
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bom, err = repos.BOMs().FindByID(ctx, id)
		if err != nil {
			return err
		}

		name, description := bom.Name, bom.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := bom.Rename(name, description, now); err != nil {
			return err
		}
		if req.Components != nil {
			if err := bom.ReplaceComponents(toBOMLines(req.Components), now); err != nil {
				return err
			}
		}

		components, err = loadBOMComponents(ctx, repos.Components(), bom)
		if err != nil {
			return err
		}
		return repos.BOMs().Save(ctx, bom)
	})
	if err != nil {
		return nil, err
	}
	response := ToBOMResponse(bom, components)
	return &response, nil
}

// Delete removes a BOM. BOMs referenced by manufacturing orders fail with BOM_IN_USE.
func (s *BOMService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		bom, err := repos.BOMs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		orders, err := s.usage.CountByBOM(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check BOM usage: %w", err)
		}
		if orders > 0 {
			return inventory.NewBOMInUseError(bom, orders)
		}
		if err := repos.BOMs().Delete(ctx, id); err != nil {
			if errors.Is(err, shared.ErrReferenceViolation) {
				return inventory.NewBOMInUseError(bom, 1)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("BOM deleted", zap.String("bom_id", id.String()))
	return nil
}

// GetByID retrieves a BOM with its component names and stock levels
func (s *BOMService) GetByID(ctx context.Context, id uuid.UUID) (*BOMResponse, error) {
	bom, err := s.bomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	components, err := loadBOMComponents(ctx, s.componentRepo, bom)
	if err != nil {
		return nil, err
	}
	response := ToBOMResponse(bom, components)
	return &response, nil
}

// List retrieves BOMs with pagination
func (s *BOMService) List(ctx context.Context, page, pageSize int, search string) ([]BOMResponse, int64, error) {
	boms, total, err := s.bomRepo.FindAll(ctx, toFilter(page, pageSize, "name", "asc", search))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list BOMs: %w", err)
	}
	responses := make([]BOMResponse, len(boms))
	for i := range boms {
		responses[i] = ToBOMResponse(&boms[i], nil)
	}
	return responses, total, nil
}

// CheckAvailability resolves the component requirements for producing quantity
// units against current stock
func (s *BOMService) CheckAvailability(ctx context.Context, id uuid.UUID, quantity int64) (*AvailabilityResponse, error) {
	bom, err := s.bomRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	components, err := loadBOMComponents(ctx, s.componentRepo, bom)
	if err != nil {
		return nil, err
	}
	requirements, err := s.resolver.ResolveRequirements(bom, quantity, components)
	if err != nil {
		return nil, err
	}
	shortages := requirements.Shortages()
	return &AvailabilityResponse{
		BOMID:        bom.ID,
		Quantity:     quantity,
		CanProduce:   len(shortages) == 0,
		Requirements: requirements,
		Shortages:    shortages,
	}, nil
}

// loadBOMComponents loads every component a BOM references, failing with
// NOT_FOUND for the first missing one
func loadBOMComponents(ctx context.Context, repo inventory.ComponentRepository, bom *inventory.BillOfMaterial) (map[uuid.UUID]*inventory.Component, error) {
	found, err := repo.FindByIDs(ctx, bom.ComponentIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM components: %w", err)
	}
	index := indexComponents(found)
	for _, line := range bom.Components {
		if _, ok := index[line.ComponentID]; !ok {
			return nil, shared.NewNotFoundError("component", line.ComponentID.String())
		}
	}
	return index, nil
}
