package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Ledger posts stock movements inside one open transaction. Every change to a
// component's on-hand quantity goes through a Ledger so that the component row
// and its movement are written together.
//
// A Ledger is bound to the repositories of a single transaction and must not
// outlive it. Events raised by touched components are collected and handed to
// the caller through Events, to be published after commit.
type Ledger struct {
	components inventory.ComponentRepository
	movements  inventory.StockMovementRepository
	resolver   *inventory.BOMResolver
	now        time.Time
	events     []shared.DomainEvent
}

// NewLedger creates a ledger over transaction-scoped repositories
func NewLedger(components inventory.ComponentRepository, movements inventory.StockMovementRepository, now time.Time) *Ledger {
	return &Ledger{
		components: components,
		movements:  movements,
		resolver:   inventory.NewBOMResolver(),
		now:        now,
	}
}

// Lock loads a component and locks its row until the transaction ends
func (l *Ledger) Lock(ctx context.Context, componentID uuid.UUID) (*inventory.Component, error) {
	return l.components.FindByIDForUpdate(ctx, componentID)
}

// Post applies one movement to a locked component and persists both.
// IN and OUT take a positive magnitude. For ADJUSTMENT, quantity is the target
// on-hand level and the signed delta is derived; a zero delta posts nothing and
// returns a nil movement.
func (l *Ledger) Post(ctx context.Context, c *inventory.Component, movementType inventory.MovementType, quantity int64, reference string) (*inventory.StockMovement, error) {
	var (
		movement *inventory.StockMovement
		err      error
	)
	switch movementType {
	case inventory.MovementTypeIn:
		movement, err = c.Receive(quantity, reference, l.now)
	case inventory.MovementTypeOut:
		movement, err = c.Issue(quantity, reference, l.now)
	case inventory.MovementTypeAdjustment:
		movement, err = c.AdjustTo(quantity, reference, l.now)
	default:
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", fmt.Sprintf("invalid movement type: %q", movementType))
	}
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, nil
	}
	if err := l.record(ctx, []*inventory.Component{c}, []*inventory.StockMovement{movement}); err != nil {
		return nil, err
	}
	return movement, nil
}

// PostByID locks a component and posts one movement against it
func (l *Ledger) PostByID(ctx context.Context, componentID uuid.UUID, movementType inventory.MovementType, quantity int64, reference string) (*inventory.StockMovement, *inventory.Component, error) {
	c, err := l.Lock(ctx, componentID)
	if err != nil {
		return nil, nil, err
	}
	movement, err := l.Post(ctx, c, movementType, quantity, reference)
	if err != nil {
		return nil, nil, err
	}
	return movement, c, nil
}

// Resolve computes the requirements of bom for produceQty against current stock
// without locking anything
func (l *Ledger) Resolve(ctx context.Context, bom *inventory.BillOfMaterial, produceQty int64) (inventory.Requirements, error) {
	components, err := l.components.FindByIDs(ctx, bom.ComponentIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM components: %w", err)
	}
	return l.resolver.ResolveRequirements(bom, produceQty, indexComponents(components))
}

// ConsumeBOM locks every component of bom in ascending id order, re-checks the
// requirements and issues one OUT movement per BOM line. Nothing is written
// unless every line is covered.
func (l *Ledger) ConsumeBOM(ctx context.Context, bom *inventory.BillOfMaterial, produceQty int64, reference string) ([]*inventory.StockMovement, error) {
	components, err := l.components.FindByIDsForUpdate(ctx, bom.ComponentIDs())
	if err != nil {
		return nil, err
	}
	index := indexComponents(components)

	movements, err := l.resolver.Consume(bom, produceQty, index, reference, l.now)
	if err != nil {
		return nil, err
	}

	touched := make([]*inventory.Component, 0, len(bom.Components))
	for _, line := range bom.Components {
		touched = append(touched, index[line.ComponentID])
	}
	if err := l.record(ctx, touched, movements); err != nil {
		return nil, err
	}
	return movements, nil
}

// Events returns the domain events raised by components touched so far
func (l *Ledger) Events() []shared.DomainEvent {
	return l.events
}

func (l *Ledger) record(ctx context.Context, components []*inventory.Component, movements []*inventory.StockMovement) error {
	for _, c := range components {
		if err := l.components.Save(ctx, c); err != nil {
			return err
		}
	}
	if err := l.movements.CreateBatch(ctx, movements); err != nil {
		return fmt.Errorf("failed to append stock movements: %w", err)
	}
	for _, c := range components {
		l.events = append(l.events, c.GetDomainEvents()...)
		c.ClearDomainEvents()
	}
	return nil
}

func indexComponents(components []inventory.Component) map[uuid.UUID]*inventory.Component {
	index := make(map[uuid.UUID]*inventory.Component, len(components))
	for i := range components {
		index[components[i].ID] = &components[i]
	}
	return index
}
