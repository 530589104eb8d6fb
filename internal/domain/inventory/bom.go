package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// BOMComponent is one line of a bill of materials: how many units of a
// component go into one unit of the finished product.
type BOMComponent struct {
	BOMID            uuid.UUID
	ComponentID      uuid.UUID
	QuantityRequired int64
}

// BOMLine is the input form of a BOM component line
type BOMLine struct {
	ComponentID      uuid.UUID
	QuantityRequired int64
}

// BillOfMaterial maps a finished product to the components needed per unit.
// Components form a set keyed by component id.
type BillOfMaterial struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Components  []BOMComponent
}

// NewBillOfMaterial creates a validated bill of materials
func NewBillOfMaterial(name, description string, lines []BOMLine, now time.Time) (*BillOfMaterial, error) {
	root := shared.NewBaseAggregateRoot()
	root.CreatedAt = now
	root.UpdatedAt = now
	bom := &BillOfMaterial{BaseAggregateRoot: root}
	if err := bom.Rename(name, description, now); err != nil {
		return nil, err
	}
	if err := bom.ReplaceComponents(lines, now); err != nil {
		return nil, err
	}
	bom.Version = 1
	return bom, nil
}

// Rename changes the descriptive fields
func (b *BillOfMaterial) Rename(name, description string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "BOM name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "BOM name cannot exceed 100 characters")
	}
	b.Name = name
	b.Description = strings.TrimSpace(description)
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// ReplaceComponents swaps the component list after validating every line.
// Duplicate component ids are rejected rather than merged.
func (b *BillOfMaterial) ReplaceComponents(lines []BOMLine, now time.Time) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	components := make([]BOMComponent, 0, len(lines))
	for _, line := range lines {
		if line.ComponentID == uuid.Nil {
			return shared.NewDomainError("INVALID_COMPONENT", "Component ID cannot be empty")
		}
		if line.QuantityRequired <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity required must be positive").
				WithDetails(map[string]any{"component_id": line.ComponentID.String()})
		}
		if _, dup := seen[line.ComponentID]; dup {
			return shared.NewDomainError(CodeDuplicateComponent, "Component appears more than once in the BOM").
				WithDetails(map[string]any{"component_id": line.ComponentID.String()})
		}
		seen[line.ComponentID] = struct{}{}
		components = append(components, BOMComponent{
			BOMID:            b.ID,
			ComponentID:      line.ComponentID,
			QuantityRequired: line.QuantityRequired,
		})
	}
	b.Components = components
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// ComponentIDs returns the referenced component ids in ascending order.
// Callers lock component rows in this order.
func (b *BillOfMaterial) ComponentIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Components))
	for _, c := range b.Components {
		ids = append(ids, c.ComponentID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// HasComponent returns true if the BOM references componentID
func (b *BillOfMaterial) HasComponent(componentID uuid.UUID) bool {
	for _, c := range b.Components {
		if c.ComponentID == componentID {
			return true
		}
	}
	return false
}
