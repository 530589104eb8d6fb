package inventory

import "github.com/erp/manufacturing/internal/domain/shared"

// Error codes for referential guards
const (
	CodeComponentInUse     = "COMPONENT_IN_USE"
	CodeBOMInUse           = "BOM_IN_USE"
	CodeDuplicateComponent = "DUPLICATE_COMPONENT"
)

// NewComponentInUseError reports a component that a BOM still references
func NewComponentInUseError(c *Component) *shared.DomainError {
	return shared.NewDomainError(CodeComponentInUse, "Component is referenced by a bill of materials").
		WithDetails(map[string]any{"component_id": c.ID.String(), "component_name": c.Name})
}

// NewBOMInUseError reports a BOM that manufacturing orders still reference
func NewBOMInUseError(b *BillOfMaterial, orders int64) *shared.DomainError {
	return shared.NewDomainError(CodeBOMInUse, "Bill of materials is referenced by manufacturing orders").
		WithDetails(map[string]any{"bom_id": b.ID.String(), "orders": orders})
}
