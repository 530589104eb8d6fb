package models

import (
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComponentModel is the persistence model for the Component aggregate root.
type ComponentModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null;index"`
	QuantityOnHand int64           `gorm:"not null;default:0"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Supplier       string          `gorm:"type:varchar(200)"`
	ReorderLevel   int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ComponentModel) TableName() string {
	return "components"
}

// ToDomain converts the persistence model to a domain Component entity.
func (m *ComponentModel) ToDomain() *inventory.Component {
	c := &inventory.Component{
		BaseAggregateRoot: m.toDomainAggregateRoot(),
		Name:              m.Name,
		QuantityOnHand:    m.QuantityOnHand,
		UnitCost:          m.UnitCost,
		Supplier:          m.Supplier,
		ReorderLevel:      m.ReorderLevel,
	}
	c.MarkPersisted()
	return c
}

// FromDomain populates the persistence model from a domain Component entity.
func (m *ComponentModel) FromDomain(c *inventory.Component) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.QuantityOnHand = c.QuantityOnHand
	m.UnitCost = c.UnitCost
	m.Supplier = c.Supplier
	m.ReorderLevel = c.ReorderLevel
}

// ComponentModelFromDomain creates a new persistence model from a domain Component entity.
func ComponentModelFromDomain(c *inventory.Component) *ComponentModel {
	m := &ComponentModel{}
	m.FromDomain(c)
	return m
}

// StockMovementModel is the persistence model for an append-only ledger entry.
type StockMovementModel struct {
	BaseModel
	ComponentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Type         string    `gorm:"type:varchar(20);not null;index"`
	Quantity     int64     `gorm:"not null"`
	Delta        int64     `gorm:"not null"`
	BalanceAfter int64     `gorm:"not null"`
	Reference    string    `gorm:"type:varchar(500)"`

	Component *ComponentModel `gorm:"foreignKey:ComponentID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement entity.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:   m.BaseModel.ToDomain(),
		ComponentID:  m.ComponentID,
		Type:         inventory.MovementType(m.Type),
		Quantity:     m.Quantity,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		Reference:    m.Reference,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement entity.
func StockMovementModelFromDomain(sm *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{
		ComponentID:  sm.ComponentID,
		Type:         string(sm.Type),
		Quantity:     sm.Quantity,
		Delta:        sm.Delta,
		BalanceAfter: sm.BalanceAfter,
		Reference:    sm.Reference,
	}
	m.FromDomainBaseEntity(sm.BaseEntity)
	return m
}

// BOMModel is the persistence model for the BillOfMaterial aggregate root.
type BOMModel struct {
	AggregateModel
	Name        string              `gorm:"type:varchar(200);not null"`
	Description string              `gorm:"type:text"`
	Components  []BOMComponentModel `gorm:"foreignKey:BOMID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (BOMModel) TableName() string {
	return "boms"
}

// ToDomain converts the persistence model to a domain BillOfMaterial entity.
func (m *BOMModel) ToDomain() *inventory.BillOfMaterial {
	bom := &inventory.BillOfMaterial{
		BaseAggregateRoot: m.toDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Components:        make([]inventory.BOMComponent, len(m.Components)),
	}
	for i, line := range m.Components {
		bom.Components[i] = line.ToDomain()
	}
	bom.MarkPersisted()
	return bom
}

// BOMModelFromDomain creates a new persistence model from a domain BillOfMaterial entity.
// Component lines are written separately so the header update can be version checked.
func BOMModelFromDomain(b *inventory.BillOfMaterial) *BOMModel {
	m := &BOMModel{
		Name:        b.Name,
		Description: b.Description,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// BOMComponentModel is one component line of a BOM. The pair is the primary key;
// Position keeps the lines in the order they were given.
type BOMComponentModel struct {
	BOMID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComponentID      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	QuantityRequired int64     `gorm:"not null"`
	Position         int       `gorm:"not null;default:0"`

	Component *ComponentModel `gorm:"foreignKey:ComponentID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (BOMComponentModel) TableName() string {
	return "bom_components"
}

// ToDomain converts the persistence model to a domain BOMComponent
func (m BOMComponentModel) ToDomain() inventory.BOMComponent {
	return inventory.BOMComponent{
		BOMID:            m.BOMID,
		ComponentID:      m.ComponentID,
		QuantityRequired: m.QuantityRequired,
	}
}

// BOMComponentModelsFromDomain converts the component lines of a BOM
func BOMComponentModelsFromDomain(b *inventory.BillOfMaterial) []BOMComponentModel {
	lines := make([]BOMComponentModel, len(b.Components))
	for i, c := range b.Components {
		lines[i] = BOMComponentModel{
			BOMID:            b.ID,
			ComponentID:      c.ComponentID,
			QuantityRequired: c.QuantityRequired,
			Position:         i,
		}
	}
	return lines
}
