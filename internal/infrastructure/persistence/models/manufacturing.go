package models

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManufacturingOrderModel is the persistence model for the ManufacturingOrder aggregate root.
// Its primary key is the human-readable order number.
type ManufacturingOrderModel struct {
	ID          string    `gorm:"type:varchar(32);primaryKey"`
	ProductName string    `gorm:"type:varchar(200);not null"`
	Quantity    int64     `gorm:"not null"`
	BOMID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      string    `gorm:"type:varchar(20);not null;index"`
	Priority    string    `gorm:"type:varchar(10);not null;default:'Medium'"`
	Deadline    time.Time `gorm:"not null"`
	Notes       string    `gorm:"type:text"`
	Version     int       `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
	StartedAt   *time.Time
	CompletedAt *time.Time

	BOM *BOMModel `gorm:"foreignKey:BOMID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (ManufacturingOrderModel) TableName() string {
	return "manufacturing_orders"
}

// ToDomain converts the persistence model to a domain ManufacturingOrder.
func (m *ManufacturingOrderModel) ToDomain() *manufacturing.ManufacturingOrder {
	o := &manufacturing.ManufacturingOrder{
		Versioned:   shared.Versioned{Version: m.Version},
		ID:          m.ID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		BOMID:       m.BOMID,
		Status:      manufacturing.OrderStatus(m.Status),
		Priority:    manufacturing.Priority(m.Priority),
		Deadline:    m.Deadline,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	o.MarkPersisted()
	return o
}

// ManufacturingOrderModelFromDomain creates a new persistence model from a domain ManufacturingOrder.
func ManufacturingOrderModelFromDomain(o *manufacturing.ManufacturingOrder) *ManufacturingOrderModel {
	return &ManufacturingOrderModel{
		ID:          o.ID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		BOMID:       o.BOMID,
		Status:      string(o.Status),
		Priority:    string(o.Priority),
		Deadline:    o.Deadline,
		StartedAt:   o.StartedAt,
		CompletedAt: o.CompletedAt,
		Notes:       o.Notes,
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// WorkOrderModel is the persistence model for a WorkOrder owned by a manufacturing order.
type WorkOrderModel struct {
	BaseModel
	Name                  string              `gorm:"type:varchar(200);not null"`
	ManufacturingOrderID  string              `gorm:"type:varchar(32);not null;uniqueIndex:idx_work_order_sequence,priority:1"`
	WorkCenterID          *uuid.UUID          `gorm:"type:uuid;index"`
	AssignedUserID        *uuid.UUID          `gorm:"type:uuid;index"`
	Status                string              `gorm:"type:varchar(20);not null;index"`
	Sequence              int                 `gorm:"not null;uniqueIndex:idx_work_order_sequence,priority:2"`
	DurationMinutes       int                 `gorm:"not null;default:60"`
	ActualCost            decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	QualityCheck          bool                `gorm:"not null;default:false"`
	Notes                 string              `gorm:"type:text"`
	Issues                string              `gorm:"type:text"`
	StartedAt             *time.Time
	CompletedAt           *time.Time
	ActualDurationMinutes *int

	Order      *ManufacturingOrderModel `gorm:"foreignKey:ManufacturingOrderID;constraint:OnDelete:CASCADE"`
	WorkCenter *WorkCenterModel         `gorm:"foreignKey:WorkCenterID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder.
func (m *WorkOrderModel) ToDomain() *manufacturing.WorkOrder {
	return &manufacturing.WorkOrder{
		BaseEntity:            m.BaseModel.ToDomain(),
		Name:                  m.Name,
		ManufacturingOrderID:  m.ManufacturingOrderID,
		WorkCenterID:          m.WorkCenterID,
		AssignedUserID:        m.AssignedUserID,
		Status:                manufacturing.WorkOrderStatus(m.Status),
		Sequence:              m.Sequence,
		StartedAt:             m.StartedAt,
		CompletedAt:           m.CompletedAt,
		DurationMinutes:       m.DurationMinutes,
		ActualDurationMinutes: m.ActualDurationMinutes,
		ActualCost:            m.ActualCost,
		QualityCheck:          m.QualityCheck,
		Notes:                 m.Notes,
		Issues:                m.Issues,
	}
}

// WorkOrderModelFromDomain creates a new persistence model from a domain WorkOrder.
func WorkOrderModelFromDomain(w *manufacturing.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{
		Name:                  w.Name,
		ManufacturingOrderID:  w.ManufacturingOrderID,
		WorkCenterID:          w.WorkCenterID,
		AssignedUserID:        w.AssignedUserID,
		Status:                string(w.Status),
		Sequence:              w.Sequence,
		StartedAt:             w.StartedAt,
		CompletedAt:           w.CompletedAt,
		DurationMinutes:       w.DurationMinutes,
		ActualDurationMinutes: w.ActualDurationMinutes,
		ActualCost:            w.ActualCost,
		QualityCheck:          w.QualityCheck,
		Notes:                 w.Notes,
		Issues:                w.Issues,
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// WorkCenterModel is the persistence model for the WorkCenter aggregate root.
type WorkCenterModel struct {
	AggregateModel
	Name        string          `gorm:"type:varchar(100);not null;index"`
	Description string          `gorm:"type:varchar(500)"`
	CostPerHour decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Capacity    int             `gorm:"not null;default:1"`
	Efficiency  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:1"`
	IsActive    bool            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WorkCenterModel) TableName() string {
	return "work_centers"
}

// ToDomain converts the persistence model to a domain WorkCenter.
func (m *WorkCenterModel) ToDomain() *manufacturing.WorkCenter {
	wc := &manufacturing.WorkCenter{
		BaseAggregateRoot: m.toDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		CostPerHour:       m.CostPerHour,
		Capacity:          m.Capacity,
		Efficiency:        m.Efficiency,
		IsActive:          m.IsActive,
	}
	wc.MarkPersisted()
	return wc
}

// WorkCenterModelFromDomain creates a new persistence model from a domain WorkCenter.
func WorkCenterModelFromDomain(w *manufacturing.WorkCenter) *WorkCenterModel {
	m := &WorkCenterModel{
		Name:        w.Name,
		Description: w.Description,
		CostPerHour: w.CostPerHour,
		Capacity:    w.Capacity,
		Efficiency:  w.Efficiency,
		IsActive:    w.IsActive,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}

// AllModels lists every model in dependency order for AutoMigrate
func AllModels() []any {
	return []any{
		&ComponentModel{},
		&StockMovementModel{},
		&BOMModel{},
		&BOMComponentModel{},
		&WorkCenterModel{},
		&ManufacturingOrderModel{},
		&WorkOrderModel{},
	}
}
