package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
)

// MemoryStore is an in-memory backing store for every repository of the
// service. Aggregates are stored by value, so changes to a loaded aggregate are
// only visible after Save. Optimistic versions are checked like the GORM
// repositories do. Row locks are no-ops.
type MemoryStore struct {
	mu          sync.Mutex
	components  map[uuid.UUID]inventory.Component
	movements   []inventory.StockMovement
	boms        map[uuid.UUID]inventory.BillOfMaterial
	orders      map[string]manufacturing.ManufacturingOrder
	workOrders  map[uuid.UUID]manufacturing.WorkOrder
	workCenters map[uuid.UUID]manufacturing.WorkCenter
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		components:  make(map[uuid.UUID]inventory.Component),
		boms:        make(map[uuid.UUID]inventory.BillOfMaterial),
		orders:      make(map[string]manufacturing.ManufacturingOrder),
		workOrders:  make(map[uuid.UUID]manufacturing.WorkOrder),
		workCenters: make(map[uuid.UUID]manufacturing.WorkCenter),
	}
}

// Components returns the component repository
func (s *MemoryStore) Components() inventory.ComponentRepository { return &memoryComponents{s} }

// StockMovements returns the stock movement repository
func (s *MemoryStore) StockMovements() inventory.StockMovementRepository {
	return &memoryMovements{s}
}

// BOMs returns the BOM repository
func (s *MemoryStore) BOMs() inventory.BOMRepository { return &memoryBOMs{s} }

// ManufacturingOrders returns the manufacturing order repository
func (s *MemoryStore) ManufacturingOrders() manufacturing.ManufacturingOrderRepository {
	return &memoryOrders{s}
}

// WorkOrders returns the work order repository
func (s *MemoryStore) WorkOrders() manufacturing.WorkOrderRepository { return &memoryWorkOrders{s} }

// WorkCenters returns the work center repository
func (s *MemoryStore) WorkCenters() manufacturing.WorkCenterRepository {
	return &memoryWorkCenters{s}
}

// AllMovements returns a copy of the whole ledger in insertion order
func (s *MemoryStore) AllMovements() []inventory.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

// SeedComponent stores a component with the given on-hand quantity and a
// matching opening movement, keeping the ledger sum invariant
func (s *MemoryStore) SeedComponent(c *inventory.Component) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.QuantityOnHand != 0 {
		m := inventory.StockMovement{
			BaseEntity:   shared.NewBaseEntityAt(c.CreatedAt),
			ComponentID:  c.ID,
			Type:         inventory.MovementTypeIn,
			Quantity:     c.QuantityOnHand,
			Delta:        c.QuantityOnHand,
			BalanceAfter: c.QuantityOnHand,
			Reference:    inventory.ReferenceInitialStock,
		}
		s.movements = append(s.movements, m)
	}
	c.ClearDomainEvents()
	c.MarkPersisted()
	s.components[c.ID] = *c
}

func optimisticLockError(entity string) error {
	return shared.NewDomainError(shared.CodeOptimisticLockFailed, entity+" was modified by another transaction")
}

func page[T any](items []T, filter shared.Filter) []T {
	offset := filter.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + filter.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// components

type memoryComponents struct{ s *MemoryStore }

func (r *memoryComponents) FindByID(_ context.Context, id uuid.UUID) (*inventory.Component, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.components[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

func (r *memoryComponents) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Component, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryComponents) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.Component, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]inventory.Component, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.components[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memoryComponents) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]inventory.Component, error) {
	return r.FindByIDs(ctx, ids)
}

func (r *memoryComponents) FindAll(_ context.Context, filter inventory.ComponentFilter) ([]inventory.Component, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]inventory.Component, 0, len(r.s.components))
	for _, c := range r.s.components {
		if !containsFold(c.Name, filter.Search) {
			continue
		}
		if filter.LowStockOnly && !c.IsBelowReorderLevel() {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, filter.Filter), int64(len(out)), nil
}

func (r *memoryComponents) Save(_ context.Context, c *inventory.Component) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.IsPersisted() {
		stored, ok := r.s.components[c.ID]
		if !ok || stored.Version != c.PersistedVersion() {
			return optimisticLockError("Component")
		}
	}
	c.MarkPersisted()
	stored := *c
	stored.ClearDomainEvents()
	r.s.components[c.ID] = stored
	return nil
}

func (r *memoryComponents) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.components[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.s.components, id)
	return nil
}

// stock movements

type memoryMovements struct{ s *MemoryStore }

func (r *memoryMovements) Create(_ context.Context, m *inventory.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *memoryMovements) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	for _, m := range movements {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryMovements) FindAll(_ context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]inventory.StockMovement, 0, len(r.s.movements))
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if filter.ComponentID != nil && m.ComponentID != *filter.ComponentID {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		out = append(out, m)
	}
	return page(out, filter.Filter), int64(len(out)), nil
}

func (r *memoryMovements) SumDeltaByComponent(_ context.Context, componentID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, m := range r.s.movements {
		if m.ComponentID == componentID {
			total += m.Delta
		}
	}
	return total, nil
}

func (r *memoryMovements) DeleteByComponent(_ context.Context, componentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.movements[:0]
	for _, m := range r.s.movements {
		if m.ComponentID != componentID {
			kept = append(kept, m)
		}
	}
	r.s.movements = kept
	return nil
}

// BOMs

type memoryBOMs struct{ s *MemoryStore }

func copyBOM(b inventory.BillOfMaterial) inventory.BillOfMaterial {
	lines := make([]inventory.BOMComponent, len(b.Components))
	copy(lines, b.Components)
	b.Components = lines
	return b
}

func (r *memoryBOMs) FindByID(_ context.Context, id uuid.UUID) (*inventory.BillOfMaterial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boms[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	b = copyBOM(b)
	return &b, nil
}

func (r *memoryBOMs) FindAll(_ context.Context, filter shared.Filter) ([]inventory.BillOfMaterial, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]inventory.BillOfMaterial, 0, len(r.s.boms))
	for _, b := range r.s.boms {
		if containsFold(b.Name, filter.Search) {
			out = append(out, copyBOM(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, filter), int64(len(out)), nil
}

func (r *memoryBOMs) Save(_ context.Context, b *inventory.BillOfMaterial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.IsPersisted() {
		stored, ok := r.s.boms[b.ID]
		if !ok || stored.Version != b.PersistedVersion() {
			return optimisticLockError("BOM")
		}
	}
	b.MarkPersisted()
	stored := copyBOM(*b)
	stored.ClearDomainEvents()
	r.s.boms[b.ID] = stored
	return nil
}

func (r *memoryBOMs) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boms[id]; !ok {
		return shared.ErrNotFound
	}
	for _, o := range r.s.orders {
		if o.BOMID == id {
			return shared.ErrReferenceViolation
		}
	}
	delete(r.s.boms, id)
	return nil
}

func (r *memoryBOMs) ExistsByComponent(_ context.Context, componentID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.boms {
		if b.HasComponent(componentID) {
			return true, nil
		}
	}
	return false, nil
}

// manufacturing orders

type memoryOrders struct{ s *MemoryStore }

func (r *memoryOrders) MaxOrderSequence(_ context.Context, prefix string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	highest := 0
	for id := range r.s.orders {
		if n, ok := manufacturing.ParseOrderNumber(prefix, id); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func (r *memoryOrders) FindByID(_ context.Context, id string) (*manufacturing.ManufacturingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r *memoryOrders) FindByIDForUpdate(ctx context.Context, id string) (*manufacturing.ManufacturingOrder, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryOrders) FindAll(_ context.Context, filter manufacturing.OrderFilter) ([]manufacturing.ManufacturingOrder, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]manufacturing.ManufacturingOrder, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.BOMID != nil && o.BOMID != *filter.BOMID {
			continue
		}
		if !containsFold(o.ProductName, filter.Search) && !containsFold(o.ID, filter.Search) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Filter), int64(len(out)), nil
}

func (r *memoryOrders) Create(_ context.Context, o *manufacturing.ManufacturingOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.orders[o.ID]; exists {
		return shared.ErrConcurrencyConflict
	}
	o.MarkPersisted()
	stored := *o
	stored.ClearDomainEvents()
	r.s.orders[o.ID] = stored
	return nil
}

func (r *memoryOrders) Save(_ context.Context, o *manufacturing.ManufacturingOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != o.PersistedVersion() {
		return optimisticLockError("Manufacturing order")
	}
	o.MarkPersisted()
	stored = *o
	stored.ClearDomainEvents()
	r.s.orders[o.ID] = stored
	return nil
}

func (r *memoryOrders) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return shared.ErrNotFound
	}
	for woID, wo := range r.s.workOrders {
		if wo.ManufacturingOrderID == id {
			delete(r.s.workOrders, woID)
		}
	}
	delete(r.s.orders, id)
	return nil
}

func (r *memoryOrders) CountByBOM(_ context.Context, bomID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, o := range r.s.orders {
		if o.BOMID == bomID {
			n++
		}
	}
	return n, nil
}

// work orders

type memoryWorkOrders struct{ s *MemoryStore }

func (r *memoryWorkOrders) FindByID(_ context.Context, id uuid.UUID) (*manufacturing.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wo, ok := r.s.workOrders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &wo, nil
}

func (r *memoryWorkOrders) FindByOrder(_ context.Context, orderID string) ([]manufacturing.WorkOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]manufacturing.WorkOrder, 0)
	for _, wo := range r.s.workOrders {
		if wo.ManufacturingOrderID == orderID {
			out = append(out, wo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memoryWorkOrders) Save(_ context.Context, wo *manufacturing.WorkOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[wo.ManufacturingOrderID]; !ok {
		return shared.ErrReferenceViolation
	}
	r.s.workOrders[wo.ID] = *wo
	return nil
}

func (r *memoryWorkOrders) SaveAll(ctx context.Context, workOrders []*manufacturing.WorkOrder) error {
	for _, wo := range workOrders {
		if err := r.Save(ctx, wo); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryWorkOrders) MaxSequence(_ context.Context, orderID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	highest := 0
	for _, wo := range r.s.workOrders {
		if wo.ManufacturingOrderID == orderID && wo.Sequence > highest {
			highest = wo.Sequence
		}
	}
	return highest, nil
}

// work centers

type memoryWorkCenters struct{ s *MemoryStore }

func (r *memoryWorkCenters) FindByID(_ context.Context, id uuid.UUID) (*manufacturing.WorkCenter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wc, ok := r.s.workCenters[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &wc, nil
}

func (r *memoryWorkCenters) FindAll(_ context.Context, filter manufacturing.WorkCenterFilter) ([]manufacturing.WorkCenter, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]manufacturing.WorkCenter, 0, len(r.s.workCenters))
	for _, wc := range r.s.workCenters {
		if filter.ActiveOnly && !wc.IsActive {
			continue
		}
		if !containsFold(wc.Name, filter.Search) {
			continue
		}
		out = append(out, wc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, filter.Filter), int64(len(out)), nil
}

func (r *memoryWorkCenters) Save(_ context.Context, wc *manufacturing.WorkCenter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if wc.IsPersisted() {
		stored, ok := r.s.workCenters[wc.ID]
		if !ok || stored.Version != wc.PersistedVersion() {
			return optimisticLockError("Work center")
		}
	}
	wc.MarkPersisted()
	stored := *wc
	stored.ClearDomainEvents()
	r.s.workCenters[wc.ID] = stored
	return nil
}
