package shared

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// EventRecorder collects domain events raised by an aggregate until they are published
type EventRecorder struct {
	domainEvents []DomainEvent
}

// AddDomainEvent adds a domain event to be published
func (r *EventRecorder) AddDomainEvent(event DomainEvent) {
	r.domainEvents = append(r.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (r *EventRecorder) GetDomainEvents() []DomainEvent {
	return r.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (r *EventRecorder) ClearDomainEvents() {
	r.domainEvents = nil
}

// Versioned carries the optimistic locking version of an aggregate.
// The persisted version is what the store last saw; repositories update
// WHERE version = PersistedVersion() and treat zero as "not stored yet".
type Versioned struct {
	Version          int
	persistedVersion int
}

// GetVersion returns the aggregate version for optimistic locking
func (v *Versioned) GetVersion() int {
	return v.Version
}

// IncrementVersion increments the version number
func (v *Versioned) IncrementVersion() {
	v.Version++
}

// PersistedVersion returns the version the aggregate was loaded or last saved with
func (v *Versioned) PersistedVersion() int {
	return v.persistedVersion
}

// IsPersisted returns true once the aggregate was loaded from or saved to a store
func (v *Versioned) IsPersisted() bool {
	return v.persistedVersion > 0
}

// MarkPersisted records the current version as stored
func (v *Versioned) MarkPersisted() {
	v.persistedVersion = v.Version
}

// BaseAggregateRoot provides common fields for uuid-keyed aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Versioned
	EventRecorder
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Versioned:  Versioned{Version: 1},
	}
}
