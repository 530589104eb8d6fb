package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) matches any NOT_FOUND error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying structured context fields
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by every bounded context
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInvalidStatusValue   = "INVALID_STATUS_VALUE"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeAlreadyDone          = "ALREADY_DONE"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeOptimisticLockFailed = "OPTIMISTIC_LOCK_FAILED"
	CodeReferenceViolation   = "REFERENCE_VIOLATION"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrInvalidStatusValue  = NewDomainError(CodeInvalidStatusValue, "Unrecognized status value")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrAlreadyDone         = NewDomainError(CodeAlreadyDone, "Manufacturing order is already completed")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrReferenceViolation  = NewDomainError(CodeReferenceViolation, "Resource is still referenced")
	ErrOptimisticLock      = NewDomainError(CodeOptimisticLockFailed, "Resource was modified by another transaction")
)

// NewNotFoundError builds a NOT_FOUND error naming the missing entity
func NewNotFoundError(entity, id string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id)).
		WithDetails(map[string]any{"entity": entity, "id": id})
}

// NewInvalidTransitionError builds an INVALID_TRANSITION error for a state machine
func NewInvalidTransitionError(entity, from, to string) *DomainError {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("cannot move %s from %s to %s", entity, from, to)).
		WithDetails(map[string]any{"entity": entity, "from": from, "to": to})
}

// NewInvalidStatusValueError builds an INVALID_STATUS_VALUE error
func NewInvalidStatusValueError(entity, value string) *DomainError {
	return NewDomainError(CodeInvalidStatusValue,
		fmt.Sprintf("invalid %s status: %q", entity, value)).
		WithDetails(map[string]any{"entity": entity, "value": value})
}

// InsufficientStockError reports the first component that cannot cover a requirement.
type InsufficientStockError struct {
	ComponentID   string
	ComponentName string
	Required      int64
	Available     int64
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: required %d, available %d",
		e.ComponentName, e.Required, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold
func (e *InsufficientStockError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == CodeInsufficientStock
}

// DomainError converts the error into its structured DomainError form
func (e *InsufficientStockError) DomainError() *DomainError {
	return NewDomainError(CodeInsufficientStock, e.Error()).WithDetails(map[string]any{
		"component_id":   e.ComponentID,
		"component_name": e.ComponentName,
		"required":       e.Required,
		"available":      e.Available,
	})
}
