package dto

import (
	"net/http"
	"strings"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/manufacturing"
	"github.com/erp/manufacturing/internal/domain/shared"
)

// Transport error codes. Domain codes are passed through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidQuantity = "INVALID_QUANTITY"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeDuplicateKey    = "DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:                http.StatusBadRequest,
	ErrCodeValidation:                http.StatusBadRequest,
	ErrCodeInvalidQuantity:           http.StatusBadRequest,
	shared.CodeInvalidInput:          http.StatusBadRequest,
	shared.CodeInvalidStatusValue:    http.StatusBadRequest,
	inventory.CodeDuplicateComponent: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	shared.CodeNotFound: http.StatusNotFound,

	shared.CodeInvalidTransition:         http.StatusConflict,
	shared.CodeAlreadyDone:               http.StatusConflict,
	shared.CodeConcurrencyConflict:       http.StatusConflict,
	shared.CodeOptimisticLockFailed:      http.StatusConflict,
	shared.CodeReferenceViolation:        http.StatusConflict,
	inventory.CodeBOMInUse:               http.StatusConflict,
	inventory.CodeComponentInUse:         http.StatusConflict,
	manufacturing.CodeWorkCenterInactive: http.StatusConflict,
	ErrCodeDuplicateKey:                  http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* codes are input errors; anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
