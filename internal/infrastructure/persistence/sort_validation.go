package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ComponentSortFields contains allowed sort fields for components
var ComponentSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"name":             true,
	"quantity_on_hand": true,
	"unit_cost":        true,
	"supplier":         true,
	"reorder_level":    true,
}

// StockMovementSortFields contains allowed sort fields for stock movements
var StockMovementSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"type":          true,
	"quantity":      true,
	"balance_after": true,
}

// BOMSortFields contains allowed sort fields for bills of materials
var BOMSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// ManufacturingOrderSortFields contains allowed sort fields for manufacturing orders
var ManufacturingOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"product_name": true,
	"quantity":     true,
	"status":       true,
	"priority":     true,
	"deadline":     true,
	"completed_at": true,
}

// WorkCenterSortFields contains allowed sort fields for work centers
var WorkCenterSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"cost_per_hour": true,
	"capacity":      true,
	"is_active":     true,
}
