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

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
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

// LotSortFields contains allowed sort fields for traceability lots
var LotSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"tlc_code":           true,
	"production_date":    true,
	"expiry_date":        true,
	"available_quantity": true,
	"status":             true,
}

// TrackingEventSortFields contains allowed sort fields for tracking events
var TrackingEventSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"event_date": true,
	"event_type": true,
	"status":     true,
}

// AnomalySortFields contains allowed sort fields for inventory anomalies
var AnomalySortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"severity":            true,
	"status":              true,
	"variance_percentage": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"category":   true,
	"status":     true,
}
