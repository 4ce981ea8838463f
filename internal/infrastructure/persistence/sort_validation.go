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

// Common allowed sort fields for entities with base fields

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ItemSortFields contains allowed sort fields for items
var ItemSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"code":            true,
	"name":            true,
	"barcode":         true,
	"unit_name":       true,
	"pieces_per_unit": true,
	"quantity":        true,
	"cost_price":      true,
	"selling_price":   true,
	"retail_price":    true,
	"wholesale_price": true,
	"promo_price":     true,
	"status":          true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"phone":      true,
	"email":      true,
	"balance":    true,
	"status":     true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"phone":      true,
	"email":      true,
	"balance":    true,
	"status":     true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"number":          true,
	"customer_id":     true,
	"customer_name":   true,
	"payment_type":    true,
	"subtotal_amount": true,
	"discount_amount": true,
	"total_amount":    true,
	"paid_amount":     true,
}

// PurchaseSortFields contains allowed sort fields for purchases
var PurchaseSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"number":          true,
	"supplier_id":     true,
	"supplier_name":   true,
	"payment_type":    true,
	"subtotal_amount": true,
	"discount_amount": true,
	"total_amount":    true,
	"paid_amount":     true,
}

// CustomerReturnSortFields contains allowed sort fields for customer returns
var CustomerReturnSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"number":      true,
	"sale_id":     true,
	"sale_number": true,
	"customer_id": true,
	"item_id":     true,
	"item_code":   true,
	"quantity":    true,
	"type":        true,
	"amount":      true,
}

// SupplierReturnSortFields contains allowed sort fields for supplier returns
var SupplierReturnSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"number":          true,
	"purchase_id":     true,
	"purchase_number": true,
	"supplier_id":     true,
	"item_id":         true,
	"item_code":       true,
	"quantity":        true,
	"type":            true,
	"amount":          true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"number":      true,
	"customer_id": true,
	"supplier_id": true,
	"amount":      true,
	"method":      true,
}

// BalanceEntrySortFields contains allowed sort fields for balance entries
var BalanceEntrySortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"entity_kind":    true,
	"entity_id":      true,
	"entry_type":     true,
	"delta":          true,
	"balance_before": true,
	"balance_after":  true,
}

// StockMovementSortFields contains allowed sort fields for stock movements
var StockMovementSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"item_id":         true,
	"movement_type":   true,
	"quantity":        true,
	"quantity_before": true,
	"quantity_after":  true,
	"source":          true,
}
