package persistence

import (
	"strings"

	"github.com/duka/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var (
	stockItemSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "sku": true,
		"on_hand_quantity": true, "unit_price": true, "kind": true,
	}
	customerSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "phone": true,
	}
	saleSortFields = map[string]bool{
		"created_at": true, "sale_date": true, "total_amount": true,
	}
	debtSortFields = map[string]bool{
		"created_at": true, "due_date": true, "amount": true, "status": true,
	}
	expenditureSortFields = map[string]bool{
		"created_at": true, "expense_date": true, "amount": true, "category": true,
	}
)

// applyOrder orders by a whitelisted field with id as the tiebreaker
func applyOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir).Order("id " + dir)
}

// applyPage limits the query to the filter's page
func applyPage(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern usable on postgres and sqlite
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
