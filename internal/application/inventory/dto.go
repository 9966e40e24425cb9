package inventory

import (
	"time"

	"github.com/duka/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateStockItemRequest represents a request to create a stock item
type CreateStockItemRequest struct {
	Kind             string          `json:"kind" binding:"required,oneof=retail wholesale"`
	SKU              string          `json:"sku" binding:"required,sku"`
	Name             string          `json:"name" binding:"required,min=1,max=200"`
	Description      string          `json:"description" binding:"max=2000"`
	CategoryID       *uuid.UUID      `json:"category_id"`
	Quantity         int             `json:"quantity" binding:"min=0"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReorderThreshold int             `json:"reorder_threshold" binding:"min=0"`
	UnitsPerCarton   int             `json:"units_per_carton" binding:"omitempty,min=1"`
	Supplier         string          `json:"supplier" binding:"max=200"`
}

// UpdateStockItemRequest represents a request to update a stock item.
// Quantity is not updatable here; use restock or adjust.
type UpdateStockItemRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description      *string          `json:"description" binding:"omitempty,max=2000"`
	CategoryID       *uuid.UUID       `json:"category_id"`
	ClearCategory    bool             `json:"clear_category"`
	UnitCost         *decimal.Decimal `json:"unit_cost"`
	UnitPrice        *decimal.Decimal `json:"unit_price"`
	ReorderThreshold *int             `json:"reorder_threshold" binding:"omitempty,min=0"`
	UnitsPerCarton   *int             `json:"units_per_carton" binding:"omitempty,min=1"`
	Supplier         *string          `json:"supplier" binding:"omitempty,max=200"`
	IsActive         *bool            `json:"is_active"`
}

// RestockRequest adds received stock
type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"max=500"`
}

// AdjustStockRequest sets the on-hand quantity to a counted value
type AdjustStockRequest struct {
	CountedQuantity int    `json:"counted_quantity" binding:"min=0"`
	Reason          string `json:"reason" binding:"required,max=500"`
}

// StockItemListFilter represents filter options for stock item lists
type StockItemListFilter struct {
	Search     string     `form:"search"`
	Kind       string     `form:"kind" binding:"omitempty,oneof=retail wholesale"`
	CategoryID *uuid.UUID `form:"category_id"`
	ActiveOnly bool       `form:"active_only"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StockItemResponse represents a stock item in API responses
type StockItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ShopID           uuid.UUID       `json:"shop_id"`
	Kind             string          `json:"kind"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	CategoryID       *uuid.UUID      `json:"category_id,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	UnitProfit       decimal.Decimal `json:"unit_profit"`
	ProfitMargin     decimal.Decimal `json:"profit_margin"`
	StockValue       decimal.Decimal `json:"stock_value"`
	ReorderThreshold int             `json:"reorder_threshold"`
	IsLowStock       bool            `json:"is_low_stock"`
	UnitsPerCarton   int             `json:"units_per_carton"`
	Supplier         string          `json:"supplier,omitempty"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToStockItemResponse converts a domain StockItem to a response
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:               item.ID,
		ShopID:           item.ShopID,
		Kind:             string(item.Kind),
		SKU:              item.SKU,
		Name:             item.Name,
		Description:      item.Description,
		CategoryID:       item.CategoryID,
		Quantity:         item.OnHandQuantity,
		UnitCost:         item.UnitCost,
		UnitPrice:        item.UnitPrice,
		UnitProfit:       item.UnitProfit(),
		ProfitMargin:     item.ProfitMargin(),
		StockValue:       item.StockValue(),
		ReorderThreshold: item.ReorderThreshold,
		IsLowStock:       item.IsLowStock(),
		UnitsPerCarton:   item.UnitsPerCarton,
		Supplier:         item.Supplier,
		IsActive:         item.IsActive,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
		Version:          item.Version,
	}
}

// ToStockItemResponses converts a slice of stock items
func ToStockItemResponses(items []inventory.StockItem) []StockItemResponse {
	responses := make([]StockItemResponse, len(items))
	for i := range items {
		responses[i] = ToStockItemResponse(&items[i])
	}
	return responses
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToCategoryResponse converts a domain Category to a response
func ToCategoryResponse(c *inventory.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
