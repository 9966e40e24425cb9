package inventory

import (
	"context"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockItemFilter narrows stock item listings
type StockItemFilter struct {
	shared.Filter
	Kind       ItemKind
	CategoryID *uuid.UUID
	ActiveOnly bool
}

// StockItemRepository defines persistence operations for stock items
type StockItemRepository interface {
	// FindByID finds an item regardless of shop
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)

	// FindByIDForShop finds an item within a shop
	FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*StockItem, error)

	// FindByIDForUpdate loads an item and takes a row write lock for the
	// rest of the enclosing transaction
	FindByIDForUpdate(ctx context.Context, shopID, id uuid.UUID) (*StockItem, error)

	// FindByIDs loads several items of a shop at once
	FindByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]StockItem, error)

	// FindBySKU finds an item by its SKU
	FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*StockItem, error)

	// FindAll lists items matching the filter
	FindAll(ctx context.Context, shopID uuid.UUID, filter StockItemFilter) ([]StockItem, int64, error)

	// FindLowStock lists active items at or below their reorder threshold
	FindLowStock(ctx context.Context, shopID uuid.UUID) ([]StockItem, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *StockItem) error

	// Delete removes an item
	Delete(ctx context.Context, shopID, id uuid.UUID) error

	// IsReferenced reports whether debts or sale lines point at the item
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, shopID uuid.UUID) ([]Category, error)
	ExistsByName(ctx context.Context, shopID uuid.UUID, name string) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}
