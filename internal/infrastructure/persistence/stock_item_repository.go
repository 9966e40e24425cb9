package persistence

import (
	"context"
	"strings"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements inventory.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds an item regardless of shop
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// FindByIDForShop finds an item within a shop
func (r *GormStockItemRepository) FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// FindByIDForUpdate loads an item with SELECT ... FOR UPDATE.
// Must run inside a transaction; the lock is held until it ends.
func (r *GormStockItemRepository) FindByIDForUpdate(ctx context.Context, shopID, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// FindByIDs loads several items of a shop at once
func (r *GormStockItemRepository) FindByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]inventory.StockItem, error) {
	if len(ids) == 0 {
		return []inventory.StockItem{}, nil
	}
	var items []inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindBySKU finds an item by its SKU
func (r *GormStockItemRepository) FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND sku = ?", shopID, strings.ToUpper(strings.TrimSpace(sku))).
		First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// FindAll lists items matching the filter
func (r *GormStockItemRepository) FindAll(ctx context.Context, shopID uuid.UUID, filter inventory.StockItemFilter) ([]inventory.StockItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockItem{}).Where("shop_id = ?", shopID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(supplier) LIKE ?", p, p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []inventory.StockItem
	query = applyOrder(query, filter.Filter, stockItemSortFields, "name")
	if err := applyPage(query, filter.Filter).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindLowStock lists active items at or below their reorder threshold
func (r *GormStockItemRepository) FindLowStock(ctx context.Context, shopID uuid.UUID) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Where("on_hand_quantity <= reorder_threshold").
		Order("on_hand_quantity ASC").Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item
func (r *GormStockItemRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		Delete(&inventory.StockItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

// IsReferenced reports whether debts or sale lines point at the item
func (r *GormStockItemRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&trade.SaleLineItem{}).
		Where("stock_item_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&finance.Debt{}).
		Where("stock_item_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)

// GormCategoryRepository implements inventory.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForShop finds a category within a shop
func (r *GormCategoryRepository) FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*inventory.Category, error) {
	var c inventory.Category
	if err := r.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindAll lists the categories of a shop by name
func (r *GormCategoryRepository) FindAll(ctx context.Context, shopID uuid.UUID) ([]inventory.Category, error) {
	var categories []inventory.Category
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ExistsByName reports whether the shop already has a category with this name
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, shopID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.Category{}).
		Where("shop_id = ? AND LOWER(name) = ?", shopID, strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *inventory.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category; items in it become uncategorized
func (r *GormCategoryRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&inventory.StockItem{}).
		Where("shop_id = ? AND category_id = ?", shopID, id).
		Update("category_id", nil).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).Delete(&inventory.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

var _ inventory.CategoryRepository = (*GormCategoryRepository)(nil)
