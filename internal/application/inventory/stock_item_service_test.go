package inventory_test

import (
	"context"
	"testing"
	"time"

	appinventory "github.com/duka/backend/internal/application/inventory"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type inventoryFixture struct {
	db         *gorm.DB
	items      *appinventory.StockItemService
	categories *appinventory.CategoryService
	shopID     uuid.UUID
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	s := testutil.SeedShop(t, db, shop.ShopTypeDukaLaVinywaji)
	return &inventoryFixture{
		db:         db,
		items:      appinventory.NewStockItemService(persistence.NewGormTransactionScope(db), repos, appinventory.NewLedger(nil), nil),
		categories: appinventory.NewCategoryService(repos),
		shopID:     s.ID,
	}
}

func (f *inventoryFixture) create(t *testing.T, req appinventory.CreateStockItemRequest) *appinventory.StockItemResponse {
	t.Helper()
	if req.Kind == "" {
		req.Kind = "retail"
	}
	item, err := f.items.Create(context.Background(), f.shopID, req)
	require.NoError(t, err)
	return item
}

func TestStockItemService_Create(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture(t)
	category, err := f.categories.Create(ctx, f.shopID, appinventory.CreateCategoryRequest{Name: "Soft drinks"})
	require.NoError(t, err)

	item := f.create(t, appinventory.CreateStockItemRequest{
		Kind:             "wholesale",
		SKU:              "SODA-CRT",
		Name:             "Soda crate",
		CategoryID:       &category.ID,
		Quantity:         12,
		UnitCost:         decimal.NewFromInt(9000),
		UnitPrice:        decimal.NewFromInt(12000),
		ReorderThreshold: 3,
		UnitsPerCarton:   24,
		Supplier:         " Bonite ",
	})
	assert.Equal(t, "wholesale", item.Kind)
	assert.Equal(t, 12, item.Quantity)
	assert.Equal(t, 24, item.UnitsPerCarton)
	assert.Equal(t, "Bonite", item.Supplier)
	assert.True(t, decimal.NewFromInt(3000).Equal(item.UnitProfit))
	assert.False(t, item.IsLowStock)

	t.Run("duplicate sku", func(t *testing.T) {
		_, err := f.items.Create(ctx, f.shopID, appinventory.CreateStockItemRequest{Kind: "retail", SKU: "SODA-CRT", Name: "Again"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("unknown category", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.items.Create(ctx, f.shopID, appinventory.CreateStockItemRequest{Kind: "retail", SKU: "X-1", Name: "X", CategoryID: &missing})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate category name", func(t *testing.T) {
		_, err := f.categories.Create(ctx, f.shopID, appinventory.CreateCategoryRequest{Name: "Soft drinks"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestStockItemService_RestockAndAdjust(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture(t)
	item := f.create(t, appinventory.CreateStockItemRequest{SKU: "WATER-1", Name: "Water", Quantity: 5, UnitPrice: decimal.NewFromInt(500)})

	got, err := f.items.Restock(ctx, f.shopID, item.ID, appinventory.RestockRequest{Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)

	_, err = f.items.Restock(ctx, f.shopID, item.ID, appinventory.RestockRequest{Quantity: 0})
	assert.Error(t, err)

	got, err = f.items.AdjustTo(ctx, f.shopID, item.ID, appinventory.AdjustStockRequest{CountedQuantity: 9, Reason: "stock take"})
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
	assert.Equal(t, 9, testutil.ReloadStockItem(t, f.db, item.ID).OnHandQuantity)

	got, err = f.items.AdjustTo(ctx, f.shopID, item.ID, appinventory.AdjustStockRequest{CountedQuantity: 0, Reason: "broken"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	_, err = f.items.AdjustTo(ctx, f.shopID, item.ID, appinventory.AdjustStockRequest{CountedQuantity: -1, Reason: "typo"})
	assert.Error(t, err)
}

func TestStockItemService_UpdateDoesNotTouchQuantity(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture(t)
	item := f.create(t, appinventory.CreateStockItemRequest{SKU: "JUICE-1", Name: "Juice", Quantity: 8, UnitCost: decimal.NewFromInt(700), UnitPrice: decimal.NewFromInt(1000)})

	name := "Mango juice"
	price := decimal.NewFromInt(1200)
	threshold := 10
	inactive := false
	got, err := f.items.Update(ctx, f.shopID, item.ID, appinventory.UpdateStockItemRequest{
		Name:             &name,
		UnitPrice:        &price,
		ReorderThreshold: &threshold,
		IsActive:         &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mango juice", got.Name)
	assert.True(t, price.Equal(got.UnitPrice))
	assert.Equal(t, 8, got.Quantity)
	assert.True(t, got.IsLowStock)
	assert.False(t, got.IsActive)
	assert.Greater(t, got.Version, item.Version)

	empty := " "
	_, err = f.items.Update(ctx, f.shopID, item.ID, appinventory.UpdateStockItemRequest{Name: &empty})
	assert.Error(t, err)

	low, err := f.items.LowStock(ctx, f.shopID)
	require.NoError(t, err)
	assert.Empty(t, low, "inactive items are not reported")
}

func TestStockItemService_ListAndLowStock(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture(t)
	f.create(t, appinventory.CreateStockItemRequest{SKU: "A-1", Name: "Apple juice", Quantity: 1, ReorderThreshold: 5})
	f.create(t, appinventory.CreateStockItemRequest{SKU: "B-1", Name: "Beer", Quantity: 50, ReorderThreshold: 5})
	f.create(t, appinventory.CreateStockItemRequest{Kind: "wholesale", SKU: "C-1", Name: "Cola crate", Quantity: 5, ReorderThreshold: 5, UnitsPerCarton: 24})

	items, total, err := f.items.List(ctx, f.shopID, appinventory.StockItemListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "Apple juice", items[0].Name)

	_, total, err = f.items.List(ctx, f.shopID, appinventory.StockItemListFilter{Kind: "wholesale"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	items, _, err = f.items.List(ctx, f.shopID, appinventory.StockItemListFilter{Search: "beer"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B-1", items[0].SKU)

	low, err := f.items.LowStock(ctx, f.shopID)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "A-1", low[0].SKU)
	assert.Equal(t, "C-1", low[1].SKU)
}

func TestStockItemService_DeleteRejectsReferencedItems(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture(t)
	used := f.create(t, appinventory.CreateStockItemRequest{SKU: "USED-1", Name: "Used", Quantity: 5})
	unused := f.create(t, appinventory.CreateStockItemRequest{SKU: "FREE-1", Name: "Free", Quantity: 5})
	customer := testutil.SeedCustomer(t, f.db, f.shopID, "Asha", "0712345678")

	debt, err := finance.NewDebt(f.shopID, customer.ID, used.ID, 1, decimal.NewFromInt(100), time.Now(), "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormDebtRepository(f.db).Save(ctx, debt))

	err = f.items.Delete(ctx, f.shopID, used.ID)
	assert.ErrorIs(t, err, shared.ErrInUse)
	_, err = f.items.GetByID(ctx, f.shopID, used.ID)
	assert.NoError(t, err)

	require.NoError(t, f.items.Delete(ctx, f.shopID, unused.ID))
	_, err = f.items.GetByID(ctx, f.shopID, unused.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
