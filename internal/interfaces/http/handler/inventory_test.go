package handler_test

import (
	"net/http"
	"testing"

	appinventory "github.com/duka/backend/internal/application/inventory"
	"github.com/duka/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryHandler_ItemLifecycle(t *testing.T) {
	a := newAPI(t)

	category := data[appinventory.CategoryResponse](t,
		a.do(t, http.MethodPost, "/inventory/categories", map[string]any{"name": "Pens"}), http.StatusCreated)

	created := data[appinventory.StockItemResponse](t, a.do(t, http.MethodPost, "/inventory/items", map[string]any{
		"kind":              "retail",
		"sku":               "PEN-BLUE",
		"name":              "Blue pen",
		"category_id":       category.ID,
		"quantity":          12,
		"unit_cost":         "300",
		"unit_price":        "500",
		"reorder_threshold": 5,
	}), http.StatusCreated)
	assert.Equal(t, 12, created.Quantity)
	assert.Equal(t, "200", created.UnitProfit.String())
	require.NotNil(t, created.CategoryID)

	got := data[appinventory.StockItemResponse](t, a.do(t, http.MethodGet, "/inventory/items/"+created.ID.String(), nil), http.StatusOK)
	assert.Equal(t, "PEN-BLUE", got.SKU)

	updated := data[appinventory.StockItemResponse](t, a.do(t, http.MethodPut, "/inventory/items/"+created.ID.String(),
		map[string]any{"unit_price": "550"}), http.StatusOK)
	assert.Equal(t, "550", updated.UnitPrice.String())

	restocked := data[appinventory.StockItemResponse](t, a.do(t, http.MethodPost, "/inventory/items/"+created.ID.String()+"/restock",
		map[string]any{"quantity": 8, "reason": "delivery"}), http.StatusOK)
	assert.Equal(t, 20, restocked.Quantity)

	adjusted := data[appinventory.StockItemResponse](t, a.do(t, http.MethodPost, "/inventory/items/"+created.ID.String()+"/adjust",
		map[string]any{"counted_quantity": 3, "reason": "stock take"}), http.StatusOK)
	assert.Equal(t, 3, adjusted.Quantity)
	assert.True(t, adjusted.IsLowStock)

	low := data[[]appinventory.StockItemResponse](t, a.do(t, http.MethodGet, "/inventory/items/low-stock", nil), http.StatusOK)
	require.Len(t, low, 1)
	assert.Equal(t, created.ID, low[0].ID)

	w := a.do(t, http.MethodDelete, "/inventory/items/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(t, http.MethodGet, "/inventory/items/"+created.ID.String(), nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestInventoryHandler_ListItems(t *testing.T) {
	a := newAPI(t)
	testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)
	testutil.SeedStockItem(t, a.db, a.shopID, "BOOK-1", "2000", "1500", 4)
	testutil.SeedStockItem(t, a.db, a.shopID, "BOOK-2", "2500", "1500", 4)

	items, meta := dataList[appinventory.StockItemResponse](t, a.do(t, http.MethodGet, "/inventory/items?page_size=2", nil))
	assert.Len(t, items, 2)
	require.NotNil(t, meta)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.TotalPages)

	items, meta = dataList[appinventory.StockItemResponse](t, a.do(t, http.MethodGet, "/inventory/items?search=BOOK", nil))
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), meta.Total)
}

func TestInventoryHandler_Rejections(t *testing.T) {
	a := newAPI(t)
	item := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"duplicate sku", http.MethodPost, "/inventory/items",
			map[string]any{"kind": "retail", "sku": "PEN-1", "name": "Pen", "unit_cost": "1", "unit_price": "2"},
			http.StatusConflict, "ERR_ALREADY_EXISTS"},
		{"bad sku", http.MethodPost, "/inventory/items",
			map[string]any{"kind": "retail", "sku": "pen 1", "name": "Pen", "unit_cost": "1", "unit_price": "2"},
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"unknown kind", http.MethodPost, "/inventory/items",
			map[string]any{"kind": "bulk", "sku": "PEN-2", "name": "Pen"},
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"malformed body", http.MethodPost, "/inventory/items", "not an object",
			http.StatusBadRequest, "ERR_INVALID_JSON"},
		{"bad id", http.MethodGet, "/inventory/items/not-a-uuid", nil,
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"zero restock", http.MethodPost, "/inventory/items/" + item.ID.String() + "/restock",
			map[string]any{"quantity": 0},
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"adjust without reason", http.MethodPost, "/inventory/items/" + item.ID.String() + "/adjust",
			map[string]any{"counted_quantity": 2},
			http.StatusBadRequest, "ERR_VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertErrorCode(t, a.do(t, tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}
}

func TestInventoryHandler_ItemInUseCannotBeDeleted(t *testing.T) {
	a := newAPI(t)
	item := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)

	w := a.do(t, http.MethodPost, "/sales", map[string]any{
		"items": []map[string]any{{"stock_item_id": item.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodDelete, "/inventory/items/"+item.ID.String(), nil)
	testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, "ERR_ITEM_IN_USE")
}

func TestInventoryHandler_ShopIsolation(t *testing.T) {
	a := newAPI(t)
	item := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)
	other := newAPIShop(t, a)

	w := testutil.PerformRequest(t, a.engine, http.MethodGet, "/api/v1/inventory/items/"+item.ID.String(), nil,
		map[string]string{"X-Shop-ID": other.String()})
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}
