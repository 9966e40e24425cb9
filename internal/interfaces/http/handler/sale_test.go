package handler_test

import (
	"net/http"
	"strings"
	"testing"

	appfinance "github.com/duka/backend/internal/application/finance"
	apptrade "github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleHandler_LineItems(t *testing.T) {
	a := newAPI(t)
	pen := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)
	book := testutil.SeedStockItem(t, a.db, a.shopID, "BOOK-1", "2000", "1500", 5)

	sale := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales", map[string]any{
		"items": []map[string]any{{"stock_item_id": pen.ID, "quantity": 2}},
	}), http.StatusCreated)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "1000", sale.TotalAmount.String())
	assert.True(t, sale.IsPaid)
	assert.Equal(t, 8, testutil.ReloadStockItem(t, a.db, pen.ID).OnHandQuantity)

	sale = data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales/"+sale.ID.String()+"/items",
		map[string]any{"stock_item_id": book.ID, "quantity": 1}), http.StatusOK)
	require.Len(t, sale.Lines, 2)
	assert.Equal(t, "3000", sale.TotalAmount.String())

	var penLine uuid.UUID
	for _, line := range sale.Lines {
		if line.StockItemID == pen.ID {
			penLine = line.ID
		}
	}
	require.NotEqual(t, uuid.Nil, penLine)

	sale = data[apptrade.SaleResponse](t, a.do(t, http.MethodPut, "/sales/"+sale.ID.String()+"/items/"+penLine.String(),
		map[string]any{"quantity": 5}), http.StatusOK)
	assert.Equal(t, "4500", sale.TotalAmount.String())
	assert.Equal(t, 5, testutil.ReloadStockItem(t, a.db, pen.ID).OnHandQuantity)

	sale = data[apptrade.SaleResponse](t, a.do(t, http.MethodDelete, "/sales/"+sale.ID.String()+"/items/"+penLine.String(), nil), http.StatusOK)
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "2000", sale.TotalAmount.String())
	assert.Equal(t, 10, testutil.ReloadStockItem(t, a.db, pen.ID).OnHandQuantity)

	got := data[apptrade.SaleResponse](t, a.do(t, http.MethodGet, "/sales/"+sale.ID.String(), nil), http.StatusOK)
	assert.Equal(t, sale.ID, got.ID)
	require.NotNil(t, got.Profit)
	assert.Equal(t, "500", got.Profit.String())

	w := a.do(t, http.MethodDelete, "/sales/"+sale.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 5, testutil.ReloadStockItem(t, a.db, book.ID).OnHandQuantity)
}

func TestSaleHandler_InsufficientStock(t *testing.T) {
	a := newAPI(t)
	pen := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 2)

	w := a.do(t, http.MethodPost, "/sales", map[string]any{
		"items": []map[string]any{{"stock_item_id": pen.ID, "quantity": 3}},
	})
	testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, "ERR_INSUFFICIENT_STOCK")
	assert.Equal(t, 2, testutil.ReloadStockItem(t, a.db, pen.ID).OnHandQuantity)

	sales, meta := dataList[apptrade.SaleResponse](t, a.do(t, http.MethodGet, "/sales", nil))
	assert.Empty(t, sales)
	assert.Equal(t, int64(0), meta.Total)
}

func TestSaleHandler_UnpaidSaleCarriesDebtUntilMarkedPaid(t *testing.T) {
	a := newAPI(t)
	pen := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)
	customer := testutil.SeedCustomer(t, a.db, a.shopID, "Asha", "0712345678")

	sale := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales", map[string]any{
		"customer_id":    customer.ID,
		"payment_method": "credit",
		"items":          []map[string]any{{"stock_item_id": pen.ID, "quantity": 4}},
	}), http.StatusCreated)
	assert.False(t, sale.IsPaid)

	debts, _ := dataList[appfinance.DebtResponse](t, a.do(t, http.MethodGet, "/debts", nil))
	require.Len(t, debts, 1)
	assert.True(t, debts[0].AutoCreated)
	assert.Equal(t, "2000", debts[0].Amount.String())

	unpaid, _ := dataList[apptrade.SaleResponse](t, a.do(t, http.MethodGet, "/sales?payment_status=unpaid", nil))
	require.Len(t, unpaid, 1)

	paid := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales/"+sale.ID.String()+"/mark-paid",
		map[string]any{"payment_method": "mobile_money"}), http.StatusOK)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, "mobile_money", paid.PaymentMethod)

	debt := data[appfinance.DebtResponse](t, a.do(t, http.MethodGet, "/debts/"+debts[0].ID.String(), nil), http.StatusOK)
	assert.Equal(t, "paid", debt.Status)
	assert.True(t, debt.RemainingAmount.IsZero())
}

func TestSaleHandler_MarkPaidWithoutBody(t *testing.T) {
	a := newAPI(t)
	customer := testutil.SeedCustomer(t, a.db, a.shopID, "Juma", "")
	sale := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales", map[string]any{
		"customer_id": customer.ID,
		"is_paid":     false,
	}), http.StatusCreated)

	paid := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales/"+sale.ID.String()+"/mark-paid", nil), http.StatusOK)
	assert.True(t, paid.IsPaid)
}

func TestSaleHandler_BulkDelete(t *testing.T) {
	a := newAPI(t)
	pen := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		sale := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales", map[string]any{
			"items": []map[string]any{{"stock_item_id": pen.ID, "quantity": 1}},
		}), http.StatusCreated)
		ids = append(ids, sale.ID)
	}
	assert.Equal(t, 7, testutil.ReloadStockItem(t, a.db, pen.ID).OnHandQuantity)

	resp := data[apptrade.BulkDeleteResponse](t, a.do(t, http.MethodPost, "/sales/bulk-delete",
		map[string]any{"ids": ids[:2]}), http.StatusOK)
	assert.Equal(t, 2, resp.Deleted)
	assert.Equal(t, 9, testutil.ReloadStockItem(t, a.db, pen.ID).OnHandQuantity)

	w := a.do(t, http.MethodPost, "/sales/bulk-delete", map[string]any{"ids": []uuid.UUID{}})
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_VALIDATION")
}

func TestSaleHandler_ReceiptAndExport(t *testing.T) {
	a := newAPI(t)
	pen := testutil.SeedStockItem(t, a.db, a.shopID, "PEN-1", "500", "300", 10)
	sale := data[apptrade.SaleResponse](t, a.do(t, http.MethodPost, "/sales", map[string]any{
		"items": []map[string]any{{"stock_item_id": pen.ID, "quantity": 2}},
	}), http.StatusCreated)

	w := a.do(t, http.MethodGet, "/sales/"+sale.ID.String()+"/receipt", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Header().Get("Content-Disposition"), sale.Reference)
	assert.Contains(t, w.Body.String(), "Item PEN-1")

	w = a.do(t, http.MethodGet, "/sales/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	rows := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, rows, 2)
	assert.True(t, strings.HasPrefix(rows[0], "Reference,Date,Customer,Total,Profit"))
	assert.Contains(t, rows[1], sale.Reference)

	w = a.do(t, http.MethodGet, "/sales/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PK", w.Body.String()[:2])

	// without a browser the printable export is served as HTML
	w = a.do(t, http.MethodGet, "/sales/export?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<th>Profit</th>")
	assert.Contains(t, w.Body.String(), sale.Reference)

	w = a.do(t, http.MethodGet, "/sales/export?format=docx", nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_INVALID_FORMAT")
}

func TestSaleHandler_Rejections(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown sale", http.MethodGet, "/sales/" + uuid.NewString(), nil, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"bad payment method", http.MethodPost, "/sales", map[string]any{"payment_method": "barter"},
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"paid credit sale", http.MethodPost, "/sales", map[string]any{"payment_method": "credit", "is_paid": true},
			http.StatusBadRequest, "ERR_INVALID_PAYMENT_METHOD"},
		{"bad date filter", http.MethodGet, "/sales?from=19-10-2026", nil, http.StatusBadRequest, "ERR_VALIDATION"},
		{"bad line id", http.MethodDelete, "/sales/" + uuid.NewString() + "/items/x", nil,
			http.StatusBadRequest, "ERR_VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertErrorCode(t, a.do(t, tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}
}
