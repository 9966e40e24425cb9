package handler_test

import (
	"net/http"
	"strings"
	"testing"

	appfinance "github.com/duka/backend/internal/application/finance"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenditureHandler_CRUD(t *testing.T) {
	a := newAPI(t)

	created := data[appfinance.ExpenditureResponse](t, a.do(t, http.MethodPost, "/expenditures", map[string]any{
		"category":     "rent",
		"description":  "March rent",
		"amount":       "150000",
		"expense_date": "2026-03-01",
	}), http.StatusCreated)
	assert.Equal(t, "rent", created.Category)
	assert.Equal(t, "2026-03-01", created.ExpenseDate)

	updated := data[appfinance.ExpenditureResponse](t, a.do(t, http.MethodPut, "/expenditures/"+created.ID.String(), map[string]any{
		"category":    "utilities",
		"description": "Power",
		"amount":      "40000",
	}), http.StatusOK)
	assert.Equal(t, "utilities", updated.Category)
	assert.Equal(t, "40000", updated.Amount.String())
	assert.Equal(t, "2026-03-01", updated.ExpenseDate)

	list, meta := dataList[appfinance.ExpenditureResponse](t, a.do(t, http.MethodGet, "/expenditures?from=2026-03-01&to=2026-03-31", nil))
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), meta.Total)

	list, _ = dataList[appfinance.ExpenditureResponse](t, a.do(t, http.MethodGet, "/expenditures?from=2026-04-01", nil))
	assert.Empty(t, list)

	w := a.do(t, http.MethodDelete, "/expenditures/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(t, http.MethodDelete, "/expenditures/"+created.ID.String(), nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestExpenditureHandler_Export(t *testing.T) {
	a := newAPI(t)
	for _, amount := range []string{"1000", "2500"} {
		data[appfinance.ExpenditureResponse](t, a.do(t, http.MethodPost, "/expenditures", map[string]any{
			"category": "transport", "amount": amount, "expense_date": "2026-03-02",
		}), http.StatusCreated)
	}

	w := a.do(t, http.MethodGet, "/expenditures/export", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	rows := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[0], "Date,Category,Description,Amount"))

	w = a.do(t, http.MethodGet, "/expenditures/export?format=doc", nil)
	testutil.AssertErrorCode(t, w, http.StatusBadRequest, "ERR_INVALID_FORMAT")
}

func TestExpenditureHandler_Rejections(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown category", http.MethodPost, "/expenditures", map[string]any{"category": "gifts", "amount": "10"},
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"bad date", http.MethodPost, "/expenditures", map[string]any{"amount": "10", "expense_date": "yesterday"},
			http.StatusBadRequest, "ERR_VALIDATION"},
		{"unknown expenditure", http.MethodPut, "/expenditures/" + uuid.NewString(), map[string]any{"amount": "10"},
			http.StatusNotFound, "ERR_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertErrorCode(t, a.do(t, tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}
}
