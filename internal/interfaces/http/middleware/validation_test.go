package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/duka/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedItem struct {
	SKU      string `json:"sku" binding:"required,sku"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Quantity int    `json:"quantity" binding:"gte=0"`
	Kind     string `json:"kind" binding:"required,oneof=retail wholesale"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validatedItem
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_Accepts(t *testing.T) {
	router := validationRouter()

	for _, body := range []string{
		`{"sku":"BOOK-1","kind":"retail"}`,
		`{"sku":"soda.500ml","phone":"0712 345 678","kind":"wholesale","quantity":3}`,
		`{"sku":"X","phone":"+254712345678","kind":"retail"}`,
	} {
		w := postJSON(router, body)
		assert.Equal(t, http.StatusOK, w.Code, body)
	}
}

func TestValidation_Rejects(t *testing.T) {
	router := validationRouter()

	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"missing sku", `{"kind":"retail"}`, "sku", "This field is required"},
		{"sku with spaces", `{"sku":"BOOK 1","kind":"retail"}`, "sku", "SKU may contain letters, digits, dot, dash and underscore"},
		{"short phone", `{"sku":"A","phone":"0712","kind":"retail"}`, "phone", "Invalid phone number"},
		{"bad kind", `{"sku":"A","kind":"bulk"}`, "kind", "Must be one of: retail wholesale"},
		{"negative quantity", `{"sku":"A","kind":"retail","quantity":-1}`, "quantity", "Must be greater than or equal to 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			assert.Equal(t, tt.message, resp.Error.Details[0].Message)
		})
	}
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Empty(t, resp.Error.Details)
}
