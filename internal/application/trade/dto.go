package trade

import (
	"time"

	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest represents a request to create a sale.
// Lines may be added in the same request or later.
type CreateSaleRequest struct {
	CustomerID    *uuid.UUID           `json:"customer_id"`
	SaleDate      *time.Time           `json:"sale_date"`
	IsPaid        *bool                `json:"is_paid"`
	PaymentMethod string               `json:"payment_method" binding:"omitempty,oneof=cash card bank_transfer mobile_money credit"`
	Notes         string               `json:"notes" binding:"max=2000"`
	Items         []AddLineItemRequest `json:"items" binding:"omitempty,dive"`
}

// AddLineItemRequest adds stock to a sale. A second add of the same item
// merges into the existing line.
type AddLineItemRequest struct {
	Kind        string          `json:"kind" binding:"omitempty,oneof=retail wholesale"`
	StockItemID uuid.UUID       `json:"stock_item_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// UpdateLineItemRequest changes a line. Omitted fields keep their value.
type UpdateLineItemRequest struct {
	Kind        *string          `json:"kind" binding:"omitempty,oneof=retail wholesale"`
	StockItemID *uuid.UUID       `json:"stock_item_id"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// MarkPaidRequest marks an unpaid sale as paid
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card bank_transfer mobile_money"`
}

// BulkDeleteRequest deletes several sales at once
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=200"`
}

// SaleListFilter represents filter options for sale lists.
// Dates are local calendar dates (YYYY-MM-DD); both ends are inclusive.
type SaleListFilter struct {
	From          string     `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string     `form:"to" binding:"omitempty,datetime=2006-01-02"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=paid unpaid all"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	Search        string     `form:"search"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	StockItemID uuid.UUID       `json:"stock_item_id"`
	ItemName    string          `json:"item_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	ShopID        uuid.UUID          `json:"shop_id"`
	Reference     string             `json:"reference"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	SaleDate      time.Time          `json:"sale_date"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Profit        *decimal.Decimal   `json:"profit,omitempty"`
	IsPaid        bool               `json:"is_paid"`
	PaymentMethod string             `json:"payment_method"`
	Notes         string             `json:"notes,omitempty"`
	IsSettlement  bool               `json:"is_settlement"`
	SettledDebtID *uuid.UUID         `json:"settled_debt_id,omitempty"`
	Lines         []SaleLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ToSaleResponse converts a domain Sale to a response without profit or names
func ToSaleResponse(sale *trade.Sale) SaleResponse {
	response := SaleResponse{
		ID:            sale.ID,
		ShopID:        sale.ShopID,
		Reference:     sale.Reference(),
		CustomerID:    sale.CustomerID,
		SaleDate:      sale.SaleDate,
		TotalAmount:   sale.TotalAmount,
		IsPaid:        sale.IsPaid,
		PaymentMethod: string(sale.PaymentMethod),
		Notes:         sale.Notes,
		IsSettlement:  sale.IsSettlement(),
		SettledDebtID: sale.SettledDebtID,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
	}
	if len(sale.Lines) > 0 {
		response.Lines = make([]SaleLineResponse, len(sale.Lines))
		for i, line := range sale.Lines {
			response.Lines[i] = SaleLineResponse{
				ID:          line.ID,
				Kind:        string(line.TargetKind),
				StockItemID: line.StockItemID,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				LineTotal:   line.LineTotal,
			}
		}
	}
	return response
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	return responses
}

// BulkDeleteResponse reports how many sales were deleted
type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}
