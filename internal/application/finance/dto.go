package finance

import (
	"time"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDebtRequest records stock handed to a customer on credit.
// A zero amount is filled in from the item's unit price.
type CreateDebtRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	StockItemID uuid.UUID       `json:"stock_item_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date" binding:"required,datetime=2006-01-02"`
	Description string          `json:"description" binding:"max=1000"`
}

// RecordPaymentRequest records a payment against a debt
type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash card bank_transfer mobile_money"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// DebtListFilter represents filter options for debt lists
type DebtListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=pending partial paid overdue"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// DebtResponse represents a debt in API responses.
// Status has the overdue overlay applied.
type DebtResponse struct {
	ID                uuid.UUID         `json:"id"`
	Reference         string            `json:"reference"`
	ShopID            uuid.UUID         `json:"shop_id"`
	CustomerID        uuid.UUID         `json:"customer_id"`
	CustomerName      string            `json:"customer_name,omitempty"`
	CustomerPhone     string            `json:"customer_phone,omitempty"`
	StockItemID       uuid.UUID         `json:"stock_item_id"`
	ItemName          string            `json:"item_name,omitempty"`
	Quantity          int               `json:"quantity"`
	Amount            decimal.Decimal   `json:"amount"`
	PaidAmount        decimal.Decimal   `json:"paid_amount"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount"`
	DueDate           string            `json:"due_date"`
	Status            string            `json:"status"`
	StatusLabel       string            `json:"status_label"`
	IsOverdue         bool              `json:"is_overdue"`
	DaysOverdue       int               `json:"days_overdue,omitempty"`
	OriginatingSaleID *uuid.UUID        `json:"originating_sale_id,omitempty"`
	Description       string            `json:"description,omitempty"`
	AutoCreated       bool              `json:"auto_created"`
	Payments          []PaymentResponse `json:"payments,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ToDebtResponse converts a domain Debt to a response as seen on today
func ToDebtResponse(d *finance.Debt, today time.Time) DebtResponse {
	status := d.DisplayStatus(today)
	return DebtResponse{
		ID:                d.ID,
		Reference:         d.Reference(),
		ShopID:            d.ShopID,
		CustomerID:        d.CustomerID,
		StockItemID:       d.StockItemID,
		Quantity:          d.Quantity,
		Amount:            d.Amount,
		PaidAmount:        d.PaidAmount,
		RemainingAmount:   d.RemainingAmount(),
		DueDate:           shared.DateKey(d.DueDate),
		Status:            string(status),
		StatusLabel:       status.DisplayName(),
		IsOverdue:         d.IsOverdue(today),
		DaysOverdue:       d.DaysOverdue(today),
		OriginatingSaleID: d.OriginatingSaleID,
		Description:       d.Description,
		AutoCreated:       d.AutoCreated,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID       `json:"id"`
	DebtID           uuid.UUID       `json:"debt_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentDate      time.Time       `json:"payment_date"`
	PaymentMethod    string          `json:"payment_method"`
	Notes            string          `json:"notes,omitempty"`
	SettlementSaleID *uuid.UUID      `json:"settlement_sale_id,omitempty"`
}

// ToPaymentResponse converts a domain Payment to a response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		DebtID:           p.DebtID,
		Amount:           p.Amount,
		PaymentDate:      p.PaymentDate,
		PaymentMethod:    string(p.PaymentMethod),
		Notes:            p.Notes,
		SettlementSaleID: p.SettlementSaleID,
	}
}

// SettlementResponse summarizes the sale synthesized for a payment
type SettlementResponse struct {
	ID            uuid.UUID       `json:"id"`
	Reference     string          `json:"reference"`
	SaleDate      time.Time       `json:"sale_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	SettledDebtID uuid.UUID       `json:"settled_debt_id"`
}

// ToSettlementResponse converts a settlement sale to a response
func ToSettlementResponse(s *trade.Sale) SettlementResponse {
	return SettlementResponse{
		ID:            s.ID,
		Reference:     s.Reference(),
		SaleDate:      s.SaleDate,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: string(s.PaymentMethod),
		Notes:         s.Notes,
		SettledDebtID: *s.SettledDebtID,
	}
}

// RecordPaymentResponse is the result of recording a payment
type RecordPaymentResponse struct {
	Payment        PaymentResponse    `json:"payment"`
	SettlementSale SettlementResponse `json:"settlement_sale"`
	Debt           DebtResponse       `json:"debt"`
}

// OutstandingResponse reports the total still owed to a shop
type OutstandingResponse struct {
	Total decimal.Decimal `json:"total"`
}

// CreateExpenditureRequest records money spent
type CreateExpenditureRequest struct {
	Category    string          `json:"category" binding:"omitempty,oneof=supplies rent utilities salaries transport maintenance other"`
	Description string          `json:"description" binding:"max=255"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate string          `json:"expense_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateExpenditureRequest replaces an expenditure's details
type UpdateExpenditureRequest = CreateExpenditureRequest

// ExpenditureListFilter represents filter options for expenditure lists
type ExpenditureListFilter struct {
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Category string `form:"category" binding:"omitempty,oneof=supplies rent utilities salaries transport maintenance other"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ExpenditureResponse represents an expenditure in API responses
type ExpenditureResponse struct {
	ID            uuid.UUID       `json:"id"`
	Category      string          `json:"category"`
	CategoryLabel string          `json:"category_label"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   string          `json:"expense_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToExpenditureResponse converts a domain Expenditure to a response
func ToExpenditureResponse(e *finance.Expenditure) ExpenditureResponse {
	return ExpenditureResponse{
		ID:            e.ID,
		Category:      string(e.Category),
		CategoryLabel: e.Category.DisplayName(),
		Description:   e.Description,
		Amount:        e.Amount,
		ExpenseDate:   shared.DateKey(e.ExpenseDate),
		CreatedAt:     e.CreatedAt,
	}
}
