package report

import (
	"fmt"
	"time"

	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func errNotFound(id uuid.UUID) error {
	return fmt.Errorf("record %s: %w", id, shared.ErrNotFound)
}

// DailyReportFilter selects the dates of the daily report.
// Without a range only the most recent dates are returned.
type DailyReportFilter struct {
	From  string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To    string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=366"`
}

// MonthlyReportFilter selects a calendar month
type MonthlyReportFilter struct {
	Year  int `form:"year" binding:"omitempty,min=2000,max=2100"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// DaySummaryResponse holds one date of the daily report
type DaySummaryResponse struct {
	Date        string          `json:"date"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Expenditure decimal.Decimal `json:"expenditure"`
	NetRevenue  decimal.Decimal `json:"net_revenue"`
	Profit      decimal.Decimal `json:"profit"`
	SalesCount  int             `json:"sales_count"`
}

// TotalsResponse sums the figures of a report
type TotalsResponse struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Expenditure decimal.Decimal `json:"expenditure"`
	NetRevenue  decimal.Decimal `json:"net_revenue"`
	Profit      decimal.Decimal `json:"profit"`
	SalesCount  int             `json:"sales_count"`
	Days        int             `json:"days"`
}

// SummaryReportResponse is the daily or monthly report
type SummaryReportResponse struct {
	From   string               `json:"from,omitempty"`
	To     string               `json:"to,omitempty"`
	Days   []DaySummaryResponse `json:"days"`
	Totals TotalsResponse       `json:"totals"`
}

func toDaySummaryResponse(d report.DaySummary) DaySummaryResponse {
	return DaySummaryResponse{
		Date:        shared.DateKey(d.Date),
		Revenue:     d.Revenue,
		Cost:        d.Cost,
		Expenditure: d.Expenditure,
		NetRevenue:  d.NetRevenue,
		Profit:      d.Profit,
		SalesCount:  d.SalesCount,
	}
}

func toTotalsResponse(t report.Totals) TotalsResponse {
	return TotalsResponse{
		Revenue:     t.Revenue,
		Cost:        t.Cost,
		Expenditure: t.Expenditure,
		NetRevenue:  t.NetRevenue,
		Profit:      t.Profit,
		SalesCount:  t.SalesCount,
		Days:        t.Days,
	}
}

// PeriodFigures summarizes a dashboard period
type PeriodFigures struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Expenditure decimal.Decimal `json:"expenditure"`
	NetRevenue  decimal.Decimal `json:"net_revenue"`
	Profit      decimal.Decimal `json:"profit"`
	SalesCount  int             `json:"sales_count"`
}

// LowStockEntry is a stock item at or below its reorder threshold
type LowStockEntry struct {
	ID               uuid.UUID `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	ReorderThreshold int       `json:"reorder_threshold"`
}

// OverdueDebtEntry is an unpaid debt past its due date
type OverdueDebtEntry struct {
	ID              uuid.UUID       `json:"id"`
	Reference       string          `json:"reference"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         string          `json:"due_date"`
	DaysOverdue     int             `json:"days_overdue"`
}

// RecentSaleEntry is a recent paid sale
type RecentSaleEntry struct {
	ID           uuid.UUID       `json:"id"`
	Reference    string          `json:"reference"`
	SaleDate     time.Time       `json:"sale_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	IsSettlement bool            `json:"is_settlement"`
}

// DashboardResponse is the shop overview
type DashboardResponse struct {
	Date             string             `json:"date"`
	Today            PeriodFigures      `json:"today"`
	Month            PeriodFigures      `json:"month"`
	LowStock         []LowStockEntry    `json:"low_stock"`
	OverdueDebts     []OverdueDebtEntry `json:"overdue_debts"`
	OutstandingTotal decimal.Decimal    `json:"outstanding_total"`
	RecentSales      []RecentSaleEntry  `json:"recent_sales"`
}

// SaleProfitResponse is the profit breakdown of one sale
type SaleProfitResponse struct {
	SaleID       uuid.UUID       `json:"sale_id"`
	Reference    string          `json:"reference"`
	Total        decimal.Decimal `json:"total"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	IsSettlement bool            `json:"is_settlement"`
}
