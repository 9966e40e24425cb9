package report

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentSalesLimit = 10

// ReportService aggregates sales and expenditures into reports.
// Revenue counts paid sales only; settlement sales carry the money received
// against debts.
type ReportService struct {
	repos           uow.Repositories
	source          report.CostSource
	location        *time.Location
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(repos uow.Repositories, location *time.Location, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &ReportService{
		repos:    repos,
		source:   NewRepositoryCostSource(repos),
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReportService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetClock overrides the time source
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// Daily returns per-date figures, newest first. Without a date range the
// most recent dates are returned.
func (s *ReportService) Daily(ctx context.Context, shopID uuid.UUID, filter DailyReportFilter) (*SummaryReportResponse, error) {
	from, to, err := shared.LocalDateRange(filter.From, filter.To, s.location)
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if from == nil && to == nil && limit == 0 {
		limit = report.DefaultRecentDays
	}

	days, err := s.summary(ctx, shopID, deref(from), deref(to), report.SummaryOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	response := buildSummaryResponse(days)
	response.From = filter.From
	response.To = filter.To
	return response, nil
}

// Monthly returns per-date figures of a calendar month; zero year or month
// means the current one
func (s *ReportService) Monthly(ctx context.Context, shopID uuid.UUID, filter MonthlyReportFilter) (*SummaryReportResponse, error) {
	now := s.now().In(s.location)
	year, month := filter.Year, time.Month(filter.Month)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.location)
	to := from.AddDate(0, 1, 0)

	days, err := s.summary(ctx, shopID, from, to, report.SummaryOptions{})
	if err != nil {
		return nil, err
	}
	response := buildSummaryResponse(days)
	response.From = shared.DateKey(from)
	response.To = shared.DateKey(to.AddDate(0, 0, -1))
	return response, nil
}

// Dashboard returns the shop overview for today and this month
func (s *ReportService) Dashboard(ctx context.Context, shopID uuid.UUID) (*DashboardResponse, error) {
	today := shared.LocalDate(s.now(), s.location)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.location)
	tomorrow := today.AddDate(0, 0, 1)

	days, err := s.summary(ctx, shopID, monthStart, tomorrow, report.SummaryOptions{})
	if err != nil {
		return nil, err
	}
	month := report.Sum(days)
	todayTotals := report.Sum(func(yield func(report.DaySummary) bool) {
		for d := range days {
			if d.Date.Equal(today) {
				yield(d)
				return
			}
		}
	})

	response := &DashboardResponse{
		Date:  shared.DateKey(today),
		Today: toPeriodFigures(todayTotals),
		Month: toPeriodFigures(month),
	}

	lowStock, err := s.repos.StockItems().FindLowStock(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock items: %w", err)
	}
	response.LowStock = make([]LowStockEntry, len(lowStock))
	for i, item := range lowStock {
		response.LowStock[i] = LowStockEntry{
			ID:               item.ID,
			SKU:              item.SKU,
			Name:             item.Name,
			Quantity:         item.OnHandQuantity,
			ReorderThreshold: item.ReorderThreshold,
		}
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordLowStockCount(ctx, shopID, int64(len(lowStock)))
	}

	overdue, err := s.repos.Debts().FindOverdue(ctx, shopID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue debts: %w", err)
	}
	response.OverdueDebts, err = s.overdueEntries(ctx, shopID, overdue, today)
	if err != nil {
		return nil, err
	}

	response.OutstandingTotal, err = s.repos.Debts().SumOutstanding(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding debts: %w", err)
	}

	recent, err := s.repos.Sales().FindRecentPaid(ctx, shopID, recentSalesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sales: %w", err)
	}
	response.RecentSales = make([]RecentSaleEntry, len(recent))
	for i := range recent {
		response.RecentSales[i] = RecentSaleEntry{
			ID:           recent[i].ID,
			Reference:    recent[i].Reference(),
			SaleDate:     recent[i].SaleDate,
			TotalAmount:  recent[i].TotalAmount,
			IsSettlement: recent[i].IsSettlement(),
		}
	}
	return response, nil
}

// SaleProfit returns the profit breakdown of one sale
func (s *ReportService) SaleProfit(ctx context.Context, shopID, saleID uuid.UUID) (*SaleProfitResponse, error) {
	sale, err := s.repos.Sales().FindByIDForShop(ctx, shopID, saleID)
	if err != nil {
		return nil, err
	}
	allocator := report.NewProfitAllocator(report.NewMemoCostSource(s.source), s.logger)
	profit := allocator.Profit(ctx, sale)
	return &SaleProfitResponse{
		SaleID:       sale.ID,
		Reference:    sale.Reference(),
		Total:        sale.TotalAmount,
		Cost:         sale.TotalAmount.Sub(profit),
		Profit:       profit,
		IsSettlement: sale.IsSettlement(),
	}, nil
}

// summary loads paid sales and expenditures in [from, to) and groups them by
// local date. Zero bounds leave that side open.
func (s *ReportService) summary(ctx context.Context, shopID uuid.UUID, from, to time.Time, opts report.SummaryOptions) (iter.Seq[report.DaySummary], error) {
	sales, err := s.repos.Sales().FindForReport(ctx, shopID, from, to, trade.PaymentStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales for report: %w", err)
	}
	expenditures, err := s.repos.Expenditures().FindInRange(ctx, shopID, civilOrZero(from), civilOrZero(to))
	if err != nil {
		return nil, fmt.Errorf("failed to load expenditures for report: %w", err)
	}

	memo := report.NewMemoCostSource(s.source)
	memo.Seed(sales)
	allocator := report.NewProfitAllocator(memo, s.logger)

	saleFacts := make([]report.SaleFact, len(sales))
	for i := range sales {
		saleFacts[i] = allocator.Fact(ctx, &sales[i])
	}
	expenseFacts := make([]report.ExpenseFact, len(expenditures))
	for i, e := range expenditures {
		expenseFacts[i] = report.ExpenseFact{Date: e.ExpenseDate, Amount: e.Amount}
	}
	return report.DailySummary(saleFacts, expenseFacts, s.location, opts), nil
}

func (s *ReportService) overdueEntries(ctx context.Context, shopID uuid.UUID, debts []finance.Debt, today time.Time) ([]OverdueDebtEntry, error) {
	ids := make([]uuid.UUID, 0, len(debts))
	for _, d := range debts {
		if !slices.Contains(ids, d.CustomerID) {
			ids = append(ids, d.CustomerID)
		}
	}
	customers, err := s.repos.Customers().FindByIDs(ctx, shopID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	names := make(map[uuid.UUID]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	entries := make([]OverdueDebtEntry, len(debts))
	for i := range debts {
		d := &debts[i]
		entries[i] = OverdueDebtEntry{
			ID:              d.ID,
			Reference:       d.Reference(),
			CustomerID:      d.CustomerID,
			CustomerName:    names[d.CustomerID],
			RemainingAmount: d.RemainingAmount(),
			DueDate:         shared.DateKey(d.DueDate),
			DaysOverdue:     d.DaysOverdue(today),
		}
	}
	return entries, nil
}

func buildSummaryResponse(days iter.Seq[report.DaySummary]) *SummaryReportResponse {
	response := &SummaryReportResponse{Days: make([]DaySummaryResponse, 0)}
	for d := range days {
		response.Days = append(response.Days, toDaySummaryResponse(d))
	}
	response.Totals = toTotalsResponse(report.Sum(days))
	return response
}

func toPeriodFigures(t report.Totals) PeriodFigures {
	return PeriodFigures{
		Revenue:     t.Revenue,
		Expenditure: t.Expenditure,
		NetRevenue:  t.NetRevenue,
		Profit:      t.Profit,
		SalesCount:  t.SalesCount,
	}
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func civilOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return finance.CivilDate(t)
}
