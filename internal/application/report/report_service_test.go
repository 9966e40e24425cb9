package report_test

import (
	"context"
	"testing"
	"time"

	appfinance "github.com/duka/backend/internal/application/finance"
	appinventory "github.com/duka/backend/internal/application/inventory"
	appreport "github.com/duka/backend/internal/application/report"
	apptrade "github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var eat = time.FixedZone("EAT", 3*3600)

type reportFixture struct {
	db           *gorm.DB
	shopID       uuid.UUID
	item         *inventory.StockItem
	customer     *partner.Customer
	sales        *apptrade.SaleService
	debts        *appfinance.DebtService
	expenditures *appfinance.ExpenditureService
	reports      *appreport.ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	ledger := appinventory.NewLedger(nil)
	s := testutil.SeedShop(t, db, shop.ShopTypeStationery)

	reports := appreport.NewReportService(repos, eat, nil)
	reports.SetClock(testutil.FixedClock(time.Date(2025, 3, 11, 12, 0, 0, 0, eat)))
	debts := appfinance.NewDebtService(scope, repos, ledger, eat, nil)
	debts.SetClock(testutil.FixedClock(time.Date(2025, 3, 11, 12, 0, 0, 0, eat)))

	return &reportFixture{
		db:           db,
		shopID:       s.ID,
		item:         testutil.SeedStockItem(t, db, s.ID, "SODA-1", "100", "60", 50),
		customer:     testutil.SeedCustomer(t, db, s.ID, "Asha", "0712345678"),
		sales:        apptrade.NewSaleService(scope, repos, ledger, report.NewProfitAllocator(appreport.NewRepositoryCostSource(repos), nil), eat, nil),
		debts:        debts,
		expenditures: appfinance.NewExpenditureService(repos.Expenditures(), eat, nil),
		reports:      reports,
	}
}

func (f *reportFixture) sell(t *testing.T, at time.Time, qty int, paid bool) *apptrade.SaleResponse {
	t.Helper()
	sale, err := f.sales.CreateSale(context.Background(), f.shopID, apptrade.CreateSaleRequest{
		SaleDate: &at,
		IsPaid:   &paid,
		Items:    []apptrade.AddLineItemRequest{{StockItemID: f.item.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	return sale
}

func (f *reportFixture) spend(t *testing.T, date string, amount int64) {
	t.Helper()
	_, err := f.expenditures.Create(context.Background(), f.shopID, appfinance.CreateExpenditureRequest{
		Category:    "transport",
		Amount:      decimal.NewFromInt(amount),
		ExpenseDate: date,
	})
	require.NoError(t, err)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestReportService_Daily(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	// 23:30 UTC on the 10th is the 11th in Dar es Salaam
	f.sell(t, time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), 2, true)
	f.sell(t, time.Date(2025, 3, 11, 10, 0, 0, 0, eat), 1, true)
	f.sell(t, time.Date(2025, 3, 11, 11, 0, 0, 0, eat), 5, false)
	f.sell(t, time.Date(2025, 3, 5, 9, 0, 0, 0, eat), 1, true)
	f.spend(t, "2025-03-11", 200)
	f.spend(t, "2025-03-09", 50)

	resp, err := f.reports.Daily(ctx, f.shopID, appreport.DailyReportFilter{From: "2025-03-01", To: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, resp.Days, 3)

	day := resp.Days[0]
	assert.Equal(t, "2025-03-11", day.Date)
	assert.Equal(t, 2, day.SalesCount, "unpaid sales are not revenue")
	assert.True(t, dec(300).Equal(day.Revenue), day.Revenue.String())
	assert.True(t, dec(180).Equal(day.Cost), day.Cost.String())
	assert.True(t, dec(200).Equal(day.Expenditure))
	assert.True(t, dec(100).Equal(day.NetRevenue))
	assert.True(t, dec(-80).Equal(day.Profit), day.Profit.String())

	expenseOnly := resp.Days[1]
	assert.Equal(t, "2025-03-09", expenseOnly.Date)
	assert.True(t, expenseOnly.Revenue.IsZero())
	assert.Zero(t, expenseOnly.SalesCount)
	assert.True(t, dec(-50).Equal(expenseOnly.NetRevenue))

	assert.Equal(t, "2025-03-05", resp.Days[2].Date)
	assert.True(t, dec(400).Equal(resp.Totals.Revenue))
	assert.True(t, dec(250).Equal(resp.Totals.Expenditure))
	assert.Equal(t, 3, resp.Totals.SalesCount)

	t.Run("default view shows the two most recent dates", func(t *testing.T) {
		resp, err := f.reports.Daily(ctx, f.shopID, appreport.DailyReportFilter{})
		require.NoError(t, err)
		require.Len(t, resp.Days, 2)
		assert.Equal(t, "2025-03-11", resp.Days[0].Date)
		assert.Equal(t, "2025-03-09", resp.Days[1].Date)
		assert.True(t, dec(300).Equal(resp.Totals.Revenue), "totals cover only the shown days")
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := f.reports.Daily(ctx, f.shopID, appreport.DailyReportFilter{From: "2025-03-31", To: "2025-03-01"})
		assert.Error(t, err)
	})
}

func TestReportService_SettlementProfitMatchesAllocator(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	debt, err := f.debts.CreateDebt(ctx, f.shopID, appfinance.CreateDebtRequest{
		CustomerID:  f.customer.ID,
		StockItemID: f.item.ID,
		Quantity:    2,
		DueDate:     "2025-03-20",
	})
	require.NoError(t, err)
	payment, err := f.debts.RecordPayment(ctx, f.shopID, debt.ID, appfinance.RecordPaymentRequest{Amount: dec(100)})
	require.NoError(t, err)

	resp, err := f.reports.Daily(ctx, f.shopID, appreport.DailyReportFilter{From: "2025-03-11", To: "2025-03-11"})
	require.NoError(t, err)
	require.Len(t, resp.Days, 1)
	assert.True(t, dec(100).Equal(resp.Days[0].Revenue))
	assert.True(t, dec(40).Equal(resp.Days[0].Profit), resp.Days[0].Profit.String())
	assert.True(t, dec(60).Equal(resp.Days[0].Cost))

	profit, err := f.reports.SaleProfit(ctx, f.shopID, payment.SettlementSale.ID)
	require.NoError(t, err)
	assert.True(t, profit.IsSettlement)
	assert.True(t, dec(40).Equal(profit.Profit))
	assert.True(t, dec(60).Equal(profit.Cost))
}

func TestReportService_Monthly(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	f.sell(t, time.Date(2025, 2, 28, 22, 0, 0, 0, time.UTC), 1, true) // 1 March locally
	f.sell(t, time.Date(2025, 2, 27, 10, 0, 0, 0, eat), 1, true)
	f.sell(t, time.Date(2025, 3, 20, 10, 0, 0, 0, eat), 3, true)

	resp, err := f.reports.Monthly(ctx, f.shopID, appreport.MonthlyReportFilter{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", resp.From)
	assert.Equal(t, "2025-03-31", resp.To)
	require.Len(t, resp.Days, 2)
	assert.True(t, dec(400).Equal(resp.Totals.Revenue))

	current, err := f.reports.Monthly(ctx, f.shopID, appreport.MonthlyReportFilter{})
	require.NoError(t, err)
	assert.True(t, resp.Totals.Revenue.Equal(current.Totals.Revenue))
	assert.Equal(t, resp.Totals.SalesCount, current.Totals.SalesCount)

	feb, err := f.reports.Monthly(ctx, f.shopID, appreport.MonthlyReportFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	require.Len(t, feb.Days, 1)
	assert.Equal(t, "2025-02-27", feb.Days[0].Date)
}

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	require.NoError(t, f.db.Model(&inventory.StockItem{}).Where("id = ?", f.item.ID).Update("reorder_threshold", 45).Error)

	f.sell(t, time.Date(2025, 3, 11, 9, 0, 0, 0, eat), 2, true)
	f.sell(t, time.Date(2025, 3, 2, 9, 0, 0, 0, eat), 3, true)
	f.sell(t, time.Date(2025, 2, 2, 9, 0, 0, 0, eat), 1, true)
	f.spend(t, "2025-03-11", 50)
	f.spend(t, "2025-03-03", 25)

	late, err := f.debts.CreateDebt(ctx, f.shopID, appfinance.CreateDebtRequest{
		CustomerID:  f.customer.ID,
		StockItemID: f.item.ID,
		Quantity:    1,
		DueDate:     "2025-03-08",
	})
	require.NoError(t, err)

	resp, err := f.reports.Dashboard(ctx, f.shopID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", resp.Date)

	assert.True(t, dec(200).Equal(resp.Today.Revenue))
	assert.True(t, dec(50).Equal(resp.Today.Expenditure))
	assert.True(t, dec(150).Equal(resp.Today.NetRevenue))
	assert.True(t, dec(500).Equal(resp.Month.Revenue))
	assert.True(t, dec(75).Equal(resp.Month.Expenditure))
	assert.Equal(t, 2, resp.Month.SalesCount)

	require.Len(t, resp.LowStock, 1, "50 - 6 - 1 = 43 is below the threshold of 45")
	assert.Equal(t, 43, resp.LowStock[0].Quantity)

	require.Len(t, resp.OverdueDebts, 1)
	assert.Equal(t, late.ID, resp.OverdueDebts[0].ID)
	assert.Equal(t, "Asha", resp.OverdueDebts[0].CustomerName)
	assert.Equal(t, 3, resp.OverdueDebts[0].DaysOverdue)
	assert.True(t, dec(100).Equal(resp.OutstandingTotal))

	assert.Len(t, resp.RecentSales, 3)
}

func TestReportService_SaleProfit(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)
	sale := f.sell(t, time.Date(2025, 3, 11, 9, 0, 0, 0, eat), 2, true)

	resp, err := f.reports.SaleProfit(ctx, f.shopID, sale.ID)
	require.NoError(t, err)
	assert.True(t, dec(200).Equal(resp.Total))
	assert.True(t, dec(80).Equal(resp.Profit))
	assert.True(t, dec(120).Equal(resp.Cost))
	assert.False(t, resp.IsSettlement)

	_, err = f.reports.SaleProfit(ctx, f.shopID, uuid.New())
	assert.Error(t, err)
}
