package finance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	appfinance "github.com/duka/backend/internal/application/finance"
	appinventory "github.com/duka/backend/internal/application/inventory"
	appreport "github.com/duka/backend/internal/application/report"
	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var eat = time.FixedZone("EAT", 3*3600)

type debtFixture struct {
	db       *gorm.DB
	repos    uow.Repositories
	svc      *appfinance.DebtService
	shopID   uuid.UUID
	item     *inventory.StockItem
	customer *partner.Customer
}

func newDebtFixture(t *testing.T) *debtFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	svc := appfinance.NewDebtService(persistence.NewGormTransactionScope(db), repos, appinventory.NewLedger(nil), eat, nil)
	svc.SetClock(testutil.FixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, eat)))

	s := testutil.SeedShop(t, db, shop.ShopTypeStationery)
	return &debtFixture{
		db:       db,
		repos:    repos,
		svc:      svc,
		shopID:   s.ID,
		item:     testutil.SeedStockItem(t, db, s.ID, "SODA-1", "100", "60", 10),
		customer: testutil.SeedCustomer(t, db, s.ID, "Asha Juma", "0712345678"),
	}
}

func (f *debtFixture) createDebt(t *testing.T, qty int, amount int64, due string) *appfinance.DebtResponse {
	t.Helper()
	debt, err := f.svc.CreateDebt(context.Background(), f.shopID, appfinance.CreateDebtRequest{
		CustomerID:  f.customer.ID,
		StockItemID: f.item.ID,
		Quantity:    qty,
		Amount:      decimal.NewFromInt(amount),
		DueDate:     due,
	})
	require.NoError(t, err)
	return debt
}

func pay(amount int64) appfinance.RecordPaymentRequest {
	return appfinance.RecordPaymentRequest{Amount: decimal.NewFromInt(amount), PaymentMethod: "cash"}
}

func TestDebtService_CreateDebt_ResolvesAmount(t *testing.T) {
	tests := []struct {
		name   string
		qty    int
		amount int64
		want   int64
	}{
		{"blank amount uses unit price times quantity", 3, 0, 300},
		{"unit price with quantity is per unit", 3, 100, 300},
		{"explicit total is kept", 3, 250, 250},
		{"single unit at unit price", 1, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDebtFixture(t)
			debt := f.createDebt(t, tt.qty, tt.amount, "2025-03-20")
			assert.True(t, decimal.NewFromInt(tt.want).Equal(debt.Amount), debt.Amount.String())
			assert.Equal(t, string(finance.DebtStatusPending), debt.Status)
			assert.True(t, debt.PaidAmount.IsZero())
			assert.Equal(t, "Asha Juma", debt.CustomerName)
			assert.Equal(t, 10-tt.qty, testutil.ReloadStockItem(t, f.db, f.item.ID).OnHandQuantity)
		})
	}
}

func TestDebtService_CreateDebt_InsufficientStock(t *testing.T) {
	f := newDebtFixture(t)
	_, err := f.svc.CreateDebt(context.Background(), f.shopID, appfinance.CreateDebtRequest{
		CustomerID:  f.customer.ID,
		StockItemID: f.item.ID,
		Quantity:    11,
		DueDate:     "2025-03-20",
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, total, err := f.svc.ListDebts(context.Background(), f.shopID, appfinance.DebtListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 10, testutil.ReloadStockItem(t, f.db, f.item.ID).OnHandQuantity)
}

func TestDebtService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)
	debt := f.createDebt(t, 2, 0, "2025-03-20")

	first, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, appfinance.RecordPaymentRequest{
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: "mobile_money",
		Notes:         "M-Pesa",
	})
	require.NoError(t, err)
	assert.Equal(t, string(finance.DebtStatusPartial), first.Debt.Status)
	assert.True(t, decimal.NewFromInt(150).Equal(first.Debt.RemainingAmount))

	settlement := first.SettlementSale
	assert.True(t, decimal.NewFromInt(50).Equal(settlement.TotalAmount))
	assert.Equal(t, debt.ID, settlement.SettledDebtID)
	assert.Equal(t, "mobile_money", settlement.PaymentMethod)
	assert.True(t, strings.HasPrefix(settlement.Notes, "Payment for Debt #"+debt.Reference), settlement.Notes)
	assert.Contains(t, settlement.Notes, "M-Pesa")
	require.NotNil(t, first.Payment.SettlementSaleID)
	assert.Equal(t, settlement.ID, *first.Payment.SettlementSaleID)
	require.NotNil(t, first.Debt.OriginatingSaleID)
	assert.Equal(t, settlement.ID, *first.Debt.OriginatingSaleID)

	sale, err := f.repos.Sales().FindByIDForShop(ctx, f.shopID, settlement.ID)
	require.NoError(t, err)
	assert.True(t, sale.IsPaid)
	assert.Empty(t, sale.Lines)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, f.customer.ID, *sale.CustomerID)

	second, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(150))
	require.NoError(t, err)
	assert.Equal(t, string(finance.DebtStatusPaid), second.Debt.Status)
	assert.True(t, second.Debt.RemainingAmount.IsZero())
	assert.Equal(t, settlement.ID, *second.Debt.OriginatingSaleID, "the first link is never overwritten")

	payments, err := f.svc.ListPayments(ctx, f.shopID, debt.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	// stock moved once, at debt creation
	assert.Equal(t, 8, testutil.ReloadStockItem(t, f.db, f.item.ID).OnHandQuantity)
}

func TestDebtService_RecordPayment_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)
	debt := f.createDebt(t, 2, 0, "2025-03-20")
	_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(120))
	require.NoError(t, err)

	t.Run("overpayment", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(81))
		require.ErrorIs(t, err, shared.ErrDebtOverpayment)

		var overpay *finance.DebtOverpaymentError
		require.ErrorAs(t, err, &overpay)
		assert.True(t, decimal.NewFromInt(80).Equal(overpay.Remaining))
		assert.True(t, decimal.NewFromInt(81).Equal(overpay.Attempted))
		assert.Equal(t, "amount", overpay.Field())
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(0))
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_AMOUNT", ""))
		_, err = f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(-5))
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_AMOUNT", ""))
	})

	t.Run("credit is not a way to pay", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, appfinance.RecordPaymentRequest{Amount: decimal.NewFromInt(10), PaymentMethod: "credit"})
		assert.Error(t, err)
	})

	t.Run("unknown debt", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, f.shopID, uuid.New(), pay(10))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	got, err := f.svc.GetDebt(ctx, f.shopID, debt.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(got.PaidAmount), "rejected payments write nothing")
	assert.Len(t, got.Payments, 1)

	settlements, err := f.repos.Sales().FindBySettledDebt(ctx, debt.ID)
	require.NoError(t, err)
	assert.Len(t, settlements, 1)
}

func TestDebtService_SettlementProfitIsAllocated(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)
	// cost 60, price 100, quantity 2
	debt := f.createDebt(t, 2, 0, "2025-03-20")

	_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(100))
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(100))
	require.NoError(t, err)

	allocator := report.NewProfitAllocator(appreport.NewRepositoryCostSource(f.repos), nil)
	settlements, err := f.repos.Sales().FindBySettledDebt(ctx, debt.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 2)

	total := decimal.Zero
	for i := range settlements {
		profit := allocator.Profit(ctx, &settlements[i])
		assert.True(t, decimal.NewFromInt(40).Equal(profit), profit.String())
		total = total.Add(profit)
	}
	assert.True(t, decimal.NewFromInt(80).Equal(total))
}

func TestDebtService_StatusIsMonotonic(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)
	debt := f.createDebt(t, 3, 0, "2025-03-20")

	seen := []string{debt.Status}
	for _, amount := range []int64{100, 100, 100} {
		resp, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(amount))
		require.NoError(t, err)
		seen = append(seen, resp.Debt.Status)
	}
	assert.Equal(t, []string{"pending", "partial", "partial", "paid"}, seen)

	_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(1))
	assert.ErrorIs(t, err, shared.ErrDebtOverpayment)
}

func TestDebtService_Overdue(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)
	late := f.createDebt(t, 1, 0, "2025-03-05")
	f.createDebt(t, 1, 0, "2025-03-10")
	settled := f.createDebt(t, 1, 0, "2025-03-01")
	_, err := f.svc.RecordPayment(ctx, f.shopID, settled.ID, pay(100))
	require.NoError(t, err)

	overdue, err := f.svc.OverdueDebts(ctx, f.shopID)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Equal(t, "overdue", overdue[0].Status)
	assert.True(t, overdue[0].IsOverdue)
	assert.Equal(t, 5, overdue[0].DaysOverdue)

	listed, total, err := f.svc.ListDebts(ctx, f.shopID, appfinance.DebtListFilter{Status: "overdue"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, late.ID, listed[0].ID)

	outstanding, err := f.svc.OutstandingTotal(ctx, f.shopID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(outstanding), outstanding.String())
}

func TestDebtService_DeleteDebt(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)

	t.Run("manual debt hands stock back", func(t *testing.T) {
		debt := f.createDebt(t, 4, 0, "2025-03-20")
		assert.Equal(t, 6, testutil.ReloadStockItem(t, f.db, f.item.ID).OnHandQuantity)

		require.NoError(t, f.svc.DeleteDebt(ctx, f.shopID, debt.ID))
		assert.Equal(t, 10, testutil.ReloadStockItem(t, f.db, f.item.ID).OnHandQuantity)
		_, err := f.svc.GetDebt(ctx, f.shopID, debt.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("debt with payments is kept", func(t *testing.T) {
		debt := f.createDebt(t, 1, 0, "2025-03-20")
		_, err := f.svc.RecordPayment(ctx, f.shopID, debt.ID, pay(10))
		require.NoError(t, err)

		err = f.svc.DeleteDebt(ctx, f.shopID, debt.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, 9, testutil.ReloadStockItem(t, f.db, f.item.ID).OnHandQuantity)
	})
}

func TestDebtService_FixAutoDebtDueDates(t *testing.T) {
	ctx := context.Background()
	f := newDebtFixture(t)

	// 22:00 UTC on the 10th is the 11th in Dar es Salaam
	sale, err := trade.NewSale(f.shopID, &f.customer.ID, time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC), false, trade.PaymentMethodCredit, "")
	require.NoError(t, err)
	require.NoError(t, f.repos.Sales().Save(ctx, sale))

	debt, err := finance.NewAutoDebt(f.shopID, f.customer.ID, sale.ID, f.item.ID, 1, decimal.NewFromInt(100), sale.SaleDate, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17", shared.DateKey(debt.DueDate))
	require.NoError(t, f.repos.Debts().Save(ctx, debt))

	changed, err := f.svc.FixAutoDebtDueDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	fixed, err := f.repos.Debts().FindByIDForShop(ctx, f.shopID, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-18", shared.DateKey(fixed.DueDate))

	changed, err = f.svc.FixAutoDebtDueDates(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
