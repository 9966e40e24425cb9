package report

import (
	"context"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CostSource resolves the records a profit calculation needs.
// Sale must return the sale with its lines loaded.
type CostSource interface {
	Sale(ctx context.Context, id uuid.UUID) (*trade.Sale, error)
	Debt(ctx context.Context, id uuid.UUID) (*finance.Debt, error)
	StockItem(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error)
}

// ProfitAllocator derives the profit of a sale.
//
// Line sales earn total minus the current unit cost of every line. Settlement
// sales carry no lines, so they earn a share of the profit of the debt they
// paid, proportional to the payment. The allocator never fails: anything it
// cannot resolve counts as zero profit and is logged.
type ProfitAllocator struct {
	source CostSource
	logger *zap.Logger
}

// NewProfitAllocator creates a profit allocator
func NewProfitAllocator(source CostSource, logger *zap.Logger) *ProfitAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfitAllocator{source: source, logger: logger}
}

// Profit returns the profit of the sale, rounded to cents
func (a *ProfitAllocator) Profit(ctx context.Context, sale *trade.Sale) decimal.Decimal {
	switch {
	case sale.HasLines():
		return a.lineProfit(ctx, sale).Round(2)
	case sale.IsSettlement():
		return a.settlementProfit(ctx, sale).Round(2)
	default:
		return decimal.Zero
	}
}

// Cost returns total minus profit, so cost and profit always add up to revenue
func (a *ProfitAllocator) Cost(ctx context.Context, sale *trade.Sale) decimal.Decimal {
	return sale.TotalAmount.Sub(a.Profit(ctx, sale))
}

// Fact reduces a sale to the figures the daily summary aggregates
func (a *ProfitAllocator) Fact(ctx context.Context, sale *trade.Sale) SaleFact {
	return SaleFact{
		SaleID:   sale.ID,
		SaleDate: sale.SaleDate,
		Total:    sale.TotalAmount,
		Cost:     a.Cost(ctx, sale),
	}
}

func (a *ProfitAllocator) lineProfit(ctx context.Context, sale *trade.Sale) decimal.Decimal {
	cost := decimal.Zero
	for i := range sale.Lines {
		line := &sale.Lines[i]
		item, err := a.source.StockItem(ctx, line.StockItemID)
		if err != nil {
			a.logger.Warn("Cost basis unavailable for sale line",
				zap.String("sale_id", sale.ID.String()),
				zap.String("stock_item_id", line.StockItemID.String()),
				zap.Error(err))
			return decimal.Zero
		}
		cost = cost.Add(line.CostOf(item.UnitCost))
	}
	return sale.TotalAmount.Sub(cost)
}

func (a *ProfitAllocator) settlementProfit(ctx context.Context, sale *trade.Sale) decimal.Decimal {
	debt, err := a.source.Debt(ctx, *sale.SettledDebtID)
	if err != nil {
		a.logger.Warn("Settled debt unavailable for profit allocation",
			zap.String("sale_id", sale.ID.String()),
			zap.String("debt_id", sale.SettledDebtID.String()),
			zap.Error(err))
		return decimal.Zero
	}
	ratio := debt.PaymentRatio(sale.TotalAmount)
	if ratio.IsZero() {
		return decimal.Zero
	}

	// An originating sale without lines is never recursed into.
	if debt.OriginatingSaleID != nil && *debt.OriginatingSaleID != sale.ID {
		origin, err := a.source.Sale(ctx, *debt.OriginatingSaleID)
		if err == nil && origin.HasLines() {
			return a.lineProfit(ctx, origin).Mul(ratio)
		}
	}

	item, err := a.source.StockItem(ctx, debt.StockItemID)
	if err != nil {
		a.logger.Warn("Debt stock item unavailable for profit allocation",
			zap.String("sale_id", sale.ID.String()),
			zap.String("debt_id", debt.ID.String()),
			zap.Error(err))
		return decimal.Zero
	}
	debtCost := item.UnitCost.Mul(decimal.NewFromInt(int64(debt.Quantity)))
	return debt.Amount.Sub(debtCost).Mul(ratio)
}
