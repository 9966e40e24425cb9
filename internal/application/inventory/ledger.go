package inventory

import (
	"context"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reasons recorded with ledger movements
const (
	ReasonSaleLine   = "sale_line"
	ReasonSaleDelete = "sale_delete"
	ReasonDebt       = "debt"
	ReasonDebtDelete = "debt_delete"
	ReasonRestock    = "restock"
	ReasonStockCount = "stock_count"
)

// Ledger is the single path through which on-hand quantities change.
// It always runs inside the caller's transaction and locks the item row
// before applying a delta.
type Ledger struct {
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewLedger creates a new Ledger
func NewLedger(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{logger: logger}
}

// SetBusinessMetrics sets the business metrics collector
func (l *Ledger) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	l.businessMetrics = bm
}

// ApplyDelta locks the item and applies a signed quantity change to it.
// Zero deltas are no-ops and return nil.
func (l *Ledger) ApplyDelta(ctx context.Context, repos uow.Repositories, shopID, itemID uuid.UUID, delta int, reason string) (*inventory.StockItem, error) {
	if delta == 0 {
		return nil, nil
	}
	item, err := repos.StockItems().FindByIDForUpdate(ctx, shopID, itemID)
	if err != nil {
		return nil, err
	}
	if err := l.Apply(ctx, repos, item, delta, reason); err != nil {
		return nil, err
	}
	return item, nil
}

// Apply applies a delta to an item the caller has already locked
func (l *Ledger) Apply(ctx context.Context, repos uow.Repositories, item *inventory.StockItem, delta int, reason string) error {
	if delta == 0 {
		return nil
	}
	before := item.OnHandQuantity
	if _, err := item.ApplyDelta(delta); err != nil {
		return err
	}
	if err := repos.StockItems().Save(ctx, item); err != nil {
		return err
	}

	l.logger.Info("Stock adjusted",
		zap.String("shop_id", item.ShopID.String()),
		zap.String("stock_item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.Int("delta", delta),
		zap.Int("before", before),
		zap.Int("after", item.OnHandQuantity),
		zap.String("reason", reason),
	)
	if l.businessMetrics != nil {
		l.businessMetrics.RecordStockAdjustment(ctx, item.ShopID, reason, delta)
	}
	return nil
}
