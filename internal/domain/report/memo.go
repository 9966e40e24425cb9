package report

import (
	"context"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// MemoCostSource remembers lookups for the duration of one calculation.
// It is not safe for concurrent use.
type MemoCostSource struct {
	source CostSource
	sales  map[uuid.UUID]*trade.Sale
	debts  map[uuid.UUID]*finance.Debt
	items  map[uuid.UUID]*inventory.StockItem
}

var _ CostSource = (*MemoCostSource)(nil)

// NewMemoCostSource wraps source with a lookup cache
func NewMemoCostSource(source CostSource) *MemoCostSource {
	return &MemoCostSource{
		source: source,
		sales:  make(map[uuid.UUID]*trade.Sale),
		debts:  make(map[uuid.UUID]*finance.Debt),
		items:  make(map[uuid.UUID]*inventory.StockItem),
	}
}

func (m *MemoCostSource) Sale(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	if sale, ok := m.sales[id]; ok {
		return sale, nil
	}
	sale, err := m.source.Sale(ctx, id)
	if err != nil {
		return nil, err
	}
	m.sales[id] = sale
	return sale, nil
}

func (m *MemoCostSource) Debt(ctx context.Context, id uuid.UUID) (*finance.Debt, error) {
	if debt, ok := m.debts[id]; ok {
		return debt, nil
	}
	debt, err := m.source.Debt(ctx, id)
	if err != nil {
		return nil, err
	}
	m.debts[id] = debt
	return debt, nil
}

func (m *MemoCostSource) StockItem(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	item, err := m.source.StockItem(ctx, id)
	if err != nil {
		return nil, err
	}
	m.items[id] = item
	return item, nil
}

// Seed stores sales that are already loaded with their lines
func (m *MemoCostSource) Seed(sales []trade.Sale) {
	for i := range sales {
		m.sales[sales[i].ID] = &sales[i]
	}
}

// Memoized returns an allocator over a fresh cache of this allocator's
// source, seeded with sales. Use one per report or export.
func (a *ProfitAllocator) Memoized(sales []trade.Sale) *ProfitAllocator {
	memo := NewMemoCostSource(a.source)
	memo.Seed(sales)
	return &ProfitAllocator{source: memo, logger: a.logger}
}
