package report

import (
	"context"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// RepositoryCostSource resolves profit inputs from the repositories
type RepositoryCostSource struct {
	repos uow.Repositories
}

var _ report.CostSource = (*RepositoryCostSource)(nil)

// NewRepositoryCostSource creates a cost source backed by the repositories
func NewRepositoryCostSource(repos uow.Repositories) *RepositoryCostSource {
	return &RepositoryCostSource{repos: repos}
}

// Sale loads a sale with its lines
func (c *RepositoryCostSource) Sale(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return c.repos.Sales().FindByID(ctx, id)
}

// Debt loads a debt
func (c *RepositoryCostSource) Debt(ctx context.Context, id uuid.UUID) (*finance.Debt, error) {
	debts, err := c.repos.Debts().FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(debts) == 0 {
		return nil, errNotFound(id)
	}
	return &debts[0], nil
}

// StockItem loads a stock item
func (c *RepositoryCostSource) StockItem(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	return c.repos.StockItems().FindByID(ctx, id)
}
