package uow

import (
	"context"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories.
// All repository operations made inside fn belong to one database transaction
// and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository.
// Inside TransactionScope.Execute all of them share the same transaction.
//
// Stock quantities change only through the inventory ledger, which locks the
// stock item row first. Sale totals are derived from the persisted lines at the
// end of each transaction that touched them.
type Repositories interface {
	Shops() shop.Repository
	StockItems() inventory.StockItemRepository
	Categories() inventory.CategoryRepository
	Customers() partner.CustomerRepository
	Sales() trade.SaleRepository
	Debts() finance.DebtRepository
	Payments() finance.PaymentRepository
	Expenditures() finance.ExpenditureRepository
}
