package persistence

import (
	"context"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// gormRepositories hands out repositories bound to one connection or transaction
type gormRepositories struct {
	db *gorm.DB
}

// NewRepositories returns repositories bound to db. Outside a transaction
// each call runs on its own.
func NewRepositories(db *gorm.DB) uow.Repositories {
	return &gormRepositories{db: db}
}

func (r *gormRepositories) Shops() shop.Repository { return NewGormShopRepository(r.db) }

func (r *gormRepositories) StockItems() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.db)
}

func (r *gormRepositories) Categories() inventory.CategoryRepository {
	return NewGormCategoryRepository(r.db)
}

func (r *gormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.db)
}

func (r *gormRepositories) Sales() trade.SaleRepository { return NewGormSaleRepository(r.db) }

func (r *gormRepositories) Debts() finance.DebtRepository { return NewGormDebtRepository(r.db) }

func (r *gormRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *gormRepositories) Expenditures() finance.ExpenditureRepository {
	return NewGormExpenditureRepository(r.db)
}

var (
	_ uow.TransactionScope = (*GormTransactionScope)(nil)
	_ uow.Repositories     = (*gormRepositories)(nil)
)
