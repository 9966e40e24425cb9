package finance

import (
	"context"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtFilter narrows debt listings
type DebtFilter struct {
	shared.Filter
	// Status may be overdue, which is resolved against Today
	Status     DebtStatus
	CustomerID *uuid.UUID
	Today      time.Time
}

// DebtRepository defines persistence operations for debts
type DebtRepository interface {
	// FindByIDForShop finds a debt within a shop
	FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*Debt, error)

	// FindByIDForUpdate loads a debt and takes a row write lock
	FindByIDForUpdate(ctx context.Context, shopID, id uuid.UUID) (*Debt, error)

	// FindByIDs loads several debts at once
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Debt, error)

	// FindAutoDebtForSale returns the auto-created debt of a sale
	FindAutoDebtForSale(ctx context.Context, saleID uuid.UUID) (*Debt, error)

	// FindAll lists debts matching the filter
	FindAll(ctx context.Context, shopID uuid.UUID, filter DebtFilter) ([]Debt, int64, error)

	// FindUnpaidByCustomer lists the open debts of a customer
	FindUnpaidByCustomer(ctx context.Context, shopID, customerID uuid.UUID) ([]Debt, error)

	// FindOverdue lists unpaid debts due before today
	FindOverdue(ctx context.Context, shopID uuid.UUID, today time.Time) ([]Debt, error)

	// FindAllAutoCreated lists auto-created debts across all shops
	FindAllAutoCreated(ctx context.Context) ([]Debt, error)

	// SumOutstanding totals amount minus paid over unpaid debts
	SumOutstanding(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error)

	// ExistsForStockItem reports whether any debt references the item
	ExistsForStockItem(ctx context.Context, stockItemID uuid.UUID) (bool, error)

	Save(ctx context.Context, debt *Debt) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	FindByDebt(ctx context.Context, debtID uuid.UUID) ([]Payment, error)
	CountByDebt(ctx context.Context, debtID uuid.UUID) (int64, error)
	Save(ctx context.Context, payment *Payment) error
}

// ExpenditureFilter narrows expenditure listings
type ExpenditureFilter struct {
	shared.Filter
	From     *time.Time
	To       *time.Time
	Category ExpenditureCategory
}

// ExpenditureRepository defines persistence operations for expenditures
type ExpenditureRepository interface {
	FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*Expenditure, error)
	FindAll(ctx context.Context, shopID uuid.UUID, filter ExpenditureFilter) ([]Expenditure, int64, error)

	// FindInRange lists expenditures with from <= expense_date < to.
	// A zero bound leaves that side open.
	FindInRange(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]Expenditure, error)

	Save(ctx context.Context, expenditure *Expenditure) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}
