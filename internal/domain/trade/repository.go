package trade

import (
	"context"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentStatusFilter selects sales by their paid flag
type PaymentStatusFilter string

const (
	PaymentStatusPaid   PaymentStatusFilter = "paid"
	PaymentStatusUnpaid PaymentStatusFilter = "unpaid"
	PaymentStatusAll    PaymentStatusFilter = "all"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	From          *time.Time
	To            *time.Time
	PaymentStatus PaymentStatusFilter
	CustomerID    *uuid.UUID
	// WithLines preloads the lines of every listed sale
	WithLines bool
}

// HasDateRange reports whether the caller supplied an explicit date range
func (f SaleFilter) HasDateRange() bool {
	return f.From != nil || f.To != nil
}

// SaleRepository defines persistence operations for sales and their lines
type SaleRepository interface {
	// FindByID loads a sale with its lines regardless of shop.
	// Used when following references from records that are already shop scoped.
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForShop loads a sale with its lines
	FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate loads the sale header and takes a row write lock
	// held until the enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, shopID, id uuid.UUID) (*Sale, error)

	// FindByIDs loads several sales with their lines
	FindByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]Sale, error)

	// FindAll lists sales (without lines) matching the filter, newest first
	FindAll(ctx context.Context, shopID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)

	// FindForReport loads sales with lines in [from, to) for aggregation.
	// A zero bound leaves that side open.
	FindForReport(ctx context.Context, shopID uuid.UUID, from, to time.Time, status PaymentStatusFilter) ([]Sale, error)

	// FindRecentPaid returns the latest paid sales
	FindRecentPaid(ctx context.Context, shopID uuid.UUID, limit int) ([]Sale, error)

	// FindBySettledDebt returns the settlement sales of a debt
	FindBySettledDebt(ctx context.Context, debtID uuid.UUID) ([]Sale, error)

	// Save creates or updates the sale header (lines are saved separately)
	Save(ctx context.Context, sale *Sale) error

	// Delete removes a sale and its lines
	Delete(ctx context.Context, shopID, id uuid.UUID) error

	// FindLines returns the persisted lines of a sale
	FindLines(ctx context.Context, saleID uuid.UUID) ([]SaleLineItem, error)

	// FindLine returns a single line of a sale
	FindLine(ctx context.Context, saleID, lineID uuid.UUID) (*SaleLineItem, error)

	// FindLineByStockItem returns the line of a sale drawing from a stock item
	FindLineByStockItem(ctx context.Context, saleID, stockItemID uuid.UUID) (*SaleLineItem, error)

	// SaveLine creates or updates a line
	SaveLine(ctx context.Context, line *SaleLineItem) error

	// DeleteLine removes a line
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
}
