package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinventory "github.com/duka/backend/internal/application/inventory"
	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService handles point-of-sale transactions.
//
// Every operation that touches lines runs in one transaction: the sale row is
// locked first, stock moves through the ledger, and the total is recomputed
// from the persisted lines before commit. Unpaid customer sales carry an
// auto-created debt that follows the sale total.
type SaleService struct {
	scope           uow.TransactionScope
	repos           uow.Repositories
	ledger          *appinventory.Ledger
	profit          *report.ProfitAllocator
	location        *time.Location
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	archiver        export.Archiver
	printer         ReceiptPrinter
	tables          TablePrinter
	now             func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope uow.TransactionScope,
	repos uow.Repositories,
	ledger *appinventory.Ledger,
	profit *report.ProfitAllocator,
	location *time.Location,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &SaleService{
		scope:    scope,
		repos:    repos,
		ledger:   ledger,
		profit:   profit,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetClock overrides the time source
func (s *SaleService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateSale creates a sale, optionally with its first lines
func (s *SaleService) CreateSale(ctx context.Context, shopID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	method := trade.PaymentMethod(req.PaymentMethod)
	isPaid := method != trade.PaymentMethodCredit
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}
	if isPaid && method == trade.PaymentMethodCredit {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "A credit sale cannot be marked paid")
	}
	var saleDate time.Time
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	sale, err := trade.NewSale(shopID, req.CustomerID, saleDate, isPaid, method, req.Notes)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if sale.CustomerID != nil {
			if _, err := repos.Customers().FindByIDForShop(ctx, shopID, *sale.CustomerID); err != nil {
				return err
			}
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := s.addLine(ctx, repos, sale, item); err != nil {
				return err
			}
		}
		return s.finalize(ctx, repos, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale created",
		zap.String("shop_id", shopID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.Int("lines", len(sale.Lines)),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.Bool("is_paid", sale.IsPaid),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSale(ctx, shopID, sale.TotalAmount)
	}
	return s.GetSale(ctx, shopID, sale.ID)
}

// AddLineItem adds stock to a sale, merging into an existing line for the same item
func (s *SaleService) AddLineItem(ctx context.Context, shopID, saleID uuid.UUID, req AddLineItemRequest) (*SaleResponse, error) {
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, shopID, saleID)
		if err != nil {
			return err
		}
		if err := s.addLine(ctx, repos, sale, req); err != nil {
			return err
		}
		return s.finalize(ctx, repos, sale)
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, shopID, saleID)
}

// UpdateLineItem changes the quantity, price or target of a line.
// A quantity change moves only the difference through the ledger. A target
// change hands the old quantity back in full and consumes the new quantity
// from the new item.
func (s *SaleService) UpdateLineItem(ctx context.Context, shopID, saleID, lineID uuid.UUID, req UpdateLineItemRequest) (*SaleResponse, error) {
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, shopID, saleID)
		if err != nil {
			return err
		}
		if err := sale.EnsureLinesMutable(); err != nil {
			return err
		}
		line, err := repos.Sales().FindLine(ctx, sale.ID, lineID)
		if err != nil {
			return err
		}

		newQty := line.Quantity
		if req.Quantity != nil {
			newQty = *req.Quantity
		}
		if newQty <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}

		newTarget, err := s.requestedTarget(line, req)
		if err != nil {
			return err
		}

		if newTarget != nil {
			dup, err := findLineByStockItem(ctx, repos, sale.ID, newTarget.StockItemID())
			if err != nil {
				return err
			}
			if dup != nil && dup.ID != line.ID {
				return shared.NewDomainError("DUPLICATE_LINE", "The sale already has a line for this item")
			}
			if _, err := s.ledger.ApplyDelta(ctx, repos, shopID, line.StockItemID, line.Quantity, appinventory.ReasonSaleLine); err != nil {
				return err
			}
			newItem, err := repos.StockItems().FindByIDForUpdate(ctx, shopID, newTarget.StockItemID())
			if err != nil {
				return err
			}
			if err := trade.CheckTarget(newTarget, newItem); err != nil {
				return err
			}
			if err := s.ledger.Apply(ctx, repos, newItem, -newQty, appinventory.ReasonSaleLine); err != nil {
				return err
			}
			line.Retarget(newTarget)
			if _, err := line.SetQuantity(newQty); err != nil {
				return err
			}
			if req.UnitPrice == nil && newItem.UnitPrice.IsPositive() {
				if err := line.SetUnitPrice(newItem.UnitPrice); err != nil {
					return err
				}
			}
		} else if newQty != line.Quantity {
			delta, err := line.SetQuantity(newQty)
			if err != nil {
				return err
			}
			if _, err := s.ledger.ApplyDelta(ctx, repos, shopID, line.StockItemID, delta, appinventory.ReasonSaleLine); err != nil {
				return err
			}
		}

		if req.UnitPrice != nil {
			if err := line.SetUnitPrice(*req.UnitPrice); err != nil {
				return err
			}
		}
		if err := repos.Sales().SaveLine(ctx, line); err != nil {
			return err
		}
		return s.finalize(ctx, repos, sale)
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, shopID, saleID)
}

// RemoveLineItem deletes a line and hands its quantity back to stock
func (s *SaleService) RemoveLineItem(ctx context.Context, shopID, saleID, lineID uuid.UUID) (*SaleResponse, error) {
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, shopID, saleID)
		if err != nil {
			return err
		}
		if err := sale.EnsureLinesMutable(); err != nil {
			return err
		}
		line, err := repos.Sales().FindLine(ctx, sale.ID, lineID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDelta(ctx, repos, shopID, line.StockItemID, line.Quantity, appinventory.ReasonSaleLine); err != nil {
			return err
		}
		if err := repos.Sales().DeleteLine(ctx, line.ID); err != nil {
			return err
		}
		return s.finalize(ctx, repos, sale)
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, shopID, saleID)
}

// DeleteSale deletes a sale, restores the stock of every line and removes
// the sale's auto-created debt
func (s *SaleService) DeleteSale(ctx context.Context, shopID, saleID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		return s.deleteSale(ctx, repos, shopID, saleID)
	})
}

// BulkDeleteSales deletes several sales in one transaction. Either all of
// them are deleted or none.
func (s *SaleService) BulkDeleteSales(ctx context.Context, shopID uuid.UUID, req BulkDeleteRequest) (*BulkDeleteResponse, error) {
	seen := make(map[uuid.UUID]bool, len(req.IDs))
	deleted := 0
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		for _, id := range req.IDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if err := s.deleteSale(ctx, repos, shopID, id); err != nil {
				return fmt.Errorf("sale %s: %w", shared.ShortRef(id), err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BulkDeleteResponse{Deleted: deleted}, nil
}

// MarkPaid flags an unpaid sale as paid and settles its auto-created debt.
// Once payments were recorded against that debt the money already counts as
// settlement revenue, so the rest has to be paid through the debt.
func (s *SaleService) MarkPaid(ctx context.Context, shopID, saleID uuid.UUID, req MarkPaidRequest) (*SaleResponse, error) {
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, shopID, saleID)
		if err != nil {
			return err
		}
		if sale.IsPaid {
			return nil
		}
		debt, err := findAutoDebt(ctx, repos, sale.ID)
		if err != nil {
			return err
		}
		if debt != nil && debt.HasPayments() {
			return shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("Sale #%s has payments recorded against its debt; record the remaining %s as a debt payment",
					sale.Reference(), debt.RemainingAmount().StringFixed(2)))
		}

		changed, err := sale.MarkPaid(trade.PaymentMethod(req.PaymentMethod))
		if err != nil || !changed {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}

		if debt != nil && !debt.IsPaid() {
			settled := debt.Settle()
			if err := repos.Debts().Save(ctx, debt); err != nil {
				return err
			}
			s.logger.Info("Auto-debt settled by sale payment",
				zap.String("sale_id", sale.ID.String()),
				zap.String("debt_id", debt.ID.String()),
				zap.String("settled", settled.StringFixed(2)),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSale(ctx, shopID, saleID)
}

// GetSale returns a sale with its lines, item names and profit
func (s *SaleService) GetSale(ctx context.Context, shopID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.repos.Sales().FindByIDForShop(ctx, shopID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)

	if len(sale.Lines) > 0 {
		ids := make([]uuid.UUID, len(sale.Lines))
		for i, line := range sale.Lines {
			ids[i] = line.StockItemID
		}
		items, err := s.repos.StockItems().FindByIDs(ctx, shopID, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]*inventory.StockItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}
		for i := range response.Lines {
			if item, ok := byID[response.Lines[i].StockItemID]; ok {
				response.Lines[i].ItemName = item.Name
				response.Lines[i].SKU = item.SKU
			}
		}
	}
	if sale.CustomerID != nil {
		if customer, err := s.repos.Customers().FindByIDForShop(ctx, shopID, *sale.CustomerID); err == nil {
			response.CustomerName = customer.Name
		}
	}
	if s.profit != nil {
		profit := s.profit.Profit(ctx, sale)
		response.Profit = &profit
	}
	return &response, nil
}

// ListSales lists sales of a shop. Without a payment status only paid sales
// are listed.
func (s *SaleService) ListSales(ctx context.Context, shopID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	sales, total, err := s.repos.Sales().FindAll(ctx, shopID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(sales), total, nil
}

func (s *SaleService) toDomainFilter(filter SaleListFilter) (trade.SaleFilter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	status := trade.PaymentStatusFilter(filter.PaymentStatus)
	if status == "" {
		status = trade.PaymentStatusPaid
	}
	from, to, err := shared.LocalDateRange(filter.From, filter.To, s.location)
	if err != nil {
		return trade.SaleFilter{}, err
	}
	return trade.SaleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "sale_date",
			OrderDir: "desc",
			Search:   filter.Search,
		},
		From:          from,
		To:            to,
		PaymentStatus: status,
		CustomerID:    filter.CustomerID,
	}, nil
}

// addLine merges into or creates the line for the requested item and
// consumes the added quantity. The caller holds the sale lock.
func (s *SaleService) addLine(ctx context.Context, repos uow.Repositories, sale *trade.Sale, req AddLineItemRequest) error {
	if err := sale.EnsureLinesMutable(); err != nil {
		return err
	}
	if req.Quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	item, err := repos.StockItems().FindByIDForUpdate(ctx, sale.ShopID, req.StockItemID)
	if err != nil {
		return err
	}
	kind := inventory.ItemKind(req.Kind)
	if kind == "" {
		kind = item.Kind
	}
	target, err := trade.NewLineTarget(kind, req.StockItemID)
	if err != nil {
		return err
	}
	if err := trade.CheckTarget(target, item); err != nil {
		return err
	}

	line, err := findLineByStockItem(ctx, repos, sale.ID, item.ID)
	if err != nil {
		return err
	}
	if line != nil {
		delta, err := line.Merge(req.Quantity)
		if err != nil {
			return err
		}
		if err := s.ledger.Apply(ctx, repos, item, delta, appinventory.ReasonSaleLine); err != nil {
			return err
		}
		return repos.Sales().SaveLine(ctx, line)
	}

	price := req.UnitPrice
	if !price.IsPositive() {
		price = item.UnitPrice
	}
	line, err = trade.NewSaleLineItem(sale.ID, target, req.Quantity, price)
	if err != nil {
		return err
	}
	if err := s.ledger.Apply(ctx, repos, item, -req.Quantity, appinventory.ReasonSaleLine); err != nil {
		return err
	}
	return repos.Sales().SaveLine(ctx, line)
}

// finalize recomputes the total from persisted lines, saves the header and
// brings the auto-created debt in line with the sale
func (s *SaleService) finalize(ctx context.Context, repos uow.Repositories, sale *trade.Sale) error {
	if sale.IsSettlement() {
		return nil
	}
	lines, err := repos.Sales().FindLines(ctx, sale.ID)
	if err != nil {
		return err
	}
	if err := sale.RecomputeTotal(lines); err != nil {
		return err
	}
	if err := repos.Sales().Save(ctx, sale); err != nil {
		return err
	}
	return s.syncAutoDebt(ctx, repos, sale, lines)
}

// syncAutoDebt upserts the debt of an unpaid customer sale.
// No ledger movement happens here; the lines already consumed the stock.
func (s *SaleService) syncAutoDebt(ctx context.Context, repos uow.Repositories, sale *trade.Sale, lines []trade.SaleLineItem) error {
	if !sale.NeedsAutoDebt() {
		return nil
	}
	debt, err := findAutoDebt(ctx, repos, sale.ID)
	if err != nil {
		return err
	}

	if len(lines) == 0 {
		if debt == nil {
			return nil
		}
		if err := debt.CheckSaleTotal(sale.TotalAmount); err != nil {
			return err
		}
		return repos.Debts().Delete(ctx, sale.ShopID, debt.ID)
	}

	first := lines[0]
	if debt == nil {
		debt, err = finance.NewAutoDebt(sale.ShopID, *sale.CustomerID, sale.ID, first.StockItemID, first.Quantity, sale.TotalAmount, sale.SaleDate, s.location)
		if err != nil {
			return err
		}
		s.logger.Info("Auto-debt created for unpaid sale",
			zap.String("sale_id", sale.ID.String()),
			zap.String("debt_id", debt.ID.String()),
			zap.String("amount", debt.Amount.StringFixed(2)),
		)
	} else if err := debt.SyncWithSale(sale.TotalAmount, first.StockItemID, first.Quantity); err != nil {
		return err
	}
	return repos.Debts().Save(ctx, debt)
}

func (s *SaleService) deleteSale(ctx context.Context, repos uow.Repositories, shopID, saleID uuid.UUID) error {
	sale, err := repos.Sales().FindByIDForUpdate(ctx, shopID, saleID)
	if err != nil {
		return err
	}
	if sale.IsSettlement() {
		return shared.NewDomainError("SETTLEMENT_IMMUTABLE", "Debt payment records cannot be deleted")
	}

	debt, err := findAutoDebt(ctx, repos, sale.ID)
	if err != nil {
		return err
	}
	if debt != nil && debt.HasPayments() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Sale #%s has payments recorded against its debt", sale.Reference()))
	}

	lines, err := repos.Sales().FindLines(ctx, sale.ID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := s.ledger.ApplyDelta(ctx, repos, shopID, line.StockItemID, line.Quantity, appinventory.ReasonSaleDelete); err != nil {
			return err
		}
	}
	if debt != nil {
		if err := repos.Debts().Delete(ctx, shopID, debt.ID); err != nil {
			return err
		}
	}
	if err := repos.Sales().Delete(ctx, shopID, sale.ID); err != nil {
		return err
	}
	s.logger.Info("Sale deleted",
		zap.String("shop_id", shopID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.Int("lines_restored", len(lines)),
	)
	return nil
}

// requestedTarget returns the new target of an update, or nil when the
// target does not change
func (s *SaleService) requestedTarget(line *trade.SaleLineItem, req UpdateLineItemRequest) (trade.LineTarget, error) {
	if req.StockItemID == nil && req.Kind == nil {
		return nil, nil
	}
	id := line.StockItemID
	if req.StockItemID != nil {
		id = *req.StockItemID
	}
	kind := line.TargetKind
	if req.Kind != nil {
		kind = inventory.ItemKind(*req.Kind)
	}
	if id == line.StockItemID && kind == line.TargetKind {
		return nil, nil
	}
	return trade.NewLineTarget(kind, id)
}

func findLineByStockItem(ctx context.Context, repos uow.Repositories, saleID, stockItemID uuid.UUID) (*trade.SaleLineItem, error) {
	line, err := repos.Sales().FindLineByStockItem(ctx, saleID, stockItemID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return line, err
}

func findAutoDebt(ctx context.Context, repos uow.Repositories, saleID uuid.UUID) (*finance.Debt, error) {
	debt, err := repos.Debts().FindAutoDebtForSale(ctx, saleID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return debt, err
}
