package finance

import (
	"context"
	"errors"
	"time"

	appinventory "github.com/duka/backend/internal/application/inventory"
	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DebtService reconciles customer debts with payments and stock.
//
// Every payment is also recorded as a settlement sale so that money received
// shows up in sales reports; the originating credit sale stays unpaid and is
// therefore never counted twice.
type DebtService struct {
	scope           uow.TransactionScope
	repos           uow.Repositories
	ledger          *appinventory.Ledger
	location        *time.Location
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewDebtService creates a new DebtService
func NewDebtService(scope uow.TransactionScope, repos uow.Repositories, ledger *appinventory.Ledger, location *time.Location, logger *zap.Logger) *DebtService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &DebtService{
		scope:    scope,
		repos:    repos,
		ledger:   ledger,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *DebtService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetClock overrides the time source
func (s *DebtService) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the current local calendar date
func (s *DebtService) Today() time.Time {
	return shared.LocalDate(s.now(), s.location)
}

// CreateDebt records stock handed over on credit and deducts it from stock
func (s *DebtService) CreateDebt(ctx context.Context, shopID uuid.UUID, req CreateDebtRequest) (*DebtResponse, error) {
	dueDate, err := shared.ParseLocalDate(req.DueDate, s.location)
	if err != nil {
		return nil, err
	}

	var debt *finance.Debt
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.Customers().FindByIDForShop(ctx, shopID, req.CustomerID); err != nil {
			return err
		}
		item, err := repos.StockItems().FindByIDForUpdate(ctx, shopID, req.StockItemID)
		if err != nil {
			return err
		}
		amount := finance.ResolveDebtAmount(req.Amount, item.UnitPrice, req.Quantity)
		debt, err = finance.NewDebt(shopID, req.CustomerID, item.ID, req.Quantity, amount, dueDate, req.Description)
		if err != nil {
			return err
		}
		if err := s.ledger.Apply(ctx, repos, item, -req.Quantity, appinventory.ReasonDebt); err != nil {
			return err
		}
		return repos.Debts().Save(ctx, debt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Debt created",
		zap.String("shop_id", shopID.String()),
		zap.String("debt_id", debt.ID.String()),
		zap.String("amount", debt.Amount.StringFixed(2)),
		zap.Int("quantity", debt.Quantity),
	)
	return s.GetDebt(ctx, shopID, debt.ID)
}

// RecordPayment applies a payment to a debt and synthesizes its settlement sale.
// Overpayment is rejected before anything is written.
func (s *DebtService) RecordPayment(ctx context.Context, shopID, debtID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	paidAt := s.now()
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paidAt = *req.PaymentDate
	}
	method := trade.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = trade.PaymentMethodCash
	}

	var (
		debt       *finance.Debt
		payment    *finance.Payment
		settlement *trade.Sale
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		debt, err = repos.Debts().FindByIDForUpdate(ctx, shopID, debtID)
		if err != nil {
			return err
		}
		if err := debt.ValidatePayment(req.Amount); err != nil {
			return err
		}
		payment, err = finance.NewPayment(debt, req.Amount, method, paidAt, req.Notes)
		if err != nil {
			return err
		}
		settlement, err = trade.NewSettlementSale(debt.ShopID, &debt.CustomerID, debt.ID, req.Amount, method, paidAt, req.Notes)
		if err != nil {
			return err
		}

		if err := debt.ApplyPayment(req.Amount); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, settlement); err != nil {
			return err
		}
		debt.LinkOriginatingSale(settlement.ID)
		if err := repos.Debts().Save(ctx, debt); err != nil {
			return err
		}
		payment.AttachSettlement(settlement.ID)
		return repos.Payments().Save(ctx, payment)
	})
	if err != nil {
		if s.businessMetrics != nil && !errors.Is(err, shared.ErrNotFound) {
			s.businessMetrics.RecordPayment(ctx, shopID, string(method), telemetry.PaymentStatusFailed)
		}
		return nil, err
	}

	s.logger.Info("Debt payment recorded",
		zap.String("shop_id", shopID.String()),
		zap.String("debt_id", debt.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("settlement_sale_id", settlement.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("remaining", debt.RemainingAmount().StringFixed(2)),
		zap.String("status", string(debt.Status)),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, shopID, string(method), telemetry.PaymentStatusSuccess)
	}

	debtResponse := ToDebtResponse(debt, s.Today())
	return &RecordPaymentResponse{
		Payment:        ToPaymentResponse(payment),
		SettlementSale: ToSettlementResponse(settlement),
		Debt:           debtResponse,
	}, nil
}

// GetDebt returns a debt with its customer, item and payments
func (s *DebtService) GetDebt(ctx context.Context, shopID, debtID uuid.UUID) (*DebtResponse, error) {
	debt, err := s.repos.Debts().FindByIDForShop(ctx, shopID, debtID)
	if err != nil {
		return nil, err
	}
	responses, err := s.enrich(ctx, shopID, []finance.Debt{*debt})
	if err != nil {
		return nil, err
	}
	response := responses[0]

	payments, err := s.repos.Payments().FindByDebt(ctx, debt.ID)
	if err != nil {
		return nil, err
	}
	response.Payments = make([]PaymentResponse, len(payments))
	for i := range payments {
		response.Payments[i] = ToPaymentResponse(&payments[i])
	}
	return &response, nil
}

// ListDebts lists debts; the overdue status filter is evaluated against today
func (s *DebtService) ListDebts(ctx context.Context, shopID uuid.UUID, filter DebtListFilter) ([]DebtResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	debts, total, err := s.repos.Debts().FindAll(ctx, shopID, finance.DebtFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "due_date",
			OrderDir: "asc",
			Search:   filter.Search,
		},
		Status:     finance.DebtStatus(filter.Status),
		CustomerID: filter.CustomerID,
		Today:      s.Today(),
	})
	if err != nil {
		return nil, 0, err
	}
	responses, err := s.enrich(ctx, shopID, debts)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// ListPayments lists the payments made against a debt
func (s *DebtService) ListPayments(ctx context.Context, shopID, debtID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.repos.Debts().FindByIDForShop(ctx, shopID, debtID); err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindByDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, nil
}

// OutstandingTotal returns the sum still owed across unpaid debts
func (s *DebtService) OutstandingTotal(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	return s.repos.Debts().SumOutstanding(ctx, shopID)
}

// OverdueDebts lists unpaid debts past their due date
func (s *DebtService) OverdueDebts(ctx context.Context, shopID uuid.UUID) ([]DebtResponse, error) {
	debts, err := s.repos.Debts().FindOverdue(ctx, shopID, s.Today())
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, shopID, debts)
}

// DeleteDebt deletes a debt without payments. A manually created debt hands
// its quantity back to stock.
func (s *DebtService) DeleteDebt(ctx context.Context, shopID, debtID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		debt, err := repos.Debts().FindByIDForUpdate(ctx, shopID, debtID)
		if err != nil {
			return err
		}
		if debt.HasPayments() {
			return shared.NewDomainError(shared.ErrInvalidState.Code, "A debt with recorded payments cannot be deleted")
		}
		if !debt.AutoCreated {
			if _, err := s.ledger.ApplyDelta(ctx, repos, shopID, debt.StockItemID, debt.Quantity, appinventory.ReasonDebtDelete); err != nil {
				return err
			}
		}
		if err := repos.Debts().Delete(ctx, shopID, debt.ID); err != nil {
			return err
		}
		s.logger.Info("Debt deleted",
			zap.String("shop_id", shopID.String()),
			zap.String("debt_id", debt.ID.String()),
			zap.Bool("auto_created", debt.AutoCreated),
		)
		return nil
	})
}

// FixAutoDebtDueDates resets every auto-created debt's due date to the local
// calendar date of its sale plus the grace period. Returns how many changed.
func (s *DebtService) FixAutoDebtDueDates(ctx context.Context) (int, error) {
	changed := 0
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		debts, err := repos.Debts().FindAllAutoCreated(ctx)
		if err != nil {
			return err
		}
		for i := range debts {
			debt := &debts[i]
			if debt.OriginatingSaleID == nil {
				continue
			}
			sale, err := repos.Sales().FindByIDForShop(ctx, debt.ShopID, *debt.OriginatingSaleID)
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Auto-debt has no originating sale", zap.String("debt_id", debt.ID.String()))
				continue
			}
			if err != nil {
				return err
			}
			want := finance.AutoDebtDueDate(sale.SaleDate, s.location)
			if finance.CivilDate(debt.DueDate).Equal(want) {
				continue
			}
			s.logger.Info("Fixing auto-debt due date",
				zap.String("debt_id", debt.ID.String()),
				zap.String("from", shared.DateKey(debt.DueDate)),
				zap.String("to", shared.DateKey(want)),
			)
			debt.SetDueDate(want)
			if err := repos.Debts().Save(ctx, debt); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// enrich converts debts to responses with customer and item details
func (s *DebtService) enrich(ctx context.Context, shopID uuid.UUID, debts []finance.Debt) ([]DebtResponse, error) {
	customerIDs := make([]uuid.UUID, 0, len(debts))
	itemIDs := make([]uuid.UUID, 0, len(debts))
	for _, d := range debts {
		customerIDs = append(customerIDs, d.CustomerID)
		itemIDs = append(itemIDs, d.StockItemID)
	}

	customers, err := s.repos.Customers().FindByIDs(ctx, shopID, customerIDs)
	if err != nil {
		return nil, err
	}
	customerByID := make(map[uuid.UUID]int, len(customers))
	for i := range customers {
		customerByID[customers[i].ID] = i
	}
	items, err := s.repos.StockItems().FindByIDs(ctx, shopID, itemIDs)
	if err != nil {
		return nil, err
	}
	itemNames := make(map[uuid.UUID]string, len(items))
	for _, item := range items {
		itemNames[item.ID] = item.Name
	}

	today := s.Today()
	responses := make([]DebtResponse, len(debts))
	for i := range debts {
		r := ToDebtResponse(&debts[i], today)
		if idx, ok := customerByID[debts[i].CustomerID]; ok {
			r.CustomerName = customers[idx].Name
			r.CustomerPhone = customers[idx].Phone
		}
		r.ItemName = itemNames[debts[i].StockItemID]
		responses[i] = r
	}
	return responses, nil
}
