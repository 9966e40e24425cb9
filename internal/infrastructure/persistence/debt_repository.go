package persistence

import (
	"context"
	"time"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDebtRepository implements finance.DebtRepository using GORM.
// Due dates are civil dates; today arguments are converted the same way
// before comparing.
type GormDebtRepository struct {
	db *gorm.DB
}

// NewGormDebtRepository creates a new GormDebtRepository
func NewGormDebtRepository(db *gorm.DB) *GormDebtRepository {
	return &GormDebtRepository{db: db}
}

// FindByIDForShop finds a debt within a shop
func (r *GormDebtRepository) FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*finance.Debt, error) {
	var debt finance.Debt
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&debt).Error; err != nil {
		return nil, notFound(err)
	}
	return &debt, nil
}

// FindByIDForUpdate loads a debt with SELECT ... FOR UPDATE
func (r *GormDebtRepository) FindByIDForUpdate(ctx context.Context, shopID, id uuid.UUID) (*finance.Debt, error) {
	var debt finance.Debt
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&debt).Error; err != nil {
		return nil, notFound(err)
	}
	return &debt, nil
}

// FindByIDs loads several debts at once
func (r *GormDebtRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.Debt, error) {
	if len(ids) == 0 {
		return []finance.Debt{}, nil
	}
	var debts []finance.Debt
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// FindAutoDebtForSale returns the auto-created debt of a sale
func (r *GormDebtRepository) FindAutoDebtForSale(ctx context.Context, saleID uuid.UUID) (*finance.Debt, error) {
	var debt finance.Debt
	if err := r.db.WithContext(ctx).
		Where("originating_sale_id = ? AND auto_created = ?", saleID, true).
		First(&debt).Error; err != nil {
		return nil, notFound(err)
	}
	return &debt, nil
}

// FindAll lists debts matching the filter
func (r *GormDebtRepository) FindAll(ctx context.Context, shopID uuid.UUID, filter finance.DebtFilter) ([]finance.Debt, int64, error) {
	query := r.db.WithContext(ctx).Model(&finance.Debt{}).Where("shop_id = ?", shopID)
	switch filter.Status {
	case "":
	case finance.DebtStatusOverdue:
		query = whereOverdue(query, filter.Today)
	default:
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(description) LIKE ? OR customer_id IN (?)",
			p,
			r.db.Model(&partner.Customer{}).Select("id").Where("shop_id = ? AND LOWER(name) LIKE ?", shopID, p),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var debts []finance.Debt
	query = applyOrder(query, filter.Filter, debtSortFields, "due_date")
	if err := applyPage(query, filter.Filter).Find(&debts).Error; err != nil {
		return nil, 0, err
	}
	return debts, total, nil
}

func whereOverdue(query *gorm.DB, today time.Time) *gorm.DB {
	return query.
		Where("status <> ?", finance.DebtStatusPaid).
		Where("due_date < ?", finance.CivilDate(today))
}

// FindUnpaidByCustomer lists the open debts of a customer, oldest due first
func (r *GormDebtRepository) FindUnpaidByCustomer(ctx context.Context, shopID, customerID uuid.UUID) ([]finance.Debt, error) {
	var debts []finance.Debt
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND customer_id = ? AND status <> ?", shopID, customerID, finance.DebtStatusPaid).
		Order("due_date ASC").Order("id ASC").
		Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// FindOverdue lists unpaid debts due before today
func (r *GormDebtRepository) FindOverdue(ctx context.Context, shopID uuid.UUID, today time.Time) ([]finance.Debt, error) {
	var debts []finance.Debt
	query := whereOverdue(r.db.WithContext(ctx).Where("shop_id = ?", shopID), today)
	if err := query.Order("due_date ASC").Order("id ASC").Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// FindAllAutoCreated lists auto-created debts across all shops
func (r *GormDebtRepository) FindAllAutoCreated(ctx context.Context) ([]finance.Debt, error) {
	var debts []finance.Debt
	if err := r.db.WithContext(ctx).
		Where("auto_created = ? AND originating_sale_id IS NOT NULL", true).
		Order("created_at ASC").
		Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

// SumOutstanding totals amount minus paid over unpaid debts
func (r *GormDebtRepository) SumOutstanding(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&finance.Debt{}).
		Select("SUM(amount - paid_amount)").
		Where("shop_id = ? AND status <> ?", shopID, finance.DebtStatusPaid).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// ExistsForStockItem reports whether any debt references the item
func (r *GormDebtRepository) ExistsForStockItem(ctx context.Context, stockItemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&finance.Debt{}).
		Where("stock_item_id = ?", stockItemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a debt
func (r *GormDebtRepository) Save(ctx context.Context, debt *finance.Debt) error {
	debt.DueDate = finance.CivilDate(debt.DueDate)
	return r.db.WithContext(ctx).Save(debt).Error
}

// Delete removes a debt
func (r *GormDebtRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).Delete(&finance.Debt{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.DebtRepository = (*GormDebtRepository)(nil)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByDebt lists the payments of a debt in the order they were made
func (r *GormPaymentRepository) FindByDebt(ctx context.Context, debtID uuid.UUID) ([]finance.Payment, error) {
	var payments []finance.Payment
	if err := r.db.WithContext(ctx).
		Where("debt_id = ?", debtID).
		Order("payment_date ASC").Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CountByDebt counts the payments of a debt
func (r *GormPaymentRepository) CountByDebt(ctx context.Context, debtID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&finance.Payment{}).Where("debt_id = ?", debtID).Count(&count).Error
	return count, err
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	payment.PaymentDate = payment.PaymentDate.UTC()
	return r.db.WithContext(ctx).Save(payment).Error
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)

// GormExpenditureRepository implements finance.ExpenditureRepository using GORM
type GormExpenditureRepository struct {
	db *gorm.DB
}

// NewGormExpenditureRepository creates a new GormExpenditureRepository
func NewGormExpenditureRepository(db *gorm.DB) *GormExpenditureRepository {
	return &GormExpenditureRepository{db: db}
}

// FindByIDForShop finds an expenditure within a shop
func (r *GormExpenditureRepository) FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*finance.Expenditure, error) {
	var e finance.Expenditure
	if err := r.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).First(&e).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// FindAll lists expenditures matching the filter
func (r *GormExpenditureRepository) FindAll(ctx context.Context, shopID uuid.UUID, filter finance.ExpenditureFilter) ([]finance.Expenditure, int64, error) {
	query := r.db.WithContext(ctx).Model(&finance.Expenditure{}).Where("shop_id = ?", shopID)
	if filter.From != nil {
		query = query.Where("expense_date >= ?", finance.CivilDate(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("expense_date < ?", finance.CivilDate(*filter.To))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenditures []finance.Expenditure
	query = applyOrder(query, filter.Filter, expenditureSortFields, "expense_date")
	if err := applyPage(query, filter.Filter).Find(&expenditures).Error; err != nil {
		return nil, 0, err
	}
	return expenditures, total, nil
}

// FindInRange lists expenditures with from <= expense_date < to; a zero bound is open
func (r *GormExpenditureRepository) FindInRange(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]finance.Expenditure, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if !from.IsZero() {
		query = query.Where("expense_date >= ?", finance.CivilDate(from))
	}
	if !to.IsZero() {
		query = query.Where("expense_date < ?", finance.CivilDate(to))
	}
	var expenditures []finance.Expenditure
	if err := query.Order("expense_date ASC").Order("id ASC").Find(&expenditures).Error; err != nil {
		return nil, err
	}
	return expenditures, nil
}

// Save creates or updates an expenditure
func (r *GormExpenditureRepository) Save(ctx context.Context, e *finance.Expenditure) error {
	e.ExpenseDate = finance.CivilDate(e.ExpenseDate)
	return r.db.WithContext(ctx).Save(e).Error
}

// Delete removes an expenditure
func (r *GormExpenditureRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).Delete(&finance.Expenditure{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ finance.ExpenditureRepository = (*GormExpenditureRepository)(nil)
