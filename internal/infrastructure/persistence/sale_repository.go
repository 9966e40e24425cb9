package persistence

import (
	"context"
	"time"

	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// FindByID loads a sale with its lines regardless of shop
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// FindByIDForShop loads a sale with its lines
func (r *GormSaleRepository) FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&sale).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// FindByIDForUpdate loads the sale header with SELECT ... FOR UPDATE
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, shopID, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&sale).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// FindByIDs loads several sales with their lines
func (r *GormSaleRepository) FindByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]trade.Sale, error) {
	if len(ids) == 0 {
		return []trade.Sale{}, nil
	}
	var sales []trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindAll lists sales matching the filter. Lines are loaded only when the
// filter asks for them.
func (r *GormSaleRepository) FindAll(ctx context.Context, shopID uuid.UUID, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Sale{}).Where("shop_id = ?", shopID)
	query = applyPaymentStatus(query, filter.PaymentStatus)
	if filter.From != nil {
		query = query.Where("sale_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("sale_date < ?", filter.To.UTC())
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(
			"LOWER(notes) LIKE ? OR customer_id IN (?)",
			p,
			r.db.Model(&partner.Customer{}).Select("id").Where("shop_id = ? AND LOWER(name) LIKE ?", shopID, p),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []trade.Sale
	query = applyOrder(query, filter.Filter, saleSortFields, "sale_date")
	if filter.WithLines {
		query = query.Preload("Lines", orderedLines)
	}
	if err := applyPage(query, filter.Filter).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func applyPaymentStatus(query *gorm.DB, status trade.PaymentStatusFilter) *gorm.DB {
	switch status {
	case trade.PaymentStatusPaid:
		return query.Where("is_paid = ?", true)
	case trade.PaymentStatusUnpaid:
		return query.Where("is_paid = ?", false)
	}
	return query
}

// FindForReport loads sales with lines in [from, to); a zero bound is open
func (r *GormSaleRepository) FindForReport(ctx context.Context, shopID uuid.UUID, from, to time.Time, status trade.PaymentStatusFilter) ([]trade.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("shop_id = ?", shopID)
	query = applyPaymentStatus(query, status)
	if !from.IsZero() {
		query = query.Where("sale_date >= ?", from.UTC())
	}
	if !to.IsZero() {
		query = query.Where("sale_date < ?", to.UTC())
	}

	var sales []trade.Sale
	if err := query.Order("sale_date ASC").Order("id ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindRecentPaid returns the latest paid sales with their lines
func (r *GormSaleRepository) FindRecentPaid(ctx context.Context, shopID uuid.UUID, limit int) ([]trade.Sale, error) {
	var sales []trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("shop_id = ? AND is_paid = ?", shopID, true).
		Order("sale_date DESC").Order("id DESC").
		Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindBySettledDebt returns the settlement sales of a debt
func (r *GormSaleRepository) FindBySettledDebt(ctx context.Context, debtID uuid.UUID) ([]trade.Sale, error) {
	var sales []trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("settled_debt_id = ?", debtID).
		Order("sale_date ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Save creates or updates the sale header; lines are saved with SaveLine
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	sale.SaleDate = sale.SaleDate.UTC()
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sale).Error
}

// Delete removes a sale and its lines
func (r *GormSaleRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("sale_id = ?", id).Delete(&trade.SaleLineItem{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("shop_id = ? AND id = ?", shopID, id).Delete(&trade.Sale{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindLines returns the persisted lines of a sale in insertion order
func (r *GormSaleRepository) FindLines(ctx context.Context, saleID uuid.UUID) ([]trade.SaleLineItem, error) {
	var lines []trade.SaleLineItem
	if err := orderedLines(r.db.WithContext(ctx)).
		Where("sale_id = ?", saleID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindLine returns a single line of a sale
func (r *GormSaleRepository) FindLine(ctx context.Context, saleID, lineID uuid.UUID) (*trade.SaleLineItem, error) {
	var line trade.SaleLineItem
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND id = ?", saleID, lineID).
		First(&line).Error; err != nil {
		return nil, notFound(err)
	}
	return &line, nil
}

// FindLineByStockItem returns the line of a sale drawing from a stock item
func (r *GormSaleRepository) FindLineByStockItem(ctx context.Context, saleID, stockItemID uuid.UUID) (*trade.SaleLineItem, error) {
	var line trade.SaleLineItem
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND stock_item_id = ?", saleID, stockItemID).
		First(&line).Error; err != nil {
		return nil, notFound(err)
	}
	return &line, nil
}

// SaveLine creates or updates a line
func (r *GormSaleRepository) SaveLine(ctx context.Context, line *trade.SaleLineItem) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// DeleteLine removes a line
func (r *GormSaleRepository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", lineID).Delete(&trade.SaleLineItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)
