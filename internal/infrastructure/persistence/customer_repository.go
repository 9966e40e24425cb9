package persistence

import (
	"context"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForShop finds a customer within a shop
func (r *GormCustomerRepository) FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		First(&customer).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

// FindByIDs loads several customers at once; missing IDs are skipped
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]partner.Customer, error) {
	if len(ids) == 0 {
		return []partner.Customer{}, nil
	}
	var customers []partner.Customer
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// FindAll lists customers with search on name and phone
func (r *GormCustomerRepository) FindAll(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Customer{}).Where("shop_id = ?", shopID)
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", p, p)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []partner.Customer
	query = applyOrder(query, filter, customerSortFields, "name")
	if err := applyPage(query, filter).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// IsReferenced reports whether sales or debts point at the customer
func (r *GormCustomerRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&finance.Debt{}).
		Where("customer_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&trade.Sale{}).
		Where("customer_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		Delete(&partner.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
