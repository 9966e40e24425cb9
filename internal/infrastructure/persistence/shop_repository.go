package persistence

import (
	"context"
	"errors"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFound maps GORM's missing-row error to the domain error
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// GormShopRepository implements shop.Repository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by its ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	var s shop.Shop
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindByType finds the shop of the given type
func (r *GormShopRepository) FindByType(ctx context.Context, shopType shop.ShopType) (*shop.Shop, error) {
	var s shop.Shop
	if err := r.db.WithContext(ctx).Where("shop_type = ?", shopType).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindAll lists every shop by name
func (r *GormShopRepository) FindAll(ctx context.Context) ([]shop.Shop, error) {
	var shops []shop.Shop
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// Save creates or updates a shop
func (r *GormShopRepository) Save(ctx context.Context, s *shop.Shop) error {
	return r.db.WithContext(ctx).Save(s).Error
}

var _ shop.Repository = (*GormShopRepository)(nil)
