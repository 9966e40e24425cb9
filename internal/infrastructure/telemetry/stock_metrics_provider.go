package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMetricsProvider reads gauge values straight from the database
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a GormStockMetricsProvider
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// ShopIDs returns the active shops
func (p *GormStockMetricsProvider) ShopIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("shops").
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

// LowStockCount counts active items at or below their reorder threshold
func (p *GormStockMetricsProvider) LowStockCount(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("stock_items").
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Where("on_hand_quantity <= reorder_threshold").
		Count(&count).Error
	return count, err
}
