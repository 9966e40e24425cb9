package shop

import (
	"context"
	"strings"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ShopType identifies the line of business of a shop
type ShopType string

const (
	ShopTypeStationery     ShopType = "stationery"
	ShopTypeDukaLaVinywaji ShopType = "duka_la_vinywaji"
)

// IsValid checks if the shop type is known
func (t ShopType) IsValid() bool {
	return t == ShopTypeStationery || t == ShopTypeDukaLaVinywaji
}

// DisplayName returns the human label for the shop type
func (t ShopType) DisplayName() string {
	switch t {
	case ShopTypeStationery:
		return "Stationery"
	case ShopTypeDukaLaVinywaji:
		return "Duka la Vinywaji"
	default:
		return string(t)
	}
}

// Shop is the unit every stock item, customer, sale and debt is scoped to
type Shop struct {
	shared.BaseEntity
	Name     string   `gorm:"type:varchar(100);not null"`
	ShopType ShopType `gorm:"type:varchar(30);not null;uniqueIndex"`
	IsActive bool     `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// NewShop creates a new shop
func NewShop(name string, shopType ShopType) (*Shop, error) {
	if !shopType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SHOP_TYPE", "Shop type must be stationery or duka_la_vinywaji")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = shopType.DisplayName()
	}
	return &Shop{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		ShopType:   shopType,
		IsActive:   true,
	}, nil
}

// DisplayName returns the name shown in headers and receipts
func (s *Shop) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ShopType.DisplayName()
}

// Repository defines persistence operations for shops
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindByType(ctx context.Context, shopType ShopType) (*Shop, error)
	FindAll(ctx context.Context) ([]Shop, error)
	Save(ctx context.Context, shop *Shop) error
}
