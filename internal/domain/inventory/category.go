package inventory

import (
	"strings"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups stock items for browsing and filtering
type Category struct {
	shared.BaseEntity
	ShopID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_shop_name,priority:1"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_shop_name,priority:2"`
	Description string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(shopID uuid.UUID, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return &Category{
		BaseEntity:  shared.NewBaseEntity(),
		ShopID:      shopID,
		Name:        name,
		Description: description,
	}, nil
}
