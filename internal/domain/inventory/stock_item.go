package inventory

import (
	"strings"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemKind distinguishes retail units from wholesale products sold by the carton
type ItemKind string

const (
	ItemKindRetail    ItemKind = "retail"
	ItemKindWholesale ItemKind = "wholesale"
)

// IsValid checks if the item kind is known
func (k ItemKind) IsValid() bool {
	return k == ItemKindRetail || k == ItemKindWholesale
}

// String returns the string representation
func (k ItemKind) String() string {
	return string(k)
}

// StockItem is a trackable stock-keeping unit with price, cost and on-hand quantity.
// OnHandQuantity is only ever changed through ApplyDelta.
type StockItem struct {
	shared.ShopAggregateRoot
	Kind             ItemKind        `gorm:"type:varchar(20);not null;default:'retail'"`
	SKU              string          `gorm:"type:varchar(50);not null;index"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Description      string          `gorm:"type:text"`
	CategoryID       *uuid.UUID      `gorm:"type:uuid;index"`
	OnHandQuantity   int             `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ReorderThreshold int             `gorm:"not null;default:0"`
	UnitsPerCarton   int             `gorm:"not null;default:1"`
	Supplier         string          `gorm:"type:varchar(200)"`
	IsActive         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a new stock item. Quantity starts at initialQty.
func NewStockItem(shopID uuid.UUID, kind ItemKind, sku, name string, unitCost, unitPrice decimal.Decimal, initialQty int) (*StockItem, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Item kind must be retail or wholesale")
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if unitCost.IsNegative() || unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Cost and price cannot be negative")
	}
	if initialQty < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}

	return &StockItem{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shopID),
		Kind:              kind,
		SKU:               strings.ToUpper(sku),
		Name:              strings.TrimSpace(name),
		OnHandQuantity:    initialQty,
		UnitCost:          unitCost,
		UnitPrice:         unitPrice,
		UnitsPerCarton:    1,
		IsActive:          true,
	}, nil
}

// ApplyDelta applies a signed quantity change. Negative deltas consume stock,
// positive deltas restore it. A consumption that would drive the quantity
// below zero fails with *InsufficientStockError and leaves the item untouched.
func (i *StockItem) ApplyDelta(delta int) (int, error) {
	if delta == 0 {
		return i.OnHandQuantity, nil
	}
	if i.OnHandQuantity+delta < 0 {
		return i.OnHandQuantity, &InsufficientStockError{
			ItemID:    i.ID,
			ItemName:  i.Name,
			Available: i.OnHandQuantity,
			Requested: -delta,
		}
	}
	i.OnHandQuantity += delta
	i.Touch()
	i.IncrementVersion()
	return i.OnHandQuantity, nil
}

// CanFulfill reports whether quantity units can be consumed
func (i *StockItem) CanFulfill(quantity int) bool {
	return quantity <= i.OnHandQuantity
}

// IsLowStock reports whether the item is at or below its reorder threshold
func (i *StockItem) IsLowStock() bool {
	return i.OnHandQuantity <= i.ReorderThreshold
}

// UnitProfit is the margin earned on a single unit
func (i *StockItem) UnitProfit() decimal.Decimal {
	return i.UnitPrice.Sub(i.UnitCost)
}

// ProfitMargin returns the margin as a percentage of the unit price
func (i *StockItem) ProfitMargin() decimal.Decimal {
	if i.UnitPrice.IsZero() {
		return decimal.Zero
	}
	return i.UnitProfit().Div(i.UnitPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// StockValue is the on-hand quantity valued at cost
func (i *StockItem) StockValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.OnHandQuantity)))
}

// SetPricing updates cost and unit price
func (i *StockItem) SetPricing(unitCost, unitPrice decimal.Decimal) error {
	if unitCost.IsNegative() || unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost and price cannot be negative")
	}
	i.UnitCost = unitCost
	i.UnitPrice = unitPrice
	i.Touch()
	return nil
}

// SetReorderThreshold updates the minimum stock level
func (i *StockItem) SetReorderThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Reorder threshold cannot be negative")
	}
	i.ReorderThreshold = threshold
	i.Touch()
	return nil
}

// SetUnitsPerCarton sets the carton size of a wholesale product
func (i *StockItem) SetUnitsPerCarton(units int) error {
	if units < 1 {
		return shared.NewDomainError("INVALID_CARTON_SIZE", "Units per carton must be at least 1")
	}
	if i.Kind != ItemKindWholesale && units != 1 {
		return shared.NewDomainError("INVALID_CARTON_SIZE", "Only wholesale products are sold by the carton")
	}
	i.UnitsPerCarton = units
	i.Touch()
	return nil
}

// Deactivate hides the item from sale and low-stock reports
func (i *StockItem) Deactivate() {
	i.IsActive = false
	i.Touch()
}

// Activate makes the item available again
func (i *StockItem) Activate() {
	i.IsActive = true
	i.Touch()
}
