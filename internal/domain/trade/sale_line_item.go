package trade

import (
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLineItem is one row of a sale. At most one line exists per (sale, stock item).
type SaleLineItem struct {
	shared.BaseEntity
	SaleID      uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_sale_line_sale_item,priority:1"`
	TargetKind  inventory.ItemKind `gorm:"type:varchar(20);not null"`
	StockItemID uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_sale_line_sale_item,priority:2"`
	Quantity    int                `gorm:"not null"`
	UnitPrice   decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SaleLineItem) TableName() string {
	return "sale_line_items"
}

// NewSaleLineItem creates a new line
func NewSaleLineItem(saleID uuid.UUID, target LineTarget, quantity int, unitPrice decimal.Decimal) (*SaleLineItem, error) {
	if target == nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Line target is required")
	}
	if err := validateLine(quantity, unitPrice); err != nil {
		return nil, err
	}
	line := &SaleLineItem{
		BaseEntity:  shared.NewBaseEntity(),
		SaleID:      saleID,
		TargetKind:  target.Kind(),
		StockItemID: target.StockItemID(),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	line.recalculate()
	return line, nil
}

func validateLine(quantity int, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.LessThan(decimal.RequireFromString("0.01")) {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be at least 0.01")
	}
	return nil
}

// Target returns the typed line target
func (l *SaleLineItem) Target() LineTarget {
	if l.TargetKind == inventory.ItemKindWholesale {
		return WholesaleTarget{ProductID: l.StockItemID}
	}
	return RetailTarget{ItemID: l.StockItemID}
}

// Merge adds quantity to the line and returns the ledger delta to apply
func (l *SaleLineItem) Merge(additional int) (int, error) {
	if additional <= 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	l.Quantity += additional
	l.recalculate()
	return -additional, nil
}

// SetQuantity changes the quantity and returns the ledger delta to apply
// (positive when units are handed back to stock).
func (l *SaleLineItem) SetQuantity(quantity int) (int, error) {
	if err := validateLine(quantity, l.UnitPrice); err != nil {
		return 0, err
	}
	delta := l.Quantity - quantity
	l.Quantity = quantity
	l.recalculate()
	return delta, nil
}

// SetUnitPrice changes the unit price
func (l *SaleLineItem) SetUnitPrice(unitPrice decimal.Decimal) error {
	if err := validateLine(l.Quantity, unitPrice); err != nil {
		return err
	}
	l.UnitPrice = unitPrice
	l.recalculate()
	return nil
}

// Retarget points the line at a different stock item
func (l *SaleLineItem) Retarget(target LineTarget) {
	l.TargetKind = target.Kind()
	l.StockItemID = target.StockItemID()
	l.Touch()
}

// CostOf returns quantity times the given unit cost
func (l *SaleLineItem) CostOf(unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l *SaleLineItem) recalculate() {
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	l.Touch()
}
