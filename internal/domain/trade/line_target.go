package trade

import (
	"fmt"

	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LineTarget is the stock a sale line draws from: either a retail item or a
// wholesale product sold by the carton. The set of implementations is closed.
type LineTarget interface {
	StockItemID() uuid.UUID
	Kind() inventory.ItemKind
	isLineTarget()
}

// RetailTarget points a line at a retail stock item
type RetailTarget struct {
	ItemID uuid.UUID
}

func (t RetailTarget) StockItemID() uuid.UUID    { return t.ItemID }
func (t RetailTarget) Kind() inventory.ItemKind { return inventory.ItemKindRetail }
func (RetailTarget) isLineTarget()              {}

// WholesaleTarget points a line at a wholesale product
type WholesaleTarget struct {
	ProductID uuid.UUID
}

func (t WholesaleTarget) StockItemID() uuid.UUID    { return t.ProductID }
func (t WholesaleTarget) Kind() inventory.ItemKind { return inventory.ItemKindWholesale }
func (WholesaleTarget) isLineTarget()              {}

// NewLineTarget builds a target from its persisted kind tag and stock item ID
func NewLineTarget(kind inventory.ItemKind, id uuid.UUID) (LineTarget, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Stock item ID cannot be empty")
	}
	switch kind {
	case inventory.ItemKindRetail:
		return RetailTarget{ItemID: id}, nil
	case inventory.ItemKindWholesale:
		return WholesaleTarget{ProductID: id}, nil
	default:
		return nil, shared.NewDomainError("INVALID_KIND", fmt.Sprintf("Unknown line target kind %q", kind))
	}
}

// CheckTarget verifies that the stock item matches the kind the target claims
func CheckTarget(target LineTarget, item *inventory.StockItem) error {
	if item.ID != target.StockItemID() {
		return shared.NewDomainError("ITEM_MISMATCH", "Stock item does not match the line target")
	}
	if item.Kind != target.Kind() {
		return shared.NewDomainError("ITEM_KIND_MISMATCH",
			fmt.Sprintf("%s is a %s item, not %s", item.Name, item.Kind, target.Kind()))
	}
	if !item.IsActive {
		return shared.NewDomainError("ITEM_INACTIVE", fmt.Sprintf("%s is not available for sale", item.Name))
	}
	return nil
}
