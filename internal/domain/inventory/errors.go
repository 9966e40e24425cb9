package inventory

import (
	"fmt"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InsufficientStockError is returned when a consumption would drive on-hand
// quantity negative. It unwraps to shared.ErrInsufficientStock.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	ItemName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", e.ItemName, e.Available, e.Requested)
}

// Unwrap returns the sentinel domain error
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// Field attributes the error to the quantity input
func (e *InsufficientStockError) Field() string {
	return "quantity"
}

// Code returns the domain error code
func (e *InsufficientStockError) Code() string {
	return shared.ErrInsufficientStock.Code
}
