package finance

import (
	"fmt"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtOverpaymentError is returned when a payment exceeds what is still owed.
// It unwraps to shared.ErrDebtOverpayment.
type DebtOverpaymentError struct {
	DebtID    uuid.UUID
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *DebtOverpaymentError) Error() string {
	return fmt.Sprintf("Payment of %s exceeds the remaining balance of %s on debt #%s",
		e.Attempted.StringFixed(2), e.Remaining.StringFixed(2), shared.ShortRef(e.DebtID))
}

// Unwrap returns the sentinel domain error
func (e *DebtOverpaymentError) Unwrap() error {
	return shared.ErrDebtOverpayment
}

// Field attributes the error to the amount input
func (e *DebtOverpaymentError) Field() string {
	return "amount"
}

// Code returns the domain error code
func (e *DebtOverpaymentError) Code() string {
	return shared.ErrDebtOverpayment.Code
}
