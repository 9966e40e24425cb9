package finance

import (
	"fmt"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtStatus is the payment state of a debt.
// Overdue is never stored; it is derived on read from the due date.
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusPaid    DebtStatus = "paid"
	DebtStatusOverdue DebtStatus = "overdue"
)

// IsValid checks if the status is known
func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusPending, DebtStatusPartial, DebtStatusPaid, DebtStatusOverdue:
		return true
	}
	return false
}

// DisplayName returns the human label for the status
func (s DebtStatus) DisplayName() string {
	switch s {
	case DebtStatusPending:
		return "Pending"
	case DebtStatusPartial:
		return "Partially Paid"
	case DebtStatusPaid:
		return "Paid"
	case DebtStatusOverdue:
		return "Overdue"
	}
	return string(s)
}

// AutoDebtGraceDays is how long a customer has to pay an unpaid sale
const AutoDebtGraceDays = 7

// Debt is money a customer owes for stock handed over on credit
type Debt struct {
	shared.ShopAggregateRoot
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          int             `gorm:"not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DueDate           time.Time       `gorm:"type:date;not null;index"`
	Status            DebtStatus      `gorm:"type:varchar(20);not null;default:'pending';index"`
	OriginatingSaleID *uuid.UUID      `gorm:"type:uuid;index"`
	Description       string          `gorm:"type:text"`
	AutoCreated       bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Debt) TableName() string {
	return "debts"
}

// ResolveDebtAmount fills in the owed amount from the item price.
// A zero amount means unit price times quantity; an amount equal to the unit
// price is read as a per-unit figure and multiplied by the quantity.
func ResolveDebtAmount(amount, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	if amount.IsZero() {
		return unitPrice.Mul(qty)
	}
	if quantity > 1 && amount.Equal(unitPrice) {
		return amount.Mul(qty)
	}
	return amount
}

// NewDebt creates a pending debt
func NewDebt(shopID, customerID, stockItemID uuid.UUID, quantity int, amount decimal.Decimal, dueDate time.Time, description string) (*Debt, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "A debt needs a customer")
	}
	if stockItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "A debt needs a stock item")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debt amount must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}
	return &Debt{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shopID),
		CustomerID:        customerID,
		StockItemID:       stockItemID,
		Quantity:          quantity,
		Amount:            amount,
		PaidAmount:        decimal.Zero,
		DueDate:           CivilDate(dueDate),
		Status:            DebtStatusPending,
		Description:       description,
	}, nil
}

// NewAutoDebt creates the debt carried by an unpaid customer sale.
// Its due date is the sale's local calendar date plus the grace period.
func NewAutoDebt(shopID, customerID, saleID, stockItemID uuid.UUID, quantity int, amount decimal.Decimal, saleDate time.Time, loc *time.Location) (*Debt, error) {
	d, err := NewDebt(shopID, customerID, stockItemID, quantity, amount, AutoDebtDueDate(saleDate, loc),
		fmt.Sprintf("Auto-created from sale #%s", shared.ShortRef(saleID)))
	if err != nil {
		return nil, err
	}
	d.AutoCreated = true
	d.OriginatingSaleID = &saleID
	return d, nil
}

// AutoDebtDueDate is the due date of an auto-created debt for a sale made at saleDate
func AutoDebtDueDate(saleDate time.Time, loc *time.Location) time.Time {
	return CivilDate(shared.LocalDate(saleDate, loc)).AddDate(0, 0, AutoDebtGraceDays)
}

// CivilDate strips the time and zone of t, keeping its own calendar date
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RemainingAmount is what is still owed, never below zero
func (d *Debt) RemainingAmount() decimal.Decimal {
	remaining := d.Amount.Sub(d.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ValidatePayment checks a payment amount without changing the debt
func (d *Debt) ValidatePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(d.RemainingAmount()) {
		return &DebtOverpaymentError{
			DebtID:    d.ID,
			Remaining: d.RemainingAmount(),
			Attempted: amount,
		}
	}
	return nil
}

// ApplyPayment records a payment against the debt and recomputes its status.
// Overpayment is rejected before anything changes.
func (d *Debt) ApplyPayment(amount decimal.Decimal) error {
	if err := d.ValidatePayment(amount); err != nil {
		return err
	}
	d.PaidAmount = d.PaidAmount.Add(amount)
	d.recalculateStatus()
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Settle marks the whole debt as paid and returns the amount that was still owed
func (d *Debt) Settle() decimal.Decimal {
	remaining := d.RemainingAmount()
	d.PaidAmount = d.Amount
	d.recalculateStatus()
	d.Touch()
	d.IncrementVersion()
	return remaining
}

// LinkOriginatingSale sets the originating sale if none is set yet.
// An existing link is never overwritten.
func (d *Debt) LinkOriginatingSale(saleID uuid.UUID) bool {
	if d.OriginatingSaleID != nil {
		return false
	}
	d.OriginatingSaleID = &saleID
	d.Touch()
	return true
}

// SyncWithSale updates an auto-created debt after its sale changed
func (d *Debt) SyncWithSale(total decimal.Decimal, stockItemID uuid.UUID, quantity int) error {
	if !d.AutoCreated {
		return shared.NewDomainError("INVALID_STATE", "Only auto-created debts follow their sale")
	}
	if err := d.CheckSaleTotal(total); err != nil {
		return err
	}
	d.Amount = total
	d.StockItemID = stockItemID
	d.Quantity = quantity
	d.recalculateStatus()
	d.Touch()
	d.IncrementVersion()
	return nil
}

// CheckSaleTotal rejects a sale total below what has already been paid
func (d *Debt) CheckSaleTotal(total decimal.Decimal) error {
	if total.LessThan(d.PaidAmount) {
		return shared.NewDomainError("DEBT_BELOW_PAID",
			fmt.Sprintf("Sale total %s cannot drop below the %s already paid", total.StringFixed(2), d.PaidAmount.StringFixed(2)))
	}
	return nil
}

// SetDueDate changes the due date
func (d *Debt) SetDueDate(dueDate time.Time) {
	d.DueDate = CivilDate(dueDate)
	d.Touch()
}

// HasPayments reports whether anything has been paid
func (d *Debt) HasPayments() bool {
	return d.PaidAmount.IsPositive()
}

// IsPaid reports whether the debt is fully paid
func (d *Debt) IsPaid() bool {
	return d.Status == DebtStatusPaid
}

// IsOverdue reports whether the due date has passed without full payment.
// today is a calendar date in the shop's local zone.
func (d *Debt) IsOverdue(today time.Time) bool {
	return !d.IsPaid() && CivilDate(d.DueDate).Before(CivilDate(today))
}

// DaysOverdue returns how many days past the due date the debt is
func (d *Debt) DaysOverdue(today time.Time) int {
	if !d.IsOverdue(today) {
		return 0
	}
	return int(CivilDate(today).Sub(CivilDate(d.DueDate)).Hours() / 24)
}

// DisplayStatus returns the stored status with the overdue overlay applied
func (d *Debt) DisplayStatus(today time.Time) DebtStatus {
	if d.IsOverdue(today) {
		return DebtStatusOverdue
	}
	return d.Status
}

// Reference returns the short label used in notes and messages
func (d *Debt) Reference() string {
	return shared.ShortRef(d.ID)
}

// PaymentRatio is the share of the debt a payment amount represents
func (d *Debt) PaymentRatio(amount decimal.Decimal) decimal.Decimal {
	if d.Amount.IsZero() {
		return decimal.Zero
	}
	return amount.Div(d.Amount)
}

func (d *Debt) recalculateStatus() {
	switch {
	case d.PaidAmount.GreaterThanOrEqual(d.Amount):
		d.Status = DebtStatusPaid
	case d.PaidAmount.IsPositive():
		d.Status = DebtStatusPartial
	default:
		d.Status = DebtStatusPending
	}
}
