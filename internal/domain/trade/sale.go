package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was (or will be) paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCredit       PaymentMethod = "credit"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodMobileMoney, PaymentMethodCredit:
		return true
	}
	return false
}

// SettlementNotePrefix starts the notes of every settlement sale
const SettlementNotePrefix = "Payment for Debt #"

// Sale is the aggregate root for a point-of-sale transaction.
// TotalAmount is derived from the persisted lines, except for settlement
// sales whose total is the payment amount and is fixed at creation.
type Sale struct {
	shared.ShopAggregateRoot
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	SaleDate      time.Time       `gorm:"not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsPaid        bool            `gorm:"not null;index"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null;default:'cash'"`
	Notes         string          `gorm:"type:text"`
	SettledDebtID *uuid.UUID      `gorm:"type:uuid;index"`

	Lines []SaleLineItem `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates an empty sale with a zero total
func NewSale(shopID uuid.UUID, customerID *uuid.UUID, saleDate time.Time, isPaid bool, method PaymentMethod, notes string) (*Sale, error) {
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}
	return &Sale{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shopID),
		CustomerID:        customerID,
		SaleDate:          saleDate,
		TotalAmount:       decimal.Zero,
		IsPaid:            isPaid,
		PaymentMethod:     method,
		Notes:             strings.TrimSpace(notes),
		Lines:             make([]SaleLineItem, 0),
	}, nil
}

// NewSettlementSale synthesizes the sale-shaped receipt of a debt payment.
// It has no lines, is paid, and carries both a structured debt reference and
// a human readable one in its notes.
func NewSettlementSale(shopID uuid.UUID, customerID *uuid.UUID, debtID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, extraNotes string) (*Sale, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if method == PaymentMethodCredit {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "A debt cannot be settled on credit")
	}
	notes := SettlementNote(debtID)
	if extra := strings.TrimSpace(extraNotes); extra != "" {
		notes += " - " + extra
	}
	sale, err := NewSale(shopID, customerID, paidAt, true, method, notes)
	if err != nil {
		return nil, err
	}
	sale.TotalAmount = amount
	sale.SettledDebtID = &debtID
	return sale, nil
}

// SettlementNote is the human readable debt reference written to settlement notes
func SettlementNote(debtID uuid.UUID) string {
	return SettlementNotePrefix + shared.ShortRef(debtID)
}

// IsSettlement reports whether the sale is a synthesized debt payment
func (s *Sale) IsSettlement() bool {
	return s.SettledDebtID != nil
}

// IsWalkIn reports whether the sale has no customer
func (s *Sale) IsWalkIn() bool {
	return s.CustomerID == nil
}

// Reference returns a short label for the sale
func (s *Sale) Reference() string {
	return shared.ShortRef(s.ID)
}

// EnsureLinesMutable rejects line changes on settlement sales
func (s *Sale) EnsureLinesMutable() error {
	if s.IsSettlement() {
		return shared.NewDomainError("SETTLEMENT_IMMUTABLE", "Settlement records carry no line items")
	}
	return nil
}

// RecomputeTotal sets the total to the sum of the given persisted lines
func (s *Sale) RecomputeTotal(lines []SaleLineItem) error {
	if err := s.EnsureLinesMutable(); err != nil {
		return err
	}
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].LineTotal)
	}
	s.TotalAmount = total
	s.Lines = lines
	s.Touch()
	s.IncrementVersion()
	return nil
}

// FindLine returns the line drawing from the given stock item, if any
func (s *Sale) FindLine(stockItemID uuid.UUID) *SaleLineItem {
	for i := range s.Lines {
		if s.Lines[i].StockItemID == stockItemID {
			return &s.Lines[i]
		}
	}
	return nil
}

// HasLines reports whether the sale has loaded lines
func (s *Sale) HasLines() bool {
	return len(s.Lines) > 0
}

// MarkPaid flags the sale as paid. Returns false if it already was.
func (s *Sale) MarkPaid(method PaymentMethod) (bool, error) {
	if s.IsPaid {
		return false, nil
	}
	if method != "" {
		if !method.IsValid() || method == PaymentMethodCredit {
			return false, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Cannot mark paid with method %q", method))
		}
		s.PaymentMethod = method
	}
	s.IsPaid = true
	s.Touch()
	s.IncrementVersion()
	return true, nil
}

// NeedsAutoDebt reports whether an unpaid customer sale should carry a debt
func (s *Sale) NeedsAutoDebt() bool {
	return !s.IsPaid && !s.IsWalkIn() && !s.IsSettlement()
}
