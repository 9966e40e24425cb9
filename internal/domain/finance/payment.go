package finance

import (
	"strings"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a single installment paid against a debt.
// Each payment has a settlement sale that makes it visible to sales reports.
type Payment struct {
	shared.BaseEntity
	ShopID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	DebtID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	PaymentDate      time.Time           `gorm:"not null"`
	PaymentMethod    trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	Notes            string              `gorm:"type:text"`
	SettlementSaleID *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment for a debt
func NewPayment(debt *Debt, amount decimal.Decimal, method trade.PaymentMethod, paidAt time.Time, notes string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if method == "" {
		method = trade.PaymentMethodCash
	}
	if !method.IsValid() || method == trade.PaymentMethodCredit {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payments must use cash, card, bank transfer or mobile money")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		ShopID:        debt.ShopID,
		DebtID:        debt.ID,
		Amount:        amount,
		PaymentDate:   paidAt,
		PaymentMethod: method,
		Notes:         strings.TrimSpace(notes),
	}, nil
}

// AttachSettlement records the settlement sale synthesized for the payment
func (p *Payment) AttachSettlement(saleID uuid.UUID) {
	p.SettlementSaleID = &saleID
}
