package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	TZS Currency = "TZS" // Tanzanian Shilling (default)
	KES Currency = "KES" // Kenyan Shilling
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = TZS

// Money is a value object representing monetary amounts.
// It is immutable: all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyTZS creates Money in TZS
func NewMoneyTZS(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: TZS}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

var printer = message.NewPrinter(language.English)

// Format renders the amount with thousands separators and no fractional
// part, e.g. "TZS 12,500". Shilling amounts are never shown with cents.
func (m Money) Format() string {
	whole := m.amount.Round(0).IntPart()
	return printer.Sprintf("%s %d", m.currency, whole)
}

// FormatAmount renders a bare decimal amount in the default currency
func FormatAmount(amount decimal.Decimal) string {
	return NewMoneyTZS(amount).Format()
}

// FormatIn renders amount in currency; an empty currency means the default
func FormatIn(currency Currency, amount decimal.Decimal) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}.Format()
}

// String implements fmt.Stringer
func (m Money) String() string {
	return m.Format()
}
