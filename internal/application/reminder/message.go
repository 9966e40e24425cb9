package reminder

import (
	"fmt"
	"time"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultCurrency prefixes amounts in messages
const DefaultCurrency = string(valueobject.DefaultCurrency)

const dueDateLayout = "02/01/2006"

// FormatAmount renders a whole-unit amount with thousands separators
func FormatAmount(currency string, amount decimal.Decimal) string {
	return valueobject.FormatIn(valueobject.Currency(currency), amount)
}

// Composer builds reminder texts in Swahili
type Composer struct {
	Currency string
}

// NewComposer creates a composer; an empty currency becomes TZS
func NewComposer(currency string) Composer {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Composer{Currency: currency}
}

// DebtMessage composes the reminder for a single debt as seen on today
func (c Composer) DebtMessage(customerName string, debt *finance.Debt, today time.Time) string {
	due := debt.DueDate.Format(dueDateLayout)
	switch {
	case debt.IsPaid():
		return fmt.Sprintf("Habari %s, deni lako la %s limekwisha lipwa. Asante kwa kufanya biashara nasi.",
			customerName, FormatAmount(c.Currency, debt.Amount))
	case debt.IsOverdue(today):
		return fmt.Sprintf("Habari %s, deni lako la %s lilikwisha muda wake tarehe %s. Tafadhali lipa haraka ili tusiwe na shida.",
			customerName, FormatAmount(c.Currency, debt.RemainingAmount()), due)
	default:
		return fmt.Sprintf("Habari %s, una deni la %s linalotakiwa kulipwa kabla ya %s. Tafadhali lipa kwa wakati.",
			customerName, FormatAmount(c.Currency, debt.RemainingAmount()), due)
	}
}

// CustomerMessage composes one summary reminder over a customer's open debts.
// It returns false when there is nothing to remind about.
func (c Composer) CustomerMessage(customerName string, debts []finance.Debt, today time.Time) (string, bool) {
	var (
		remaining = decimal.Zero
		earliest  time.Time
		open      int
		overdue   int
	)
	for i := range debts {
		d := &debts[i]
		if d.IsPaid() {
			continue
		}
		open++
		remaining = remaining.Add(d.RemainingAmount())
		if earliest.IsZero() || d.DueDate.Before(earliest) {
			earliest = d.DueDate
		}
		if d.IsOverdue(today) {
			overdue++
		}
	}
	if open == 0 {
		return "", false
	}

	amount := FormatAmount(c.Currency, remaining)
	due := earliest.Format(dueDateLayout)
	if overdue > 0 {
		return fmt.Sprintf("Habari %s, una madeni %d yenye jumla ya %s. Deni la kwanza lilipaswa kulipwa tarehe %s na madeni %d yamepita muda wake. Tafadhali lipa haraka ili tusiwe na shida.",
			customerName, open, amount, due, overdue), true
	}
	return fmt.Sprintf("Habari %s, una madeni %d yenye jumla ya %s yanayotakiwa kulipwa kuanzia %s. Tafadhali lipa kwa wakati.",
		customerName, open, amount, due), true
}
