package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebt(t *testing.T, amount int64, due time.Time) *finance.Debt {
	t.Helper()
	debt, err := finance.NewDebt(uuid.New(), uuid.New(), uuid.New(), 1, decimal.NewFromInt(amount), due, "")
	require.NoError(t, err)
	return debt
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "TZS 12,500", FormatAmount("TZS", decimal.NewFromInt(12500)))
	assert.Equal(t, "TZS 1,000,001", FormatAmount("TZS", decimal.RequireFromString("1000000.6")))
	assert.Equal(t, "KES 0", FormatAmount("KES", decimal.Zero))
}

func TestComposer_DebtMessage(t *testing.T) {
	c := NewComposer("")
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("pending", func(t *testing.T) {
		debt := newDebt(t, 5000, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
		msg := c.DebtMessage("Asha", debt, today)
		assert.Equal(t, "Habari Asha, una deni la TZS 5,000 linalotakiwa kulipwa kabla ya 15/03/2025. Tafadhali lipa kwa wakati.", msg)
	})

	t.Run("overdue uses remaining amount", func(t *testing.T) {
		debt := newDebt(t, 5000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, debt.ApplyPayment(decimal.NewFromInt(2000)))
		msg := c.DebtMessage("Asha", debt, today)
		assert.Contains(t, msg, "TZS 3,000")
		assert.Contains(t, msg, "lilikwisha muda wake tarehe 01/03/2025")
	})

	t.Run("paid", func(t *testing.T) {
		debt := newDebt(t, 5000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, debt.ApplyPayment(decimal.NewFromInt(5000)))
		msg := c.DebtMessage("Asha", debt, today)
		assert.Contains(t, msg, "limekwisha lipwa")
	})
}

func TestComposer_CustomerMessage(t *testing.T) {
	c := NewComposer("TZS")
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("no open debts", func(t *testing.T) {
		paid := newDebt(t, 1000, today)
		require.NoError(t, paid.ApplyPayment(decimal.NewFromInt(1000)))
		_, ok := c.CustomerMessage("Juma", []finance.Debt{*paid}, today)
		assert.False(t, ok)
	})

	t.Run("overdue summary", func(t *testing.T) {
		debts := []finance.Debt{
			*newDebt(t, 2000, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)),
			*newDebt(t, 3500, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
		}
		msg, ok := c.CustomerMessage("Juma", debts, today)
		require.True(t, ok)
		assert.Equal(t, "Habari Juma, una madeni 2 yenye jumla ya TZS 5,500. Deni la kwanza lilipaswa kulipwa tarehe 05/03/2025 na madeni 1 yamepita muda wake. Tafadhali lipa haraka ili tusiwe na shida.", msg)
	})

	t.Run("pending summary", func(t *testing.T) {
		debts := []finance.Debt{*newDebt(t, 2000, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))}
		msg, ok := c.CustomerMessage("Juma", debts, today)
		require.True(t, ok)
		assert.Contains(t, msg, "yanayotakiwa kulipwa kuanzia 12/03/2025")
	})
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Send(context.Background(), "+255700000000", "hi"))
}
