package reminder_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/duka/backend/internal/application/reminder"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/infrastructure/cache"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var eat = time.FixedZone("EAT", 3*3600)

type sentMessage struct {
	phone string
	text  string
}

type recordingSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor string
}

func (s *recordingSender) Send(ctx context.Context, phone, message string) error {
	if phone == s.failFor {
		return errors.New("gateway unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{phone: phone, text: message})
	return nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type reminderFixture struct {
	db      *gorm.DB
	shopID  uuid.UUID
	itemID  uuid.UUID
	sender  *recordingSender
	service *reminder.ReminderService
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	s := testutil.SeedShop(t, db, shop.ShopTypeDukaLaVinywaji)
	sender := &recordingSender{}
	svc := reminder.NewReminderService(persistence.NewRepositories(db), sender, reminder.NewComposer(""), eat, nil)
	svc.SetClock(testutil.FixedClock(time.Date(2025, 3, 20, 9, 0, 0, 0, eat)))
	return &reminderFixture{
		db:      db,
		shopID:  s.ID,
		itemID:  testutil.SeedStockItem(t, db, s.ID, "SODA-1", "1000", "600", 100).ID,
		sender:  sender,
		service: svc,
	}
}

func (f *reminderFixture) debt(t *testing.T, shopID, customerID uuid.UUID, amount int64, due time.Time) *finance.Debt {
	t.Helper()
	d, err := finance.NewDebt(shopID, customerID, f.itemID, 1, decimal.NewFromInt(amount), due, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormDebtRepository(f.db).Save(context.Background(), d))
	return d
}

func TestReminderService_RemindDebt(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	asha := testutil.SeedCustomer(t, f.db, f.shopID, "Asha", "0712345678")
	d := f.debt(t, f.shopID, asha.ID, 5000, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC))

	resp, err := f.service.RemindDebt(ctx, f.shopID, d.ID)
	require.NoError(t, err)
	assert.True(t, resp.Sent)
	assert.Equal(t, "+255712345678", resp.Phone)
	assert.Equal(t, "Habari Asha, una deni la TZS 5,000 linalotakiwa kulipwa kabla ya 25/03/2025. Tafadhali lipa kwa wakati.", resp.Message)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, resp.Message, msgs[0].text)

	t.Run("customer without phone", func(t *testing.T) {
		silent := testutil.SeedCustomer(t, f.db, f.shopID, "Kimya", "")
		d := f.debt(t, f.shopID, silent.ID, 1000, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC))
		_, err := f.service.RemindDebt(ctx, f.shopID, d.ID)
		assert.ErrorIs(t, err, reminder.ErrNoPhone)
	})

	t.Run("debt of another shop", func(t *testing.T) {
		_, err := f.service.RemindDebt(ctx, uuid.New(), d.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReminderService_RemindCustomer(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	asha := testutil.SeedCustomer(t, f.db, f.shopID, "Asha", "0712345678")
	f.debt(t, f.shopID, asha.ID, 5000, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	f.debt(t, f.shopID, asha.ID, 2000, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC))

	resp, err := f.service.RemindCustomer(ctx, f.shopID, asha.ID)
	require.NoError(t, err)
	assert.Equal(t, "Habari Asha, una madeni 2 yenye jumla ya TZS 7,000. Deni la kwanza lilipaswa kulipwa tarehe 10/03/2025 na madeni 1 yamepita muda wake. Tafadhali lipa haraka ili tusiwe na shida.", resp.Message)

	clean := testutil.SeedCustomer(t, f.db, f.shopID, "Safi", "0755000000")
	_, err = f.service.RemindCustomer(ctx, f.shopID, clean.ID)
	assert.ErrorIs(t, err, reminder.ErrNoOpenDebts)
}

func TestReminderService_Sweep(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	overdue := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	asha := testutil.SeedCustomer(t, f.db, f.shopID, "Asha", "0712345678")
	f.debt(t, f.shopID, asha.ID, 5000, overdue)
	f.debt(t, f.shopID, asha.ID, 3000, overdue)
	noPhone := testutil.SeedCustomer(t, f.db, f.shopID, "Kimya", "")
	f.debt(t, f.shopID, noPhone.ID, 1000, overdue)
	notDue := testutil.SeedCustomer(t, f.db, f.shopID, "Baadaye", "0766000000")
	f.debt(t, f.shopID, notDue.ID, 1000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	other := testutil.SeedShop(t, f.db, shop.ShopTypeStationery)
	unlucky := testutil.SeedCustomer(t, f.db, other.ID, "Bahati", "0777000000")
	f.debt(t, other.ID, unlucky.ID, 1000, overdue)
	f.sender.failFor = "+255777000000"

	result, err := f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Shops)
	assert.Equal(t, 1, result.Sent, "one message per customer")
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.Locked)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+255712345678", msgs[0].phone)
	assert.Contains(t, msgs[0].text, "TZS 8,000")
}

func TestReminderService_SweepSkipsWhenLocked(t *testing.T) {
	f := newReminderFixture(t)
	ctx := context.Background()
	asha := testutil.SeedCustomer(t, f.db, f.shopID, "Asha", "0712345678")
	f.debt(t, f.shopID, asha.ID, 5000, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))

	locker := cache.NewLocalLocker()
	f.service.SetLocker(locker)

	release, err := locker.Obtain(ctx, "duka:reminders:sweep", time.Minute)
	require.NoError(t, err)

	result, err := f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.True(t, result.Locked)
	assert.Empty(t, f.sender.messages())

	require.NoError(t, release(ctx))
	result, err = f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	// the sweep released its own lock
	_, err = locker.Obtain(ctx, "duka:reminders:sweep", time.Minute)
	assert.NoError(t, err)
}
