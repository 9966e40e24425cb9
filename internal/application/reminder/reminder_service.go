package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sweepLockKey = "duka:reminders:sweep"
	sweepLockTTL = 10 * time.Minute
)

var (
	// ErrNoPhone is returned when the customer cannot receive messages
	ErrNoPhone = shared.NewDomainError("NO_PHONE", "Customer has no phone number")

	// ErrNoOpenDebts is returned when a customer owes nothing
	ErrNoOpenDebts = shared.NewDomainError("NO_OPEN_DEBTS", "Customer has no open debts")
)

// ReminderResponse describes a sent reminder
type ReminderResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Phone      string    `json:"phone"`
	Message    string    `json:"message"`
	Sent       bool      `json:"sent"`
}

// SweepResult summarizes a reminder sweep
type SweepResult struct {
	Shops   int  `json:"shops"`
	Sent    int  `json:"sent"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
	Locked  bool `json:"locked"`
}

// ReminderService composes debt reminders and hands them to a Sender
type ReminderService struct {
	repos           uow.Repositories
	sender          Sender
	locker          Locker
	composer        Composer
	location        *time.Location
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewReminderService creates a new ReminderService
func NewReminderService(repos uow.Repositories, sender Sender, composer Composer, location *time.Location, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &ReminderService{
		repos:    repos,
		sender:   sender,
		composer: composer,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// SetLocker guards sweeps with a distributed lock
func (s *ReminderService) SetLocker(locker Locker) {
	s.locker = locker
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReminderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetClock overrides the time source
func (s *ReminderService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ReminderService) today() time.Time {
	return shared.LocalDate(s.now(), s.location)
}

// RemindDebt sends the reminder for one debt
func (s *ReminderService) RemindDebt(ctx context.Context, shopID, debtID uuid.UUID) (*ReminderResponse, error) {
	debt, err := s.repos.Debts().FindByIDForShop(ctx, shopID, debtID)
	if err != nil {
		return nil, err
	}
	customer, err := s.repos.Customers().FindByIDForShop(ctx, shopID, debt.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.HasPhone() {
		return nil, ErrNoPhone
	}
	text := s.composer.DebtMessage(customer.Name, debt, s.today())
	if err := s.send(ctx, shopID, customer, text); err != nil {
		return nil, err
	}
	return &ReminderResponse{CustomerID: customer.ID, Phone: customer.Phone, Message: text, Sent: true}, nil
}

// RemindCustomer sends one summary reminder over all open debts of a customer
func (s *ReminderService) RemindCustomer(ctx context.Context, shopID, customerID uuid.UUID) (*ReminderResponse, error) {
	customer, err := s.repos.Customers().FindByIDForShop(ctx, shopID, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.HasPhone() {
		return nil, ErrNoPhone
	}
	debts, err := s.repos.Debts().FindUnpaidByCustomer(ctx, shopID, customerID)
	if err != nil {
		return nil, err
	}
	text, ok := s.composer.CustomerMessage(customer.Name, debts, s.today())
	if !ok {
		return nil, ErrNoOpenDebts
	}
	if err := s.send(ctx, shopID, customer, text); err != nil {
		return nil, err
	}
	return &ReminderResponse{CustomerID: customer.ID, Phone: customer.Phone, Message: text, Sent: true}, nil
}

// Sweep reminds every customer with overdue debts, in every shop.
// When a locker is set only the instance holding the lock sweeps.
func (s *ReminderService) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, sweepLockKey, sweepLockTTL)
		if errors.Is(err, ErrLockNotObtained) {
			s.logger.Info("Reminder sweep already running elsewhere")
			result.Locked = true
			return result, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to obtain reminder lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release reminder lock", zap.Error(err))
			}
		}()
	}

	shops, err := s.repos.Shops().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shops: %w", err)
	}
	today := s.today()
	for _, sh := range shops {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Shops++
		overdue, err := s.repos.Debts().FindOverdue(ctx, sh.ID, today)
		if err != nil {
			return result, fmt.Errorf("failed to load overdue debts: %w", err)
		}
		for _, customerID := range customersOf(overdue) {
			_, err := s.RemindCustomer(ctx, sh.ID, customerID)
			switch {
			case err == nil:
				result.Sent++
			case errors.Is(err, ErrNoPhone), errors.Is(err, ErrNoOpenDebts), errors.Is(err, shared.ErrNotFound):
				result.Skipped++
			default:
				result.Failed++
				s.logger.Warn("Reminder failed",
					zap.String("shop_id", sh.ID.String()),
					zap.String("customer_id", customerID.String()),
					zap.Error(err))
			}
		}
	}

	s.logger.Info("Reminder sweep completed",
		zap.Int("shops", result.Shops),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *ReminderService) send(ctx context.Context, shopID uuid.UUID, customer *partner.Customer, text string) error {
	if err := s.sender.Send(ctx, customer.Phone, text); err != nil {
		if s.businessMetrics != nil {
			s.businessMetrics.RecordReminderSent(ctx, shopID, telemetry.ReminderStatusFailed)
		}
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordReminderSent(ctx, shopID, telemetry.ReminderStatusSent)
	}
	s.logger.Info("Reminder sent",
		zap.String("shop_id", shopID.String()),
		zap.String("customer_id", customer.ID.String()),
	)
	return nil
}

// customersOf returns the distinct customers of debts in first-seen order
func customersOf(debts []finance.Debt) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(debts))
	ids := make([]uuid.UUID, 0, len(debts))
	for _, d := range debts {
		if !seen[d.CustomerID] {
			seen[d.CustomerID] = true
			ids = append(ids, d.CustomerID)
		}
	}
	return ids
}
