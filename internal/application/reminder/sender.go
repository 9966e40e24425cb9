package reminder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a text message to a phone number in international form
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, phone, message string) error {
	s.logger.Info("Reminder message",
		zap.String("phone", phone),
		zap.String("message", message),
	)
	return nil
}

// ErrLockNotObtained is returned by a Locker when another holder has the lock
var ErrLockNotObtained = errors.New("lock not obtained")

// Locker guards work that must run on one instance at a time
type Locker interface {
	// Obtain takes the lock for ttl and returns a release function.
	// It returns ErrLockNotObtained when the lock is held elsewhere.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
