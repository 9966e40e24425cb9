package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics records sales, stock movements, debt payments and reminders
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	salesTotal      *Counter
	saleAmount      *Histogram
	stockUnitsMoved *Counter
	paymentTotal    *Counter
	reminderTotal   *Counter
	lowStockCount   *Gauge

	stockProvider StockMetricsProvider
	stopChan      chan struct{}
	stopOnce      sync.Once
	collectOnce   sync.Once
}

// StockMetricsProvider supplies gauge values for periodic collection
type StockMetricsProvider interface {
	ShopIDs(ctx context.Context) ([]uuid.UUID, error)
	LowStockCount(ctx context.Context, shopID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics
type BusinessMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StockProvider StockMetricsProvider
}

// NewBusinessMetrics creates the business instruments
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stockProvider: cfg.StockProvider,
		stopChan:      make(chan struct{}),
	}

	var err error
	if bm.salesTotal, err = NewCounter(cfg.Meter, "duka_sales_total", "Number of sales finalized", "{sales}"); err != nil {
		return nil, err
	}
	if bm.saleAmount, err = NewHistogram(cfg.Meter, "duka_sale_amount", "Distribution of sale totals", "{currency}", SaleAmountBuckets...); err != nil {
		return nil, err
	}
	if bm.stockUnitsMoved, err = NewCounter(cfg.Meter, "duka_stock_units_moved_total", "Stock units moved through the ledger", "{units}"); err != nil {
		return nil, err
	}
	if bm.paymentTotal, err = NewCounter(cfg.Meter, "duka_debt_payment_total", "Debt payments attempted", "{payments}"); err != nil {
		return nil, err
	}
	if bm.reminderTotal, err = NewCounter(cfg.Meter, "duka_reminder_total", "Debt reminders sent", "{messages}"); err != nil {
		return nil, err
	}
	if bm.lowStockCount, err = NewGauge(cfg.Meter, "duka_low_stock_items", "Active items at or below their reorder threshold", "{items}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordSale records a finalized sale and its total
func (bm *BusinessMetrics) RecordSale(ctx context.Context, shopID uuid.UUID, amount decimal.Decimal) {
	shop := AttrShopID.String(shopID.String())
	bm.salesTotal.Inc(ctx, shop)
	bm.saleAmount.Record(ctx, amount.InexactFloat64(), shop)
}

// RecordStockAdjustment records units moved in or out of stock
func (bm *BusinessMetrics) RecordStockAdjustment(ctx context.Context, shopID uuid.UUID, reason string, delta int) {
	if delta == 0 {
		return
	}
	direction := "in"
	units := int64(delta)
	if delta < 0 {
		direction = "out"
		units = -units
	}
	bm.stockUnitsMoved.Add(ctx, units,
		AttrShopID.String(shopID.String()),
		AttrReason.String(reason),
		AttrDirection.String(direction),
	)
}

// PaymentStatus labels the outcome of a debt payment
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordPayment records a debt payment attempt
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, shopID uuid.UUID, paymentMethod string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrShopID.String(shopID.String()),
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(status)),
	)
}

// ReminderStatus labels the outcome of a reminder
type ReminderStatus string

const (
	ReminderStatusSent   ReminderStatus = "sent"
	ReminderStatusFailed ReminderStatus = "failed"
)

// RecordReminderSent records a reminder delivery attempt
func (bm *BusinessMetrics) RecordReminderSent(ctx context.Context, shopID uuid.UUID, status ReminderStatus) {
	bm.reminderTotal.Inc(ctx,
		AttrShopID.String(shopID.String()),
		AttrReminderStatus.String(string(status)),
	)
}

// RecordLowStockCount records how many items need restocking
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, shopID uuid.UUID, count int64) {
	bm.lowStockCount.Record(ctx, count, AttrShopID.String(shopID.String()))
}

// StartPeriodicCollection refreshes the gauges every interval until Stop
// or ctx is cancelled. It is non-blocking and runs at most once.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.stockProvider == nil {
		return
	}
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collect(ctx)
	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collect(ctx)
		}
	}
}

func (bm *BusinessMetrics) collect(ctx context.Context) {
	shopIDs, err := bm.stockProvider.ShopIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to list shops for metrics collection", zap.Error(err))
		return
	}
	for _, shopID := range shopIDs {
		count, err := bm.stockProvider.LowStockCount(ctx, shopID)
		if err != nil {
			bm.logger.Warn("Failed to count low stock items",
				zap.String("shop_id", shopID.String()),
				zap.Error(err))
			continue
		}
		bm.RecordLowStockCount(ctx, shopID, count)
	}
}

// Stop ends periodic collection
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when no meter is configured
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics setup error
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
