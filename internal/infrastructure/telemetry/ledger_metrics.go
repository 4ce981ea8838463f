// Package telemetry provides OpenTelemetry integration for metrics collection.
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

// LedgerMetrics tracks ledger activity: documents recorded, payment
// throughput, stock adjustments, balance overrides, and operation failures.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	documentTotal        *Counter
	paymentTotal         *Counter
	operationFailedTotal *Counter
	stockAdjustedTotal   *Counter
	balanceOverrideTotal *Counter

	// Histogram metrics
	documentAmount *Histogram

	// Gauge metrics (point-in-time values)
	outboxBacklog   *Gauge
	outOfStockCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	backlogProvider OutboxBacklogProvider
	stockProvider   StockMetricsProvider
}

// OutboxBacklogProvider reports the number of undelivered outbox entries per
// status. The interface keeps the telemetry layer off the outbox internals.
type OutboxBacklogProvider interface {
	BacklogByStatus(ctx context.Context) (map[string]int64, error)
}

// StockMetricsProvider provides stock data for periodic metrics collection.
type StockMetricsProvider interface {
	// GetOutOfStockCount returns the number of active items with no stock left
	GetOutOfStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	BacklogProvider OutboxBacklogProvider
	StockProvider   StockMetricsProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		backlogProvider: cfg.BacklogProvider,
		stockProvider:   cfg.StockProvider,
	}

	var err error

	lm.documentTotal, err = NewCounter(
		cfg.Meter,
		"ledger_document_total",
		"Total number of ledger documents recorded",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	lm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"ledger_payment_total",
		"Total number of payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	lm.operationFailedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_operation_failed_total",
		"Total number of rejected ledger operations",
		"{operations}",
	)
	if err != nil {
		return nil, err
	}

	lm.stockAdjustedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_stock_adjustment_total",
		"Total number of manual stock adjustments",
		"{adjustments}",
	)
	if err != nil {
		return nil, err
	}

	lm.balanceOverrideTotal, err = NewCounter(
		cfg.Meter,
		"ledger_balance_override_total",
		"Total number of manual balance overrides",
		"{overrides}",
	)
	if err != nil {
		return nil, err
	}

	lm.documentAmount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_document_amount",
		Description: "Distribution of document grand totals",
		Unit:        "{amount}",
		Boundaries:  AmountBuckets,
	})
	if err != nil {
		return nil, err
	}

	lm.outboxBacklog, err = NewGauge(
		cfg.Meter,
		"ledger_outbox_backlog",
		"Current number of undelivered outbox entries",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	lm.outOfStockCount, err = NewGauge(
		cfg.Meter,
		"ledger_out_of_stock_count",
		"Number of active items with no stock left",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// =============================================================================
// Document Metrics
// =============================================================================

// DocumentType labels the kind of ledger document for metrics.
type DocumentType string

const (
	DocumentTypeSale           DocumentType = "sale"
	DocumentTypePurchase       DocumentType = "purchase"
	DocumentTypeCustomerReturn DocumentType = "customer_return"
	DocumentTypeSupplierReturn DocumentType = "supplier_return"
	DocumentTypePayment        DocumentType = "payment"
)

// RecordDocument records a committed ledger document and its grand total.
func (lm *LedgerMetrics) RecordDocument(ctx context.Context, tenantID uuid.UUID, docType DocumentType, amount decimal.Decimal) {
	lm.documentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(string(docType)),
	)
	lm.documentAmount.Record(ctx, amount.InexactFloat64(),
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(string(docType)),
	)
}

// RecordPayment records a committed payment with its settlement method.
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal) {
	lm.paymentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	)
	lm.documentAmount.Record(ctx, amount.InexactFloat64(),
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(string(DocumentTypePayment)),
	)
}

// RecordOperationFailure records a rejected operation with its error code.
func (lm *LedgerMetrics) RecordOperationFailure(ctx context.Context, tenantID uuid.UUID, operation, errorCode string) {
	lm.operationFailedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOperation.String(operation),
		AttrErrorCode.String(errorCode),
	)
}

// =============================================================================
// Stock and Balance Metrics
// =============================================================================

// RecordStockAdjustment records a manual stock adjustment.
func (lm *LedgerMetrics) RecordStockAdjustment(ctx context.Context, tenantID uuid.UUID, direction string) {
	lm.stockAdjustedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDirection.String(direction),
	)
}

// RecordBalanceOverride records a manual balance override.
func (lm *LedgerMetrics) RecordBalanceOverride(ctx context.Context, tenantID uuid.UUID, entityKind string) {
	lm.balanceOverrideTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrEntityKind.String(entityKind),
	)
}

// RecordOutboxBacklog records the current outbox backlog for one status.
func (lm *LedgerMetrics) RecordOutboxBacklog(ctx context.Context, status string, count int64) {
	lm.outboxBacklog.Record(ctx, count,
		AttrStatus.String(status),
	)
}

// RecordOutOfStockCount records the number of items with no stock left.
func (lm *LedgerMetrics) RecordOutOfStockCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	lm.outOfStockCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects the outbox backlog and stock gauges every interval
// (default: 5 minutes). This is non-blocking - use Stop() to stop collection.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go lm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	lm.collectGaugeMetrics(ctx, tenantProvider)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.collectGaugeMetrics(ctx, tenantProvider)
		}
	}
}

// collectGaugeMetrics collects the outbox backlog and per-tenant stock gauges.
func (lm *LedgerMetrics) collectGaugeMetrics(ctx context.Context, tenantProvider TenantProvider) {
	lm.collectOutboxBacklog(ctx)
	lm.collectStockMetrics(ctx, tenantProvider)
}

// collectOutboxBacklog collects the outbox backlog gauge.
func (lm *LedgerMetrics) collectOutboxBacklog(ctx context.Context) {
	if lm.backlogProvider == nil {
		lm.logger.Debug("No backlog provider configured, skipping outbox backlog collection")
		return
	}

	backlog, err := lm.backlogProvider.BacklogByStatus(ctx)
	if err != nil {
		lm.logger.Error("Failed to get outbox backlog for metrics collection", zap.Error(err))
		return
	}

	for status, count := range backlog {
		lm.RecordOutboxBacklog(ctx, status, count)
	}
}

// collectStockMetrics collects stock gauges for all tenants.
func (lm *LedgerMetrics) collectStockMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if lm.stockProvider == nil {
		lm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		lm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		count, err := lm.stockProvider.GetOutOfStockCount(ctx, tenantID)
		if err != nil {
			lm.logger.Warn("Failed to get out-of-stock count for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		lm.RecordOutOfStockCount(ctx, tenantID, count)
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
