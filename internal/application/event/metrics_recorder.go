package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MetricsRecorder feeds committed ledger operations into the business
// metrics. It subscribes to the engine's operation events and turns them
// into operation counters and amount histograms, so the numbers reflect
// what actually committed rather than what was attempted.
type MetricsRecorder struct {
	metrics *telemetry.LedgerMetrics
	logger  *zap.Logger
}

// NewMetricsRecorder creates a new metrics recorder subscriber.
func NewMetricsRecorder(metrics *telemetry.LedgerMetrics, logger *zap.Logger) *MetricsRecorder {
	return &MetricsRecorder{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (r *MetricsRecorder) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCreated,
		trade.EventTypePurchaseCreated,
		trade.EventTypeCustomerReturnProcessed,
		trade.EventTypeSupplierReturnProcessed,
		trade.EventTypePaymentRecorded,
		inventory.EventTypeStockAdjusted,
	}
}

// Handle records the metrics for one committed operation event.
// Recording never fails, so a nil error is returned for every known
// event type and redelivery is never triggered by this subscriber.
func (r *MetricsRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	if r.metrics == nil {
		return nil
	}

	switch e := event.(type) {
	case *trade.SaleCreatedEvent:
		r.metrics.RecordDocument(ctx, e.TenantID(), telemetry.DocumentTypeSale, e.TotalAmount)
	case *trade.PurchaseCreatedEvent:
		r.metrics.RecordDocument(ctx, e.TenantID(), telemetry.DocumentTypePurchase, e.TotalAmount)
	case *trade.CustomerReturnProcessedEvent:
		r.metrics.RecordDocument(ctx, e.TenantID(), telemetry.DocumentTypeCustomerReturn, e.Amount)
	case *trade.SupplierReturnProcessedEvent:
		r.metrics.RecordDocument(ctx, e.TenantID(), telemetry.DocumentTypeSupplierReturn, e.Amount)
	case *trade.PaymentRecordedEvent:
		r.metrics.RecordPayment(ctx, e.TenantID(), string(e.Method), e.Amount)
	case *inventory.StockAdjustedEvent:
		r.metrics.RecordStockAdjustment(ctx, e.TenantID(), strings.ToLower(string(e.MovementType)))
	default:
		r.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	return nil
}

// Ensure MetricsRecorder implements shared.EventHandler
var _ shared.EventHandler = (*MetricsRecorder)(nil)
