package event

import (
	"context"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// AuditLogger writes one structured log line for every event on the ledger
// feed. The base fields identify the event and its aggregate; known event
// types add their domain payload so the log stream doubles as a readable
// audit trail of everything the ledger committed.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates a new audit logger subscriber.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.Named("audit"),
	}
}

// EventTypes returns an empty slice so the audit logger receives all events.
func (a *AuditLogger) EventTypes() []string {
	return nil
}

// Handle logs the event. It never returns an error: a log line that could
// not be enriched is still written with the base fields.
func (a *AuditLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	fields = append(fields, detailFields(event)...)

	a.logger.Info("ledger event", fields...)
	return nil
}

// detailFields returns the domain payload fields for known event types.
func detailFields(event shared.DomainEvent) []zap.Field {
	switch e := event.(type) {
	case *trade.SaleCreatedEvent:
		fields := []zap.Field{
			zap.String("number", e.Number),
			zap.String("payment_type", string(e.PaymentType)),
			zap.Int("line_count", e.LineCount),
			zap.String("total_amount", e.TotalAmount.String()),
			zap.String("paid_amount", e.PaidAmount.String()),
		}
		if e.CustomerID != nil {
			fields = append(fields, zap.String("customer_id", e.CustomerID.String()))
		}
		return fields
	case *trade.PurchaseCreatedEvent:
		return []zap.Field{
			zap.String("number", e.Number),
			zap.String("supplier_id", e.SupplierID.String()),
			zap.String("payment_type", string(e.PaymentType)),
			zap.Int("line_count", e.LineCount),
			zap.String("total_amount", e.TotalAmount.String()),
			zap.String("paid_amount", e.PaidAmount.String()),
		}
	case *trade.CustomerReturnProcessedEvent:
		return []zap.Field{
			zap.String("number", e.Number),
			zap.String("sale_id", e.SaleID.String()),
			zap.String("item_id", e.ItemID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("return_type", string(e.Type)),
			zap.String("amount", e.Amount.String()),
		}
	case *trade.SupplierReturnProcessedEvent:
		return []zap.Field{
			zap.String("number", e.Number),
			zap.String("purchase_id", e.PurchaseID.String()),
			zap.String("item_id", e.ItemID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("return_type", string(e.Type)),
			zap.String("amount", e.Amount.String()),
		}
	case *trade.PaymentRecordedEvent:
		return []zap.Field{
			zap.String("number", e.Number),
			zap.String("entity_kind", string(e.EntityKind)),
			zap.String("entity_id", e.EntityID.String()),
			zap.String("amount", e.Amount.String()),
			zap.String("method", string(e.Method)),
		}
	case *inventory.StockAdjustedEvent:
		return []zap.Field{
			zap.String("movement_id", e.MovementID.String()),
			zap.String("item_id", e.ItemID.String()),
			zap.String("movement_type", string(e.MovementType)),
			zap.String("quantity", e.Quantity.String()),
			zap.String("quantity_before", e.QuantityBefore.String()),
			zap.String("quantity_after", e.QuantityAfter.String()),
			zap.String("reason", e.Reason),
		}
	case *catalog.ItemCreatedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("name", e.Name),
		}
	case *catalog.StockIncreasedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("quantity", e.Quantity.String()),
			zap.String("quantity_before", e.QuantityBefore.String()),
			zap.String("quantity_after", e.QuantityAfter.String()),
		}
	case *catalog.StockDecreasedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("quantity", e.Quantity.String()),
			zap.String("quantity_before", e.QuantityBefore.String()),
			zap.String("quantity_after", e.QuantityAfter.String()),
		}
	case *partner.CustomerCreatedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("name", e.Name),
		}
	case *partner.CustomerBalanceChangedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("old_balance", e.OldBalance.String()),
			zap.String("new_balance", e.NewBalance.String()),
		}
	case *partner.SupplierCreatedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("name", e.Name),
		}
	case *partner.SupplierBalanceChangedEvent:
		return []zap.Field{
			zap.String("code", e.Code),
			zap.String("old_balance", e.OldBalance.String()),
			zap.String("new_balance", e.NewBalance.String()),
		}
	}
	return nil
}

// Ensure AuditLogger implements shared.EventHandler
var _ shared.EventHandler = (*AuditLogger)(nil)
