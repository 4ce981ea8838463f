package event

import (
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/trade"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Trade domain events
	serializer.Register(trade.EventTypeSaleCreated, &trade.SaleCreatedEvent{})
	serializer.Register(trade.EventTypePurchaseCreated, &trade.PurchaseCreatedEvent{})
	serializer.Register(trade.EventTypeCustomerReturnProcessed, &trade.CustomerReturnProcessedEvent{})
	serializer.Register(trade.EventTypeSupplierReturnProcessed, &trade.SupplierReturnProcessedEvent{})
	serializer.Register(trade.EventTypePaymentRecorded, &trade.PaymentRecordedEvent{})

	// Catalog domain events
	serializer.Register(catalog.EventTypeItemCreated, &catalog.ItemCreatedEvent{})
	serializer.Register(catalog.EventTypeStockIncreased, &catalog.StockIncreasedEvent{})
	serializer.Register(catalog.EventTypeStockDecreased, &catalog.StockDecreasedEvent{})

	// Inventory domain events
	serializer.Register(inventory.EventTypeStockAdjusted, &inventory.StockAdjustedEvent{})

	// Partner domain events
	serializer.Register(partner.EventTypeCustomerCreated, &partner.CustomerCreatedEvent{})
	serializer.Register(partner.EventTypeCustomerBalanceChanged, &partner.CustomerBalanceChangedEvent{})
	serializer.Register(partner.EventTypeSupplierCreated, &partner.SupplierCreatedEvent{})
	serializer.Register(partner.EventTypeSupplierBalanceChanged, &partner.SupplierBalanceChangedEvent{})
}
