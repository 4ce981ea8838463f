package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
)

func newObservedAuditLogger() (*AuditLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.InfoLevel)
	return NewAuditLogger(zap.New(core)), recorded
}

func TestAuditLogger_EventTypes(t *testing.T) {
	auditLogger, _ := newObservedAuditLogger()

	// Empty means the logger subscribes to every event on the feed.
	assert.Empty(t, auditLogger.EventTypes())
}

func TestAuditLogger_Handle_BaseFields(t *testing.T) {
	auditLogger, recorded := newObservedAuditLogger()

	tenantID := uuid.New()
	customerID := uuid.New()
	event := &partner.CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeCustomerCreated, partner.AggregateTypeCustomer, customerID, tenantID),
		CustomerID:      customerID,
		Code:            "CUST-001",
		Name:            "Corner Shop LLC",
	}

	require.NoError(t, auditLogger.Handle(context.Background(), event))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "ledger event", logs[0].Message)

	fields := logs[0].ContextMap()
	assert.Equal(t, event.EventID().String(), fields["event_id"])
	assert.Equal(t, partner.EventTypeCustomerCreated, fields["event_type"])
	assert.Equal(t, partner.AggregateTypeCustomer, fields["aggregate_type"])
	assert.Equal(t, customerID.String(), fields["aggregate_id"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
	assert.Equal(t, "CUST-001", fields["code"])
	assert.Equal(t, "Corner Shop LLC", fields["name"])
}

func TestAuditLogger_Handle_SaleCreated(t *testing.T) {
	auditLogger, recorded := newObservedAuditLogger()

	tenantID := uuid.New()
	saleID := uuid.New()
	customerID := uuid.New()
	event := &trade.SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSaleCreated, trade.AggregateTypeSale, saleID, tenantID),
		SaleID:          saleID,
		Number:          "SALE-2026-000042",
		CustomerID:      &customerID,
		PaymentType:     trade.PaymentTypeCredit,
		LineCount:       3,
		TotalAmount:     decimal.RequireFromString("742.50"),
		PaidAmount:      decimal.RequireFromString("200.00"),
	}

	require.NoError(t, auditLogger.Handle(context.Background(), event))

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := logs[0].ContextMap()
	assert.Equal(t, "SALE-2026-000042", fields["number"])
	assert.Equal(t, "CREDIT", fields["payment_type"])
	assert.Equal(t, int64(3), fields["line_count"])
	assert.Equal(t, "742.5", fields["total_amount"])
	assert.Equal(t, "200", fields["paid_amount"])
	assert.Equal(t, customerID.String(), fields["customer_id"])
}

func TestAuditLogger_Handle_SaleCreated_WalkIn(t *testing.T) {
	auditLogger, recorded := newObservedAuditLogger()

	saleID := uuid.New()
	event := &trade.SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSaleCreated, trade.AggregateTypeSale, saleID, uuid.New()),
		SaleID:          saleID,
		Number:          "SALE-2026-000043",
		PaymentType:     trade.PaymentTypeCash,
		LineCount:       1,
		TotalAmount:     decimal.NewFromInt(25),
		PaidAmount:      decimal.NewFromInt(25),
	}

	require.NoError(t, auditLogger.Handle(context.Background(), event))

	logs := recorded.All()
	require.Len(t, logs, 1)

	// Walk-in sale has no customer, so no customer_id field is logged.
	fields := logs[0].ContextMap()
	assert.NotContains(t, fields, "customer_id")
	assert.Equal(t, "CASH", fields["payment_type"])
}

func TestAuditLogger_Handle_PaymentRecorded(t *testing.T) {
	auditLogger, recorded := newObservedAuditLogger()

	paymentID := uuid.New()
	entityID := uuid.New()
	event := &trade.PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypePaymentRecorded, trade.AggregateTypePayment, paymentID, uuid.New()),
		PaymentID:       paymentID,
		Number:          "PAY-2026-000007",
		EntityKind:      partner.EntityKindSupplier,
		EntityID:        entityID,
		Amount:          decimal.RequireFromString("1500.00"),
		Method:          trade.PaymentMethodBank,
	}

	require.NoError(t, auditLogger.Handle(context.Background(), event))

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := logs[0].ContextMap()
	assert.Equal(t, "PAY-2026-000007", fields["number"])
	assert.Equal(t, "supplier", fields["entity_kind"])
	assert.Equal(t, entityID.String(), fields["entity_id"])
	assert.Equal(t, "1500", fields["amount"])
	assert.Equal(t, "BANK_TRANSFER", fields["method"])
}

func TestAuditLogger_Handle_StockAdjusted(t *testing.T) {
	auditLogger, recorded := newObservedAuditLogger()

	movementID := uuid.New()
	itemID := uuid.New()
	event := &inventory.StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockAdjusted, inventory.AggregateTypeStockMovement, movementID, uuid.New()),
		MovementID:      movementID,
		ItemID:          itemID,
		MovementType:    inventory.MovementTypeIncrease,
		Quantity:        decimal.NewFromInt(12),
		QuantityBefore:  decimal.NewFromInt(0),
		QuantityAfter:   decimal.NewFromInt(12),
		Reason:          "stocktake correction",
	}

	require.NoError(t, auditLogger.Handle(context.Background(), event))

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := logs[0].ContextMap()
	assert.Equal(t, movementID.String(), fields["movement_id"])
	assert.Equal(t, itemID.String(), fields["item_id"])
	assert.Equal(t, "INCREASE", fields["movement_type"])
	assert.Equal(t, "12", fields["quantity"])
	assert.Equal(t, "0", fields["quantity_before"])
	assert.Equal(t, "12", fields["quantity_after"])
	assert.Equal(t, "stocktake correction", fields["reason"])
}

func TestAuditLogger_Handle_AllEventTypes(t *testing.T) {
	tenantID := uuid.New()
	aggID := uuid.New()
	customerID := uuid.New()

	events := []shared.DomainEvent{
		&trade.SaleCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSaleCreated, trade.AggregateTypeSale, aggID, tenantID),
			SaleID:          aggID, Number: "SALE-2026-000100",
			PaymentType: trade.PaymentTypeCash, LineCount: 1,
			TotalAmount: decimal.NewFromInt(10), PaidAmount: decimal.NewFromInt(10),
		},
		&trade.PurchaseCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypePurchaseCreated, trade.AggregateTypePurchase, aggID, tenantID),
			PurchaseID:      aggID, Number: "PUR-2026-000100", SupplierID: uuid.New(),
			PaymentType: trade.PaymentTypeCredit, LineCount: 2,
			TotalAmount: decimal.NewFromInt(800), PaidAmount: decimal.Zero,
		},
		&trade.CustomerReturnProcessedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeCustomerReturnProcessed, trade.AggregateTypeCustomerReturn, aggID, tenantID),
			ReturnID:        aggID, Number: "CRET-2026-000100", SaleID: uuid.New(), ItemID: uuid.New(),
			Quantity: decimal.NewFromInt(1), Type: trade.ReturnTypeExchange, Amount: decimal.NewFromInt(30),
		},
		&trade.SupplierReturnProcessedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeSupplierReturnProcessed, trade.AggregateTypeSupplierReturn, aggID, tenantID),
			ReturnID:        aggID, Number: "SRET-2026-000100", PurchaseID: uuid.New(), SupplierID: uuid.New(), ItemID: uuid.New(),
			Quantity: decimal.NewFromInt(2), Type: trade.ReturnTypeCash, Amount: decimal.NewFromInt(80),
		},
		&trade.PaymentRecordedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypePaymentRecorded, trade.AggregateTypePayment, aggID, tenantID),
			PaymentID:       aggID, Number: "PAY-2026-000100", EntityKind: partner.EntityKindCustomer,
			EntityID: customerID, Amount: decimal.NewFromInt(50), Method: trade.PaymentMethodCard,
		},
		&inventory.StockAdjustedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockAdjusted, inventory.AggregateTypeStockMovement, aggID, tenantID),
			MovementID:      aggID, ItemID: uuid.New(), MovementType: inventory.MovementTypeDecrease,
			Quantity: decimal.NewFromInt(1), QuantityBefore: decimal.NewFromInt(5), QuantityAfter: decimal.NewFromInt(4),
			Reason: "breakage",
		},
		&catalog.ItemCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(catalog.EventTypeItemCreated, catalog.AggregateTypeItem, aggID, tenantID),
			ItemID:          aggID, Code: "ITEM-100", Name: "Sparkling water 1L", PiecesPerUnit: 6,
		},
		&catalog.StockIncreasedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(catalog.EventTypeStockIncreased, catalog.AggregateTypeItem, aggID, tenantID),
			ItemID:          aggID, Code: "ITEM-100",
			Quantity: decimal.NewFromInt(6), QuantityBefore: decimal.NewFromInt(0), QuantityAfter: decimal.NewFromInt(6),
		},
		&catalog.StockDecreasedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(catalog.EventTypeStockDecreased, catalog.AggregateTypeItem, aggID, tenantID),
			ItemID:          aggID, Code: "ITEM-100",
			Quantity: decimal.NewFromInt(2), QuantityBefore: decimal.NewFromInt(6), QuantityAfter: decimal.NewFromInt(4),
		},
		&partner.CustomerCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeCustomerCreated, partner.AggregateTypeCustomer, customerID, tenantID),
			CustomerID:      customerID, Code: "CUST-100", Name: "Alem Kiosk",
		},
		&partner.CustomerBalanceChangedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeCustomerBalanceChanged, partner.AggregateTypeCustomer, customerID, tenantID),
			CustomerID:      customerID, Code: "CUST-100",
			OldBalance: decimal.Zero, NewBalance: decimal.NewFromInt(-120),
		},
		&partner.SupplierCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeSupplierCreated, partner.AggregateTypeSupplier, aggID, tenantID),
			SupplierID:      aggID, Code: "SUP-100", Name: "Beverage Distribution Co",
		},
		&partner.SupplierBalanceChangedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(partner.EventTypeSupplierBalanceChanged, partner.AggregateTypeSupplier, aggID, tenantID),
			SupplierID:      aggID, Code: "SUP-100",
			OldBalance: decimal.NewFromInt(500), NewBalance: decimal.NewFromInt(300),
		},
	}

	for _, event := range events {
		t.Run(event.EventType(), func(t *testing.T) {
			auditLogger, recorded := newObservedAuditLogger()

			require.NoError(t, auditLogger.Handle(context.Background(), event))

			logs := recorded.All()
			require.Len(t, logs, 1)
			assert.Equal(t, "ledger event", logs[0].Message)
			assert.Equal(t, event.EventType(), logs[0].ContextMap()["event_type"])
		})
	}
}

func TestAuditLogger_Handle_UnknownEventType(t *testing.T) {
	auditLogger, recorded := newObservedAuditLogger()

	// An event type the detail switch does not know still gets its base
	// fields logged.
	event := &struct {
		shared.BaseDomainEvent
	}{
		BaseDomainEvent: shared.NewBaseDomainEvent("SomethingElseHappened", "Widget", uuid.New(), uuid.New()),
	}

	require.NoError(t, auditLogger.Handle(context.Background(), event))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SomethingElseHappened", logs[0].ContextMap()["event_type"])
}
