package trade

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale           = "Sale"
	AggregateTypePurchase       = "Purchase"
	AggregateTypeCustomerReturn = "CustomerReturn"
	AggregateTypeSupplierReturn = "SupplierReturn"
	AggregateTypePayment        = "Payment"
)

// Event type constants
const (
	EventTypeSaleCreated             = "SaleCreated"
	EventTypePurchaseCreated         = "PurchaseCreated"
	EventTypeCustomerReturnProcessed = "CustomerReturnProcessed"
	EventTypeSupplierReturnProcessed = "SupplierReturnProcessed"
	EventTypePaymentRecorded         = "PaymentRecorded"
)

// SaleCreatedEvent is published when a sale commits
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	Number      string          `json:"number"`
	CustomerID  *uuid.UUID      `json:"customer_id,omitempty"`
	PaymentType PaymentType     `json:"payment_type"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		Number:          sale.Number,
		CustomerID:      sale.CustomerID,
		PaymentType:     sale.PaymentType,
		LineCount:       len(sale.Lines),
		TotalAmount:     sale.TotalAmount,
		PaidAmount:      sale.PaidAmount,
	}
}

// PurchaseCreatedEvent is published when a purchase commits
type PurchaseCreatedEvent struct {
	shared.BaseDomainEvent
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	Number      string          `json:"number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	PaymentType PaymentType     `json:"payment_type"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// NewPurchaseCreatedEvent creates a new PurchaseCreatedEvent
func NewPurchaseCreatedEvent(purchase *Purchase) *PurchaseCreatedEvent {
	return &PurchaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseCreated, AggregateTypePurchase, purchase.ID, purchase.TenantID),
		PurchaseID:      purchase.ID,
		Number:          purchase.Number,
		SupplierID:      purchase.SupplierID,
		PaymentType:     purchase.PaymentType,
		LineCount:       len(purchase.Lines),
		TotalAmount:     purchase.TotalAmount,
		PaidAmount:      purchase.PaidAmount,
	}
}

// CustomerReturnProcessedEvent is published when a customer return commits
type CustomerReturnProcessedEvent struct {
	shared.BaseDomainEvent
	ReturnID   uuid.UUID       `json:"return_id"`
	Number     string          `json:"number"`
	SaleID     uuid.UUID       `json:"sale_id"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	ItemID     uuid.UUID       `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Type       ReturnType      `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewCustomerReturnProcessedEvent creates a new CustomerReturnProcessedEvent
func NewCustomerReturnProcessedEvent(ret *CustomerReturn) *CustomerReturnProcessedEvent {
	return &CustomerReturnProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerReturnProcessed, AggregateTypeCustomerReturn, ret.ID, ret.TenantID),
		ReturnID:        ret.ID,
		Number:          ret.Number,
		SaleID:          ret.SaleID,
		CustomerID:      ret.CustomerID,
		ItemID:          ret.ItemID,
		Quantity:        ret.Quantity,
		Type:            ret.Type,
		Amount:          ret.Amount,
	}
}

// SupplierReturnProcessedEvent is published when a supplier return commits
type SupplierReturnProcessedEvent struct {
	shared.BaseDomainEvent
	ReturnID   uuid.UUID       `json:"return_id"`
	Number     string          `json:"number"`
	PurchaseID uuid.UUID       `json:"purchase_id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	ItemID     uuid.UUID       `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Type       ReturnType      `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewSupplierReturnProcessedEvent creates a new SupplierReturnProcessedEvent
func NewSupplierReturnProcessedEvent(ret *SupplierReturn) *SupplierReturnProcessedEvent {
	return &SupplierReturnProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierReturnProcessed, AggregateTypeSupplierReturn, ret.ID, ret.TenantID),
		ReturnID:        ret.ID,
		Number:          ret.Number,
		PurchaseID:      ret.PurchaseID,
		SupplierID:      ret.SupplierID,
		ItemID:          ret.ItemID,
		Quantity:        ret.Quantity,
		Type:            ret.Type,
		Amount:          ret.Amount,
	}
}

// PaymentRecordedEvent is published when a payment commits
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID          `json:"payment_id"`
	Number     string             `json:"number"`
	EntityKind partner.EntityKind `json:"entity_kind"`
	EntityID   uuid.UUID          `json:"entity_id"`
	Amount     decimal.Decimal    `json:"amount"`
	Method     PaymentMethod      `json:"method"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(payment *Payment, kind partner.EntityKind) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, payment.ID, payment.TenantID),
		PaymentID:       payment.ID,
		Number:          payment.Number,
		EntityKind:      kind,
		EntityID:        payment.EntityID(),
		Amount:          payment.Amount,
		Method:          payment.Method,
	}
}
