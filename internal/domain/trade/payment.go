package trade

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment records money received from a customer or paid to a supplier.
// Strictly additive to history: a payment is never edited or deleted, and
// each one reduces the counterpart's outstanding balance when committed.
type Payment struct {
	shared.TenantAggregateRoot
	Number     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	CustomerID *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method     PaymentMethod   `gorm:"type:varchar(20);not null;default:'CASH'"`
	Notes      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment against exactly one customer or supplier
func NewPayment(
	tenantID uuid.UUID,
	number string,
	kind partner.EntityKind,
	entityID uuid.UUID,
	amount decimal.Decimal,
	method PaymentMethod,
) (*Payment, error) {
	if number == "" {
		return nil, shared.NewValidationError("payment number is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("unknown entity kind %q", string(kind))
	}
	if entityID == uuid.Nil {
		return nil, shared.NewValidationError("entity ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("unknown payment method %q", string(method))
	}

	payment := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Amount:              amount,
		Method:              method,
	}
	switch kind {
	case partner.EntityKindCustomer:
		payment.CustomerID = &entityID
	case partner.EntityKindSupplier:
		payment.SupplierID = &entityID
	}

	payment.AddDomainEvent(NewPaymentRecordedEvent(payment, kind))

	return payment, nil
}

// Kind returns which side of the ledger this payment settles
func (p *Payment) Kind() partner.EntityKind {
	if p.CustomerID != nil {
		return partner.EntityKindCustomer
	}
	return partner.EntityKindSupplier
}

// EntityID returns the customer or supplier the payment settles against
func (p *Payment) EntityID() uuid.UUID {
	if p.CustomerID != nil {
		return *p.CustomerID
	}
	if p.SupplierID != nil {
		return *p.SupplierID
	}
	return uuid.Nil
}
