package trade

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnType describes how a return is settled
type ReturnType string

const (
	// ReturnTypeCash settles in cash at the drawer; no stored balance change
	ReturnTypeCash ReturnType = "CASH"
	// ReturnTypeCredit settles against the outstanding balance or as a credit note
	ReturnTypeCredit ReturnType = "CREDIT"
	// ReturnTypeExchange swaps goods; the compensating outgoing item is a separate operation
	ReturnTypeExchange ReturnType = "EXCHANGE"
)

// String returns the string representation of ReturnType
func (t ReturnType) String() string {
	return string(t)
}

// IsValid returns true if the return type is valid
func (t ReturnType) IsValid() bool {
	switch t {
	case ReturnTypeCash, ReturnTypeCredit, ReturnTypeExchange:
		return true
	}
	return false
}

// ParseReturnType parses a return type name
func ParseReturnType(s string) (ReturnType, error) {
	rt := ReturnType(s)
	if !rt.IsValid() {
		return "", shared.NewValidationError("unknown return type %q", s)
	}
	return rt, nil
}

// CustomerReturn records goods a customer brought back against one sale line.
// The record is immutable; the returnable-quantity bookkeeping lives on the
// originating sale line.
type CustomerReturn struct {
	shared.TenantAggregateRoot
	Number     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_return_tenant_number,priority:2"`
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleNumber string          `gorm:"type:varchar(50);not null"`
	CustomerID *uuid.UUID      `gorm:"type:uuid;index"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemCode   string          `gorm:"type:varchar(50);not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Type       ReturnType      `gorm:"type:varchar(20);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerReturn) TableName() string {
	return "customer_returns"
}

// NewCustomerReturn creates a new customer return record
func NewCustomerReturn(
	tenantID uuid.UUID,
	number string,
	sale *Sale,
	itemID uuid.UUID,
	quantity decimal.Decimal,
	returnType ReturnType,
	amount decimal.Decimal,
) (*CustomerReturn, error) {
	if number == "" {
		return nil, shared.NewValidationError("return number is required")
	}
	if sale == nil {
		return nil, shared.NewValidationError("customer return requires the originating sale")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("return quantity must be positive")
	}
	if !returnType.IsValid() {
		return nil, shared.NewValidationError("unknown return type %q", string(returnType))
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("return amount cannot be negative")
	}

	line, err := sale.LineForItem(itemID)
	if err != nil {
		return nil, err
	}

	ret := &CustomerReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		SaleID:              sale.ID,
		SaleNumber:          sale.Number,
		CustomerID:          sale.CustomerID,
		ItemID:              itemID,
		ItemCode:            line.ItemCode,
		Quantity:            quantity,
		Type:                returnType,
		Amount:              amount,
	}

	ret.AddDomainEvent(NewCustomerReturnProcessedEvent(ret))

	return ret, nil
}

// CreditsCustomer returns true if this return reduces what the customer owes
func (r *CustomerReturn) CreditsCustomer() bool {
	return r.Type == ReturnTypeCredit && r.CustomerID != nil
}
