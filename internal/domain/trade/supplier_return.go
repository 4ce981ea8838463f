package trade

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplierReturn records goods sent back to a supplier against one purchase
// line. Immutable, like CustomerReturn.
type SupplierReturn struct {
	shared.TenantAggregateRoot
	Number         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_return_tenant_number,priority:2"`
	PurchaseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseNumber string          `gorm:"type:varchar(50);not null"`
	SupplierID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemCode       string          `gorm:"type:varchar(50);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Type           ReturnType      `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes          string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierReturn) TableName() string {
	return "supplier_returns"
}

// NewSupplierReturn creates a new supplier return record
func NewSupplierReturn(
	tenantID uuid.UUID,
	number string,
	purchase *Purchase,
	itemID uuid.UUID,
	quantity decimal.Decimal,
	returnType ReturnType,
	amount decimal.Decimal,
) (*SupplierReturn, error) {
	if number == "" {
		return nil, shared.NewValidationError("return number is required")
	}
	if purchase == nil {
		return nil, shared.NewValidationError("supplier return requires the originating purchase")
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

	line, err := purchase.LineForItem(itemID)
	if err != nil {
		return nil, err
	}

	ret := &SupplierReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		PurchaseID:          purchase.ID,
		PurchaseNumber:      purchase.Number,
		SupplierID:          purchase.SupplierID,
		ItemID:              itemID,
		ItemCode:            line.ItemCode,
		Quantity:            quantity,
		Type:                returnType,
		Amount:              amount,
	}

	ret.AddDomainEvent(NewSupplierReturnProcessedEvent(ret))

	return ret, nil
}

// ReducesSupplierBalance returns true if this return reduces what the business owes
func (r *SupplierReturn) ReducesSupplierBalance() bool {
	return r.Type == ReturnTypeCredit
}
