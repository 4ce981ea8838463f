package inventory

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeIncrease MovementType = "INCREASE"
	MovementTypeDecrease MovementType = "DECREASE"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementTypeIncrease || t == MovementTypeDecrease
}

// ParseMovementType parses a movement type name
func ParseMovementType(s string) (MovementType, error) {
	mt := MovementType(s)
	if !mt.IsValid() {
		return "", shared.NewValidationError("unknown movement type %q", s)
	}
	return mt, nil
}

// MovementSource represents the document type that caused a stock movement
type MovementSource string

const (
	// MovementSourceSale is a stock decrease from a sale
	MovementSourceSale MovementSource = "SALE"
	// MovementSourcePurchase is a stock increase from a purchase
	MovementSourcePurchase MovementSource = "PURCHASE"
	// MovementSourceCustomerReturn is a stock increase from goods a customer brought back
	MovementSourceCustomerReturn MovementSource = "CUSTOMER_RETURN"
	// MovementSourceSupplierReturn is a stock decrease from goods sent back to a supplier
	MovementSourceSupplierReturn MovementSource = "SUPPLIER_RETURN"
	// MovementSourceManual is a direct correction outside the document flows
	MovementSourceManual MovementSource = "MANUAL"
)

// String returns the string representation of MovementSource
func (s MovementSource) String() string {
	return string(s)
}

// IsValid returns true if the movement source is valid
func (s MovementSource) IsValid() bool {
	switch s {
	case MovementSourceSale,
		MovementSourcePurchase,
		MovementSourceCustomerReturn,
		MovementSourceSupplierReturn,
		MovementSourceManual:
		return true
	}
	return false
}

// StockMovement is an immutable record of one change to an item's on-hand
// quantity. Every increase or decrease the stock ledger applies writes
// exactly one movement, so the movement history replays to the current
// quantity. Manual movements additionally carry a reason and the acting user.
type StockMovement struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_item,priority:1"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_item,priority:2"`
	MovementType   MovementType    `gorm:"type:varchar(20);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Source         MovementSource  `gorm:"type:varchar(30);not null;index"`
	SourceID       *uuid.UUID      `gorm:"type:uuid;index"`
	Reason         string          `gorm:"type:varchar(255)"`
	OperatorID     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new stock movement record. Quantity is always
// positive; the direction comes from the movement type.
func NewStockMovement(
	tenantID, itemID uuid.UUID,
	movementType MovementType,
	quantity, quantityBefore, quantityAfter decimal.Decimal,
	source MovementSource,
) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("item ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("unknown movement type %q", string(movementType))
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("movement quantity must be positive")
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError("unknown movement source %q", string(source))
	}
	if quantityBefore.IsNegative() || quantityAfter.IsNegative() {
		return nil, shared.NewValidationError("stock quantities cannot be negative")
	}

	expected := quantityBefore.Add(quantity)
	if movementType == MovementTypeDecrease {
		expected = quantityBefore.Sub(quantity)
	}
	if !expected.Equal(quantityAfter) {
		return nil, shared.NewValidationError("movement quantity does not match before/after")
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ItemID:         itemID,
		MovementType:   movementType,
		Quantity:       quantity,
		QuantityBefore: quantityBefore,
		QuantityAfter:  quantityAfter,
		Source:         source,
	}, nil
}

// WithSource sets the originating document ID
func (m *StockMovement) WithSource(sourceID uuid.UUID) *StockMovement {
	m.SourceID = &sourceID
	return m
}

// WithReason sets the correction reason, required for manual movements
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// WithOperator sets the acting user
func (m *StockMovement) WithOperator(operatorID uuid.UUID) *StockMovement {
	m.OperatorID = &operatorID
	return m
}

// IsManual returns true for movements entered outside the document flows
func (m *StockMovement) IsManual() bool {
	return m.Source == MovementSourceManual
}

// SignedQuantity returns the quantity with its direction applied
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.MovementType == MovementTypeDecrease {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
