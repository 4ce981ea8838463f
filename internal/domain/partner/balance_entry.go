package partner

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntityKind distinguishes the two sides of the balance ledger
type EntityKind string

const (
	EntityKindCustomer EntityKind = "customer"
	EntityKindSupplier EntityKind = "supplier"
)

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is valid
func (k EntityKind) IsValid() bool {
	return k == EntityKindCustomer || k == EntityKindSupplier
}

// ParseEntityKind parses an entity kind name
func ParseEntityKind(s string) (EntityKind, error) {
	kind := EntityKind(s)
	if !kind.IsValid() {
		return "", shared.NewValidationError("unknown entity kind %q", s)
	}
	return kind, nil
}

// BalanceEntryType represents the ledger semantic of a balance change
type BalanceEntryType string

const (
	// BalanceEntryTypeCreditSale records the unpaid remainder of a credit sale
	BalanceEntryTypeCreditSale BalanceEntryType = "CREDIT_SALE"
	// BalanceEntryTypeCreditPurchase records the unpaid remainder of a credit purchase
	BalanceEntryTypeCreditPurchase BalanceEntryType = "CREDIT_PURCHASE"
	// BalanceEntryTypePayment records a payment received or made
	BalanceEntryTypePayment BalanceEntryType = "PAYMENT"
	// BalanceEntryTypeReturnCredit records a credit issued for returned goods
	BalanceEntryTypeReturnCredit BalanceEntryType = "RETURN_CREDIT"
	// BalanceEntryTypeOverride records an administrative absolute override
	BalanceEntryTypeOverride BalanceEntryType = "OVERRIDE"
)

// String returns the string representation of BalanceEntryType
func (t BalanceEntryType) String() string {
	return string(t)
}

// IsValid returns true if the entry type is valid
func (t BalanceEntryType) IsValid() bool {
	switch t {
	case BalanceEntryTypeCreditSale,
		BalanceEntryTypeCreditPurchase,
		BalanceEntryTypePayment,
		BalanceEntryTypeReturnCredit,
		BalanceEntryTypeOverride:
		return true
	}
	return false
}

// BalanceEntry is an immutable record of one balance change. Once written it
// is never modified; corrections happen through further entries. The running
// sum of Delta values reconciles to the entity's current balance except
// across OVERRIDE entries, which reset the baseline.
type BalanceEntry struct {
	shared.BaseEntity
	TenantID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_balance_entry_entity,priority:1"`
	EntityKind    EntityKind       `gorm:"type:varchar(20);not null;index:idx_balance_entry_entity,priority:2"`
	EntityID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_balance_entry_entity,priority:3"`
	EntryType     BalanceEntryType `gorm:"type:varchar(30);not null"`
	Delta         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BalanceBefore decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	SourceID      *uuid.UUID       `gorm:"type:uuid;index"`
	Note          string           `gorm:"type:text"`
	OperatorID    *uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BalanceEntry) TableName() string {
	return "balance_entries"
}

// NewBalanceEntry creates a new balance entry
func NewBalanceEntry(
	tenantID uuid.UUID,
	kind EntityKind,
	entityID uuid.UUID,
	entryType BalanceEntryType,
	delta, balanceBefore, balanceAfter decimal.Decimal,
) (*BalanceEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("unknown entity kind %q", string(kind))
	}
	if entityID == uuid.Nil {
		return nil, shared.NewValidationError("entity ID cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewValidationError("unknown balance entry type %q", string(entryType))
	}
	if delta.IsZero() && entryType != BalanceEntryTypeOverride {
		return nil, shared.NewValidationError("balance entry delta cannot be zero")
	}
	if !balanceBefore.Add(delta).Equal(balanceAfter) {
		return nil, shared.NewValidationError("balance entry delta does not match before/after")
	}

	return &BalanceEntry{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		EntityKind:    kind,
		EntityID:      entityID,
		EntryType:     entryType,
		Delta:         delta,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}, nil
}

// WithSource sets the originating document ID
func (e *BalanceEntry) WithSource(sourceID uuid.UUID) *BalanceEntry {
	e.SourceID = &sourceID
	return e
}

// WithNote sets a free-form note
func (e *BalanceEntry) WithNote(note string) *BalanceEntry {
	e.Note = note
	return e
}

// WithOperator sets the acting user
func (e *BalanceEntry) WithOperator(operatorID uuid.UUID) *BalanceEntry {
	e.OperatorID = &operatorID
	return e
}

// IsIncrease returns true if this entry grew the balance
func (e *BalanceEntry) IsIncrease() bool {
	return e.Delta.GreaterThan(decimal.Zero)
}
