package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier represents a supplier account.
// Balance is the amount the business currently owes the supplier; the same
// mutation rules apply as for Customer.
type Supplier struct {
	shared.TenantAggregateRoot
	Code    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_tenant_code,priority:2"`
	Name    string          `gorm:"type:varchar(200);not null"`
	Phone   string          `gorm:"type:varchar(50);index"`
	Email   string          `gorm:"type:varchar(200)"`
	Address string          `gorm:"type:text"`
	Balance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status  SupplierStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	Notes   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(tenantID uuid.UUID, code, name string) (*Supplier, error) {
	if err := validatePartnerCode(code); err != nil {
		return nil, err
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Balance:             decimal.Zero,
		Status:              SupplierStatusActive,
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// ApplyBalanceDelta applies a signed delta to the amount owed to the supplier.
// See Customer.ApplyBalanceDelta for the sign and guard semantics.
func (s *Supplier) ApplyBalanceDelta(delta decimal.Decimal, allowNegative bool) error {
	if delta.IsZero() {
		return shared.NewValidationError("balance delta cannot be zero")
	}

	newBalance := s.Balance.Add(delta)
	if newBalance.IsNegative() && !allowNegative {
		return shared.NewDomainError("NEGATIVE_BALANCE_GUARD",
			"Delta of "+delta.String()+" would take supplier "+s.Code+" balance below zero")
	}

	oldBalance := s.Balance
	s.Balance = newBalance
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, oldBalance, newBalance))

	return nil
}

// SetBalanceAbsolute replaces the balance outright without reconciliation
func (s *Supplier) SetBalanceAbsolute(newBalance decimal.Decimal) {
	oldBalance := s.Balance
	s.Balance = newBalance
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, oldBalance, newBalance))
}

// HasOutstandingBalance returns true if the business owes this supplier anything
func (s *Supplier) HasOutstandingBalance() bool {
	return s.Balance.GreaterThan(decimal.Zero)
}

// CurrentBalance returns the supplier's current balance
func (s *Supplier) CurrentBalance() decimal.Decimal {
	return s.Balance
}
