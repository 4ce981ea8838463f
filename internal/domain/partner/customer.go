package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer represents a customer account.
// Balance is the amount the customer currently owes the business; it is
// mutated only through ApplyBalanceDelta and SetBalanceAbsolute so every
// change leaves a matching BalanceEntry.
type Customer struct {
	shared.TenantAggregateRoot
	Code    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name    string          `gorm:"type:varchar(200);not null"`
	Phone   string          `gorm:"type:varchar(50);index"`
	Email   string          `gorm:"type:varchar(200)"`
	Address string          `gorm:"type:text"`
	Balance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status  CustomerStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	Notes   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	if err := validatePartnerCode(code); err != nil {
		return nil, err
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Balance:             decimal.Zero,
		Status:              CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// ApplyBalanceDelta applies a signed delta to the outstanding balance.
// A positive delta grows what the customer owes (credit sale), a negative
// delta shrinks it (payment, return credit). When allowNegative is false the
// delta fails with NEGATIVE_BALANCE_GUARD rather than taking the balance
// below zero; credit-note flows pass allowNegative to record money the
// business owes back.
func (c *Customer) ApplyBalanceDelta(delta decimal.Decimal, allowNegative bool) error {
	if delta.IsZero() {
		return shared.NewValidationError("balance delta cannot be zero")
	}

	newBalance := c.Balance.Add(delta)
	if newBalance.IsNegative() && !allowNegative {
		return shared.NewDomainError("NEGATIVE_BALANCE_GUARD",
			"Delta of "+delta.String()+" would take customer "+c.Code+" balance below zero")
	}

	oldBalance := c.Balance
	c.Balance = newBalance
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerBalanceChangedEvent(c, oldBalance, newBalance))

	return nil
}

// SetBalanceAbsolute replaces the balance outright. This is the
// administrative override path: it does not reconcile against transaction
// history, so the balance entry written for it is the only audit trail.
func (c *Customer) SetBalanceAbsolute(newBalance decimal.Decimal) {
	oldBalance := c.Balance
	c.Balance = newBalance
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerBalanceChangedEvent(c, oldBalance, newBalance))
}

// HasOutstandingBalance returns true if the customer owes anything
func (c *Customer) HasOutstandingBalance() bool {
	return c.Balance.GreaterThan(decimal.Zero)
}

// CurrentBalance returns the customer's current balance
func (c *Customer) CurrentBalance() decimal.Decimal {
	return c.Balance
}

func validatePartnerCode(code string) error {
	if code == "" {
		return shared.NewValidationError("code is required")
	}
	if len(code) > 50 {
		return shared.NewValidationError("code cannot exceed 50 characters")
	}
	return nil
}

func validatePartnerName(name string) error {
	if name == "" {
		return shared.NewValidationError("name is required")
	}
	if len(name) > 200 {
		return shared.NewValidationError("name cannot exceed 200 characters")
	}
	return nil
}
