package ledger

import (
	"context"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - ItemRepo: the Item aggregate carries the live stock quantity; every
//     stock change goes through it under a row lock.
//   - CustomerRepo / SupplierRepo: the live balances; mutated only together
//     with a BalanceEntry audit record.
//   - StockMovementRepo / BalanceEntryRepo: append-only audit trails written
//     in the same transaction as the state they explain.
//   - SaveEvents stages domain events in the outbox table so they are
//     committed or rolled back with the operation that produced them.
type TransactionalRepositories interface {
	// ItemRepo returns the item repository scoped to the current transaction
	ItemRepo() catalog.ItemRepository
	// CustomerRepo returns the customer repository scoped to the current transaction
	CustomerRepo() partner.CustomerRepository
	// SupplierRepo returns the supplier repository scoped to the current transaction
	SupplierRepo() partner.SupplierRepository
	// BalanceEntryRepo returns the balance entry repository scoped to the current transaction
	BalanceEntryRepo() partner.BalanceEntryRepository
	// StockMovementRepo returns the stock movement repository scoped to the current transaction
	StockMovementRepo() inventory.StockMovementRepository
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() trade.SaleRepository
	// PurchaseRepo returns the purchase repository scoped to the current transaction
	PurchaseRepo() trade.PurchaseRepository
	// CustomerReturnRepo returns the customer return repository scoped to the current transaction
	CustomerReturnRepo() trade.CustomerReturnRepository
	// SupplierReturnRepo returns the supplier return repository scoped to the current transaction
	SupplierReturnRepo() trade.SupplierReturnRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() trade.PaymentRepository
	// SaveEvents stages domain events for delivery within the current transaction
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}

// RepositorySet bundles the ledger repositories for scope implementations
// that do not create per-transaction instances.
type RepositorySet struct {
	Items           catalog.ItemRepository
	Customers       partner.CustomerRepository
	Suppliers       partner.SupplierRepository
	BalanceEntries  partner.BalanceEntryRepository
	StockMovements  inventory.StockMovementRepository
	Sales           trade.SaleRepository
	Purchases       trade.PurchaseRepository
	CustomerReturns trade.CustomerReturnRepository
	SupplierReturns trade.SupplierReturnRepository
	Payments        trade.PaymentRepository

	// Events receives staged domain events directly. May be nil, in which
	// case SaveEvents is a no-op.
	Events shared.EventPublisher
}

// NoOpTransactionScope is a transaction scope without real transaction
// semantics. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repos RepositorySet
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(repos RepositorySet) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the item repository.
func (s *NoOpTransactionScope) ItemRepo() catalog.ItemRepository {
	return s.repos.Items
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.repos.Customers
}

// SupplierRepo returns the supplier repository.
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository {
	return s.repos.Suppliers
}

// BalanceEntryRepo returns the balance entry repository.
func (s *NoOpTransactionScope) BalanceEntryRepo() partner.BalanceEntryRepository {
	return s.repos.BalanceEntries
}

// StockMovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) StockMovementRepo() inventory.StockMovementRepository {
	return s.repos.StockMovements
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository {
	return s.repos.Sales
}

// PurchaseRepo returns the purchase repository.
func (s *NoOpTransactionScope) PurchaseRepo() trade.PurchaseRepository {
	return s.repos.Purchases
}

// CustomerReturnRepo returns the customer return repository.
func (s *NoOpTransactionScope) CustomerReturnRepo() trade.CustomerReturnRepository {
	return s.repos.CustomerReturns
}

// SupplierReturnRepo returns the supplier return repository.
func (s *NoOpTransactionScope) SupplierReturnRepo() trade.SupplierReturnRepository {
	return s.repos.SupplierReturns
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() trade.PaymentRepository {
	return s.repos.Payments
}

// SaveEvents forwards events to the configured publisher, if any.
func (s *NoOpTransactionScope) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if s.repos.Events == nil || len(events) == 0 {
		return nil
	}
	return s.repos.Events.Publish(ctx, events...)
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
