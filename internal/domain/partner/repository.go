package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByIDForTenant finds a customer by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByIDForTenantLocked finds a customer by ID within a tenant, acquiring
	// a row lock for the duration of the surrounding transaction
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByCode finds a customer by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Customer, error)

	// FindAllForTenant finds all customers for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock updates a customer with optimistic version checking
	SaveWithLock(ctx context.Context, customer *Customer) error

	// CountForTenant counts customers for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByIDForTenant finds a supplier by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)

	// FindByIDForTenantLocked finds a supplier by ID within a tenant, acquiring
	// a row lock for the duration of the surrounding transaction
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)

	// FindByCode finds a supplier by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Supplier, error)

	// FindAllForTenant finds all suppliers for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// SaveWithLock updates a supplier with optimistic version checking
	SaveWithLock(ctx context.Context, supplier *Supplier) error

	// CountForTenant counts suppliers for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// BalanceEntryRepository defines the interface for balance entry persistence.
// Entries are append-only; there is no update or delete.
type BalanceEntryRepository interface {
	// Save persists a new balance entry
	Save(ctx context.Context, entry *BalanceEntry) error

	// FindByEntity finds entries for one customer or supplier, newest first
	FindByEntity(ctx context.Context, tenantID uuid.UUID, kind EntityKind, entityID uuid.UUID, filter shared.Filter) ([]BalanceEntry, error)

	// FindBySource finds entries originating from one document
	FindBySource(ctx context.Context, tenantID, sourceID uuid.UUID) ([]BalanceEntry, error)

	// CountByEntity counts entries for one customer or supplier
	CountByEntity(ctx context.Context, tenantID uuid.UUID, kind EntityKind, entityID uuid.UUID) (int64, error)

	// SumDeltasSince sums entry deltas for an entity recorded after a point in
	// time, used by reconciliation checks
	SumDeltasSince(ctx context.Context, tenantID uuid.UUID, kind EntityKind, entityID uuid.UUID, since time.Time) (decimal.Decimal, error)
}
