package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	// FindByIDForTenant finds an item by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)

	// FindByIDForTenantLocked finds an item by ID within a tenant, acquiring a
	// row lock for the duration of the surrounding transaction
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)

	// FindByCode finds an item by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Item, error)

	// FindByIDs finds multiple items by their IDs within a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Item, error)

	// FindAllForTenant finds all items for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// SaveWithLock updates an item with optimistic version checking
	SaveWithLock(ctx context.Context, item *Item) error

	// CountForTenant counts items for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
