package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
)

// StockMovementRepository defines the interface for stock movement persistence.
// Movements are append-only; there is no update or delete.
type StockMovementRepository interface {
	// Save persists a new stock movement
	Save(ctx context.Context, movement *StockMovement) error

	// SaveBatch persists multiple stock movements
	SaveBatch(ctx context.Context, movements []*StockMovement) error

	// FindByItem finds movements for one item, newest first
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindBySource finds movements originating from one document
	FindBySource(ctx context.Context, tenantID, sourceID uuid.UUID) ([]StockMovement, error)

	// FindForTenant finds movements for a tenant, newest first
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// CountByItem counts movements for one item
	CountByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
}
