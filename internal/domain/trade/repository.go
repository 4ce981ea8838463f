package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant finds a sale with its lines within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByIDForTenantLocked finds a sale with its lines, acquiring a row
	// lock on the header for the duration of the surrounding transaction
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByNumber finds a sale by its document number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Sale, error)

	// FindAllForTenant finds sales for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// FindByCustomer finds sales for one customer, newest first
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// Save persists a sale and its lines
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock updates a sale and its lines with optimistic version checking
	SaveWithLock(ctx context.Context, sale *Sale) error

	// CountForTenant counts sales for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateNumber produces the next sale document number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	// FindByIDForTenant finds a purchase with its lines within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Purchase, error)

	// FindByIDForTenantLocked finds a purchase with its lines, acquiring a row
	// lock on the header for the duration of the surrounding transaction
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Purchase, error)

	// FindByNumber finds a purchase by its document number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Purchase, error)

	// FindAllForTenant finds purchases for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Purchase, error)

	// FindBySupplier finds purchases for one supplier, newest first
	FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]Purchase, error)

	// Save persists a purchase and its lines
	Save(ctx context.Context, purchase *Purchase) error

	// SaveWithLock updates a purchase and its lines with optimistic version checking
	SaveWithLock(ctx context.Context, purchase *Purchase) error

	// CountForTenant counts purchases for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateNumber produces the next purchase document number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// CustomerReturnRepository defines the interface for customer return persistence
type CustomerReturnRepository interface {
	// FindByIDForTenant finds a customer return within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CustomerReturn, error)

	// FindBySale finds returns processed against one sale
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]CustomerReturn, error)

	// FindAllForTenant finds customer returns for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CustomerReturn, error)

	// Save persists a customer return
	Save(ctx context.Context, ret *CustomerReturn) error

	// CountForTenant counts customer returns for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateNumber produces the next customer return document number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// SupplierReturnRepository defines the interface for supplier return persistence
type SupplierReturnRepository interface {
	// FindByIDForTenant finds a supplier return within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SupplierReturn, error)

	// FindByPurchase finds returns processed against one purchase
	FindByPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]SupplierReturn, error)

	// FindAllForTenant finds supplier returns for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SupplierReturn, error)

	// Save persists a supplier return
	Save(ctx context.Context, ret *SupplierReturn) error

	// CountForTenant counts supplier returns for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateNumber produces the next supplier return document number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByEntity finds payments settled against one customer or supplier
	FindByEntity(ctx context.Context, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// FindAllForTenant finds payments for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// Save persists a payment
	Save(ctx context.Context, payment *Payment) error

	// CountForTenant counts payments for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateNumber produces the next payment document number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
