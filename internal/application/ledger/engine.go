package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
)

// maxIdempotencyKeyLength bounds caller-supplied idempotency keys.
const maxIdempotencyKeyLength = 128

// TransactionEngine executes ledger operations. Every operation runs inside
// one TransactionScope: the documents, stock changes, balance changes, audit
// records and staged events of an operation commit together or not at all.
//
// The engine trusts nothing from the caller beyond identities: quantities are
// re-resolved through the unit conversion rules, prices through the item's
// tier prices, and all totals are recomputed server-side.
type TransactionEngine struct {
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	stock       *StockLedger
	balance     *BalanceLedger
}

// NewTransactionEngine creates a new TransactionEngine.
func NewTransactionEngine(scope TransactionScope, idempotency shared.IdempotencyStore, idemConfig shared.IdempotencyConfig) *TransactionEngine {
	return &TransactionEngine{
		scope:       scope,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		stock:       NewStockLedger(),
		balance:     NewBalanceLedger(),
	}
}

// claimIdempotencyKey claims a caller-supplied key before an operation runs.
// Replaying a consumed key fails with DUPLICATE_REQUEST. The returned release
// function frees the key again; operations call it when they fail before
// commit so the caller may resubmit.
func (e *TransactionEngine) claimIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (func(), error) {
	noop := func() {}

	if key == "" || e.idempotency == nil || !e.idemConfig.Enabled {
		return noop, nil
	}
	if len(key) > maxIdempotencyKeyLength {
		return noop, shared.NewValidationError("idempotency key exceeds %d characters", maxIdempotencyKeyLength)
	}

	// Keys are tenant-scoped so tenants cannot interfere with each other.
	scopedKey := tenantID.String() + ":" + key

	fresh, err := e.idempotency.MarkProcessed(ctx, scopedKey, e.idemConfig.TTL)
	if err != nil {
		return noop, err
	}
	if !fresh {
		return noop, shared.ErrDuplicateRequest
	}

	return func() {
		// The operation already failed with its own error; a failed
		// release only costs the caller a DUPLICATE_REQUEST on retry.
		_ = e.idempotency.Clear(ctx, scopedKey)
	}, nil
}

// validateActor checks the explicit tenant and user identities every
// operation must carry.
func validateActor(tenantID, userID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return shared.NewValidationError("tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return shared.NewValidationError("user ID cannot be empty")
	}
	return nil
}
