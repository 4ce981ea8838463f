package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockLedger applies stock changes to items and records a StockMovement for
// every change. It never writes one without the other; callers run it inside
// a TransactionScope so the pair commits atomically.
type StockLedger struct{}

// NewStockLedger creates a new StockLedger.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// StockChangeOpts carries the audit context for a stock change.
type StockChangeOpts struct {
	Source     inventory.MovementSource
	SourceID   *uuid.UUID
	OperatorID *uuid.UUID
	Reason     string
}

// StockChange reports one applied stock change.
type StockChange struct {
	Item     *catalog.Item
	Movement *inventory.StockMovement
	Events   []shared.DomainEvent
}

// Increase adds stock to an already-loaded item. The item must have been
// read under a row lock by the caller.
func (l *StockLedger) Increase(ctx context.Context, repos TransactionalRepositories, item *catalog.Item, quantity decimal.Decimal, opts StockChangeOpts) (*StockChange, error) {
	return l.apply(ctx, repos, item, inventory.MovementTypeIncrease, quantity, opts)
}

// Decrease removes stock from an already-loaded item, failing with
// INSUFFICIENT_STOCK when the item cannot cover the quantity.
func (l *StockLedger) Decrease(ctx context.Context, repos TransactionalRepositories, item *catalog.Item, quantity decimal.Decimal, opts StockChangeOpts) (*StockChange, error) {
	return l.apply(ctx, repos, item, inventory.MovementTypeDecrease, quantity, opts)
}

func (l *StockLedger) apply(ctx context.Context, repos TransactionalRepositories, item *catalog.Item, movementType inventory.MovementType, quantity decimal.Decimal, opts StockChangeOpts) (*StockChange, error) {
	before := item.Quantity

	var err error
	if movementType == inventory.MovementTypeIncrease {
		err = item.IncreaseStock(quantity)
	} else {
		err = item.DecreaseStock(quantity)
	}
	if err != nil {
		return nil, err
	}

	if err := repos.ItemRepo().SaveWithLock(ctx, item); err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(item.TenantID, item.ID, movementType, quantity, before, item.Quantity, opts.Source)
	if err != nil {
		return nil, err
	}
	if opts.SourceID != nil {
		movement.WithSource(*opts.SourceID)
	}
	if opts.Reason != "" {
		movement.WithReason(opts.Reason)
	}
	if opts.OperatorID != nil {
		movement.WithOperator(*opts.OperatorID)
	}

	if err := repos.StockMovementRepo().Save(ctx, movement); err != nil {
		return nil, err
	}

	return &StockChange{
		Item:     item,
		Movement: movement,
		Events:   drainEvents(item),
	}, nil
}

// eventRecorder is the slice of the aggregate root contract the ledgers need
// to collect pending events.
type eventRecorder interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// drainEvents takes the pending events off an aggregate so they can be staged
// exactly once by the surrounding operation.
func drainEvents(a eventRecorder) []shared.DomainEvent {
	events := a.GetDomainEvents()
	a.ClearDomainEvents()
	return events
}
