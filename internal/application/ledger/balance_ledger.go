package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceLedger applies balance changes to customers and suppliers and
// records a BalanceEntry for every change. The live balance and its audit
// entry are always written in the same transaction.
type BalanceLedger struct{}

// NewBalanceLedger creates a new BalanceLedger.
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{}
}

// BalanceChangeOpts carries the audit context for a balance change.
type BalanceChangeOpts struct {
	// AllowNegative lets the delta drive the balance below zero. Set for
	// credit-note style changes; everything else trips the negative guard.
	AllowNegative bool
	SourceID      *uuid.UUID
	OperatorID    *uuid.UUID
	Note          string
}

// BalanceChange reports one applied balance change.
type BalanceChange struct {
	Kind     partner.EntityKind
	EntityID uuid.UUID
	Before   decimal.Decimal
	After    decimal.Decimal
	Entry    *partner.BalanceEntry
	Events   []shared.DomainEvent
}

// balanceHolder is the slice of the customer/supplier contract the ledger
// needs; both aggregates satisfy it.
type balanceHolder interface {
	CurrentBalance() decimal.Decimal
	ApplyBalanceDelta(delta decimal.Decimal, allowNegative bool) error
	SetBalanceAbsolute(newBalance decimal.Decimal)
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// ApplyDelta shifts an entity's balance by delta and writes the audit entry.
func (l *BalanceLedger) ApplyDelta(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, delta decimal.Decimal, entryType partner.BalanceEntryType, opts BalanceChangeOpts) (*BalanceChange, error) {
	holder, save, err := l.loadHolder(ctx, repos, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}

	before := holder.CurrentBalance()
	if err := holder.ApplyBalanceDelta(delta, opts.AllowNegative); err != nil {
		return nil, err
	}
	after := holder.CurrentBalance()

	if err := save(ctx); err != nil {
		return nil, err
	}

	entry, err := l.writeEntry(ctx, repos, tenantID, kind, entityID, entryType, delta, before, after, opts)
	if err != nil {
		return nil, err
	}

	return &BalanceChange{
		Kind:     kind,
		EntityID: entityID,
		Before:   before,
		After:    after,
		Entry:    entry,
		Events:   drainEvents(holder),
	}, nil
}

// SettlePayment reduces an entity's balance by a received payment. Fails
// with OVERPAYMENT_NOT_ALLOWED when the amount exceeds the current balance,
// leaving everything untouched.
func (l *BalanceLedger) SettlePayment(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, amount decimal.Decimal, opts BalanceChangeOpts) (*BalanceChange, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("payment amount must be positive")
	}

	holder, save, err := l.loadHolder(ctx, repos, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}

	before := holder.CurrentBalance()
	if amount.GreaterThan(before) {
		return nil, shared.NewDomainError("OVERPAYMENT_NOT_ALLOWED",
			"Payment of "+amount.String()+" exceeds the outstanding balance of "+before.String())
	}

	delta := amount.Neg()
	if err := holder.ApplyBalanceDelta(delta, false); err != nil {
		return nil, err
	}
	after := holder.CurrentBalance()

	if err := save(ctx); err != nil {
		return nil, err
	}

	entry, err := l.writeEntry(ctx, repos, tenantID, kind, entityID, partner.BalanceEntryTypePayment, delta, before, after, opts)
	if err != nil {
		return nil, err
	}

	return &BalanceChange{
		Kind:     kind,
		EntityID: entityID,
		Before:   before,
		After:    after,
		Entry:    entry,
		Events:   drainEvents(holder),
	}, nil
}

// Override sets an entity's balance to an absolute value without
// reconciliation against history. The jump is audited as an OVERRIDE entry.
func (l *BalanceLedger) Override(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, newBalance decimal.Decimal, opts BalanceChangeOpts) (*BalanceChange, error) {
	holder, save, err := l.loadHolder(ctx, repos, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}

	before := holder.CurrentBalance()
	holder.SetBalanceAbsolute(newBalance)
	after := holder.CurrentBalance()

	if err := save(ctx); err != nil {
		return nil, err
	}

	entry, err := l.writeEntry(ctx, repos, tenantID, kind, entityID, partner.BalanceEntryTypeOverride, after.Sub(before), before, after, opts)
	if err != nil {
		return nil, err
	}

	return &BalanceChange{
		Kind:     kind,
		EntityID: entityID,
		Before:   before,
		After:    after,
		Entry:    entry,
		Events:   drainEvents(holder),
	}, nil
}

// loadHolder reads the customer or supplier under a row lock and returns it
// with its save function.
func (l *BalanceLedger) loadHolder(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID) (balanceHolder, func(context.Context) error, error) {
	switch kind {
	case partner.EntityKindCustomer:
		customer, err := repos.CustomerRepo().FindByIDForTenantLocked(ctx, tenantID, entityID)
		if err != nil {
			return nil, nil, err
		}
		return customer, func(ctx context.Context) error {
			return repos.CustomerRepo().SaveWithLock(ctx, customer)
		}, nil
	case partner.EntityKindSupplier:
		supplier, err := repos.SupplierRepo().FindByIDForTenantLocked(ctx, tenantID, entityID)
		if err != nil {
			return nil, nil, err
		}
		return supplier, func(ctx context.Context) error {
			return repos.SupplierRepo().SaveWithLock(ctx, supplier)
		}, nil
	default:
		return nil, nil, shared.NewValidationError("unknown entity kind %q", string(kind))
	}
}

func (l *BalanceLedger) writeEntry(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, kind partner.EntityKind, entityID uuid.UUID, entryType partner.BalanceEntryType, delta, before, after decimal.Decimal, opts BalanceChangeOpts) (*partner.BalanceEntry, error) {
	entry, err := partner.NewBalanceEntry(tenantID, kind, entityID, entryType, delta, before, after)
	if err != nil {
		return nil, err
	}
	if opts.SourceID != nil {
		entry.WithSource(*opts.SourceID)
	}
	if opts.Note != "" {
		entry.WithNote(opts.Note)
	}
	if opts.OperatorID != nil {
		entry.WithOperator(*opts.OperatorID)
	}

	if err := repos.BalanceEntryRepo().Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
