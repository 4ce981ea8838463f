package event

import (
	"context"
	"fmt"

	"github.com/shopledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher stages domain events in the outbox table. It never sends
// anything itself; the processor picks staged entries up asynchronously.
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// SetMaxRetries overrides the per-entry retry budget for newly staged events.
// Zero keeps the default
func (p *OutboxPublisher) SetMaxRetries(n int) {
	p.maxRetries = n
}

// PublishWithTx writes events to the outbox within the provided transaction,
// so entries land atomically with the ledger writes that produced them.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		entry, err := p.stage(event)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// stage serializes a single event into a pending outbox entry.
func (p *OutboxPublisher) stage(event shared.DomainEvent) (*shared.OutboxEntry, error) {
	payload, err := p.serializer.Serialize(event)
	if err != nil {
		return nil, err
	}

	entry := shared.NewOutboxEntry(event.TenantID(), event, payload)
	if p.maxRetries > 0 {
		entry.MaxRetries = p.maxRetries
	}
	return entry, nil
}

// SaveEvents implements shared.OutboxEventSaver. The transaction provider
// must be the *gorm.DB the ledger writes are running on.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}
