package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
)

// OutboxProcessorConfig tunes the background drain.
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig drains batches of 100 every 5 seconds
// and prunes sent entries older than a week, hourly.
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// OutboxProcessorConfigFrom maps the application outbox section onto
// processor settings, keeping defaults for anything unset.
func OutboxProcessorConfigFrom(cfg config.OutboxConfig) OutboxProcessorConfig {
	pc := DefaultOutboxProcessorConfig()
	if cfg.BatchSize > 0 {
		pc.BatchSize = cfg.BatchSize
	}
	if cfg.PollInterval > 0 {
		pc.PollInterval = cfg.PollInterval
	}
	pc.CleanupEnabled = cfg.CleanupEnabled
	if cfg.CleanupRetention > 0 {
		pc.CleanupRetention = cfg.CleanupRetention
	}
	return pc
}

// OutboxProcessor drains staged events to the bus in the background.
// Delivery is at-least-once: an entry is retried with backoff until it
// is sent or goes dead, and subscribers are expected to deduplicate.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventBus
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventBus,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger,
	}
}

// Start launches the drain loop, plus the cleanup loop when enabled.
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.run(ctx, p.config.PollInterval, p.processBatch)
	if p.config.CleanupEnabled {
		p.run(ctx, p.config.CleanupInterval, p.cleanup)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop cancels the loops and waits for them, bounded by ctx.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run ticks fn every interval until ctx is cancelled.
func (p *OutboxProcessor) run(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// processBatch drains one batch of fresh entries and one of entries
// whose retry is due.
func (p *OutboxProcessor) processBatch(ctx context.Context) {
	p.drain(ctx, "pending", func() ([]*shared.OutboxEntry, error) {
		return p.repo.FindPending(ctx, p.config.BatchSize)
	})
	p.drain(ctx, "retryable", func() ([]*shared.OutboxEntry, error) {
		return p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	})
}

func (p *OutboxProcessor) drain(ctx context.Context, kind string, find func() ([]*shared.OutboxEntry, error)) {
	entries, err := find()
	if err != nil {
		p.logger.Error("failed to load outbox entries",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	if len(entries) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	// Claim atomically so concurrent processors never double-deliver
	// from the same batch.
	claimed, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.logger.Error("failed to claim outbox entries", zap.Error(err))
		return
	}

	for _, entry := range claimed {
		if err := p.deliver(ctx, entry); err != nil {
			p.recordFailure(ctx, entry, err)
			continue
		}
		entry.MarkSent()
		if err := p.repo.Update(ctx, entry); err != nil {
			p.logger.Error("failed to mark entry as sent",
				zap.String("event_id", entry.EventID.String()),
				zap.Error(err),
			)
			continue
		}
		p.logger.Debug("event delivered",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
		)
	}
}

// deliver decodes the payload and publishes it on the bus.
func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return err
	}
	return p.eventBus.Publish(ctx, event)
}

func (p *OutboxProcessor) recordFailure(ctx context.Context, entry *shared.OutboxEntry, cause error) {
	p.logger.Error("failed to deliver event",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.Error(cause),
	)

	entry.MarkFailed(cause.Error())
	if entry.IsDead() {
		p.logger.Warn("event moved to dead letter queue",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.String("aggregate_type", entry.AggregateType),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", entry.LastError),
		)
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to persist delivery failure", zap.Error(err))
	}
}

// cleanup prunes sent entries past the retention window.
func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to prune outbox", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("pruned sent outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
