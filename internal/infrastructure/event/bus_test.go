package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent is the domain event used across this package's tests.
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID),
		Data:            "test data",
	}
}

// testHandler records every event it receives and can be told to fail
// or panic.
type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus(t *testing.T) {
	newBus := func() *InMemoryEventBus { return NewInMemoryEventBus(zap.NewNop()) }

	t.Run("should deliver an event to its subscriber", func(t *testing.T) {
		bus := newBus()
		handler := newTestHandler("StockChanged")
		bus.Subscribe(handler, "StockChanged")

		evt := newTestEvent("StockChanged", uuid.New())
		require.NoError(t, bus.Publish(context.Background(), evt))

		handled := handler.getHandled()
		require.Len(t, handled, 1)
		assert.Equal(t, evt, handled[0])
	})

	t.Run("should deliver each of several events", func(t *testing.T) {
		bus := newBus()
		handler := newTestHandler("StockChanged")
		bus.Subscribe(handler, "StockChanged")

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("StockChanged", uuid.New()),
			newTestEvent("StockChanged", uuid.New()),
		))
		assert.Len(t, handler.getHandled(), 2)
	})

	t.Run("should fan out to every subscriber of the type", func(t *testing.T) {
		bus := newBus()
		first := newTestHandler("StockChanged")
		second := newTestHandler("StockChanged")
		bus.Subscribe(first, "StockChanged")
		bus.Subscribe(second, "StockChanged")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))
		assert.Len(t, first.getHandled(), 1)
		assert.Len(t, second.getHandled(), 1)
	})

	t.Run("should treat a handler without event types as catch-all", func(t *testing.T) {
		bus := newBus()
		audit := newTestHandler()
		bus.Subscribe(audit)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("AnyEventType", uuid.New())))
		assert.Len(t, audit.getHandled(), 1)
	})

	t.Run("should keep delivering after a handler error", func(t *testing.T) {
		bus := newBus()
		failing := newTestHandler("StockChanged")
		failing.setError(errors.New("handler error"))
		healthy := newTestHandler("StockChanged")
		bus.Subscribe(failing, "StockChanged")
		bus.Subscribe(healthy, "StockChanged")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))
		assert.Len(t, failing.getHandled(), 1)
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("should keep delivering after a handler panic", func(t *testing.T) {
		bus := newBus()
		panicking := newTestHandler("StockChanged")
		panicking.panicMsg = "boom"
		healthy := newTestHandler("StockChanged")
		bus.Subscribe(panicking, "StockChanged")
		bus.Subscribe(healthy, "StockChanged")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("should skip handlers subscribed to other types", func(t *testing.T) {
		bus := newBus()
		handler := newTestHandler("BalanceChanged")
		bus.Subscribe(handler, "BalanceChanged")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))
		assert.Empty(t, handler.getHandled())
	})

	t.Run("should stop delivering after unsubscribe", func(t *testing.T) {
		bus := newBus()
		handler := newTestHandler("StockChanged")
		bus.Subscribe(handler, "StockChanged")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))
		bus.Unsubscribe(handler)
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))

		assert.Len(t, handler.getHandled(), 1)
	})

	t.Run("should remove a catch-all handler on unsubscribe", func(t *testing.T) {
		bus := newBus()
		audit := newTestHandler()
		bus.Subscribe(audit)
		bus.Unsubscribe(audit)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged", uuid.New())))
		assert.Empty(t, audit.getHandled())
	})

	t.Run("should start and stop cleanly", func(t *testing.T) {
		bus := newBus()
		require.NoError(t, bus.Start(context.Background()))
		require.NoError(t, bus.Stop(context.Background()))
	})
}
