package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopledger/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives. With no event types it
// subscribes as a wildcard handler on the in-memory bus.
type MockEventHandler struct {
	mu       sync.Mutex
	types    []string
	seen     []shared.DomainEvent
	failWith error
}

// NewMockEventHandler creates a recording event handler for the given
// event types. No types means the handler wants everything.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{types: eventTypes}
}

// EventTypes returns the event types this handler subscribes to.
func (h *MockEventHandler) EventTypes() []string {
	return h.types
}

// Handle records the event, then returns the configured error, if any.
func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event)
	return h.failWith
}

// Handled returns a copy of all recorded events, in arrival order.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.seen...)
}

// HandledCount returns the number of recorded events.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

// HandledTypes returns the number of recorded events per event type.
func (h *MockEventHandler) HandledTypes() map[string]int {
	counts := make(map[string]int)
	for _, event := range h.Handled() {
		counts[event.EventType()]++
	}
	return counts
}

// SetError makes every subsequent Handle call fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failWith = err
}

// Reset clears recorded events and any configured error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = nil
	h.failWith = nil
}

// WaitForEventCount waits until the handler has recorded at least count
// events. Returns whether the count was reached in time.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for handler.HandledCount() < count {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}
