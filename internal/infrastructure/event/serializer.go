package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/shopledger/backend/internal/domain/shared"
)

// EventSerializer round-trips domain events through JSON for the
// outbox table. Deserialization needs the concrete Go type back, so
// every event type is registered once at startup with a prototype
// value (see RegisterAllEvents).
type EventSerializer struct {
	mu       sync.RWMutex
	decoders map[string]func() any
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{decoders: make(map[string]func() any)}
}

// Register maps an event type string to the prototype's concrete type.
// eventType must match what EventType() returns on the event.
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s.mu.Lock()
	s.decoders[eventType] = func() any { return reflect.New(t).Interface() }
	s.mu.Unlock()
}

func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize decodes an outbox payload back into the registered
// concrete event type.
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	decoder, ok := s.decoders[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	target := decoder()
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := target.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("type registered for %s does not implement DomainEvent", eventType)
	}
	return event, nil
}

// IsRegistered reports whether Deserialize can handle eventType.
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.decoders[eventType]
	return ok
}

// RegisteredTypes lists every registered event type.
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.decoders))
	for t := range s.decoders {
		types = append(types, t)
	}
	return types
}
