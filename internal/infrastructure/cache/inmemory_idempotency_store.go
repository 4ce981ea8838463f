package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shopledger/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps claims in a map with per-key expiry.
// State is per process, so it only suits single-instance deployments
// and tests; a janitor goroutine evicts expired claims.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	claims    map[string]time.Time
	stop      chan struct{}
	done      sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore builds the store and starts its janitor.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		claims: make(map[string]time.Time),
		stop:   make(chan struct{}),
	}
	s.done.Add(1)
	go s.janitor()
	return s
}

// MarkProcessed claims key for ttl. True means this caller won the
// claim; false means a live claim already exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.claims[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.claims[key] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether key has a live claim.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, ok := s.claims[key]
	return ok && time.Now().Before(expiry), nil
}

// Clear releases a claim so the same request can be retried after its
// operation failed.
func (s *InMemoryIdempotencyStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.claims, key)
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.done.Wait()
	})
	return nil
}

// Size reports the number of claims, expired ones included, for tests
// and monitoring.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

func (s *InMemoryIdempotencyStore) janitor() {
	defer s.done.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiry := range s.claims {
		if now.After(expiry) {
			delete(s.claims, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
