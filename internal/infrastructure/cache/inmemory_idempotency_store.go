package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
	resp      *StoredResponse
}

// InMemoryIdempotencyStore implements IdempotencyStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Reserve claims key unless a live entry exists
func (s *InMemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = entry{expiresAt: s.now().Add(ttl)}
	return true, nil
}

// Complete stores the response for key
func (s *InMemoryIdempotencyStore) Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := append([]byte(nil), resp.Body...)
	resp.Body = body
	s.entries[key] = entry{expiresAt: s.now().Add(ttl), resp: &resp}
	return nil
}

// Lookup returns the stored response of key
func (s *InMemoryIdempotencyStore) Lookup(ctx context.Context, key string) (*StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	if e.resp == nil {
		return nil, ErrRequestInProgress
	}
	resp := *e.resp
	return &resp, nil
}

// Release forgets key
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries in the store
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
