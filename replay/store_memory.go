package replay

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. It does not give cross-instance
// replay protection; use it for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ticker  *time.Ticker
	done    chan struct{}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store.
// cleanupInterval defines how often expired entries will be purged.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ticker:  time.NewTicker(cleanupInterval),
		done:    make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !time.Now().Before(entry.expiresAt) {
		// Expired, remove and treat as missing
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.cleanup()
		case <-s.done:
			s.ticker.Stop()
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Stop stops the background cleanup goroutine.
func (s *MemoryStore) Stop() {
	close(s.done)
}
