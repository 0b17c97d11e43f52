package guest

import (
	"context"
	"sync"
)

// MemoryStorage is a non-durable Storage for tests and local development.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(ctx context.Context, cartID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.records[cartID]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (s *MemoryStorage) Save(ctx context.Context, cartID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.records[cartID] = cp
	return nil
}

func (s *MemoryStorage) Erase(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, cartID)
	return nil
}
