package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrSnapshotNotFound is returned by a Store when nothing was saved for a cart.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// Store is the durable side of the persistence mirror. It stores opaque
// snapshot bytes per cart id; encoding is owned by Mirror.
type Store interface {
	Load(ctx context.Context, cartID string) ([]byte, error)
	Save(ctx context.Context, cartID string, snapshot []byte) error
	Delete(ctx context.Context, cartID string) error
}

// MemoryStore keeps snapshots in process. Used by tests and the memory driver.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Load(ctx context.Context, cartID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[cartID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) Save(ctx context.Context, cartID string, snapshot []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[cartID] = append([]byte(nil), snapshot...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, cartID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, cartID)
	return nil
}
