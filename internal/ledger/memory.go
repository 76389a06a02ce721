package ledger

import (
	"context"
	"sync"

	"github.com/ivanvaic99/fintrack/internal/model"
)

// MemoryStore keeps transactions in process memory. Identifiers increase
// monotonically and are never reused.
type MemoryStore struct {
	mu     sync.Mutex
	nextID model.ID
	items  []model.Transaction
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Insert(ctx context.Context, d model.Draft) (model.ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, storageErr("insert", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.items = append(s.items, d.WithID(id))
	return id, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id model.ID) error {
	if err := ctx.Err(); err != nil {
		return storageErr("delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.items...), nil
}

func (s *MemoryStore) Close() error { return nil }
