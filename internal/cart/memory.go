package cart

import (
	"context"
	"sync"
)

// MemStore is an in-memory cart Store used for tests and local scenarios.
type MemStore struct {
	mu    sync.Mutex
	carts map[string][]Line
}

func NewMemStore() *MemStore {
	return &MemStore{carts: make(map[string][]Line)}
}

func (m *MemStore) Get(ctx context.Context, userID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Cart{UserID: userID, Lines: append([]Line(nil), m.carts[userID]...)}, nil
}

func (m *MemStore) Save(ctx context.Context, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.UserID] = append([]Line(nil), c.Lines...)
	return nil
}

func (m *MemStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}
