package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used for tests and local scenarios. Its
// DecrementStock holds the lock across check and write, giving the same
// linearizable compare-and-decrement the SQL conditional update provides.
type MemStore struct {
	mu       sync.Mutex
	products map[string]*Product
}

func NewMemStore(seed ...Product) *MemStore {
	m := &MemStore{products: make(map[string]*Product, len(seed))}
	for i := range seed {
		p := seed[i]
		m.products[p.ID] = &p
	}
	return m
}

func (m *MemStore) Create(ctx context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MemStore) GetByID(ctx context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) List(ctx context.Context, q Query) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	search := strings.ToLower(strings.TrimSpace(q.Q))
	for _, p := range m.products {
		if !p.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) DecrementStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return &InsufficientStockError{ProductID: id, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	return nil
}

func (m *MemStore) IncrementStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock += qty
	return nil
}

func (m *MemStore) LowStock(ctx context.Context, threshold, limit int) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []Product
	for _, p := range m.products {
		if p.Active && p.Stock < threshold {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
