package order

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory order Store used for tests and local scenarios.
// Insert enforces number uniqueness the way the SQL unique constraint does.
type MemStore struct {
	mu      sync.Mutex
	byID    map[string]*Order
	numbers map[string]bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:    make(map[string]*Order),
		numbers: make(map[string]bool),
	}
}

func (m *MemStore) Insert(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.numbers[o.Number] {
		return ErrDuplicateNumber
	}
	cp := clone(o)
	m.byID[o.ID] = cp
	m.numbers[o.Number] = true
	return nil
}

func (m *MemStore) GetByID(ctx context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(o), nil
}

func (m *MemStore) GetByNumber(ctx context.Context, number string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.byID {
		if o.Number == number {
			return clone(o), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) List(ctx context.Context, f Filter) ([]Order, error) {
	all, err := m.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []Order
	for _, o := range all {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	// newest first, like the SQL implementation
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []Order{}, nil
		}
		out = out[f.Offset:]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) Update(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[o.ID]
	if !ok {
		return ErrNotFound
	}
	// only the mutable tail, items stay as inserted
	cur.Status = o.Status
	cur.PaymentStatus = o.PaymentStatus
	cur.Notes = o.Notes
	cur.UpdatedAt = o.UpdatedAt
	return nil
}

func (m *MemStore) ScanAll(ctx context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *clone(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func clone(o *Order) *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp
}
