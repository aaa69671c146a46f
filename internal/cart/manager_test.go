package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno89/tienda-core/internal/catalog"
	"github.com/lmoreno89/tienda-core/internal/inventory"
)

func newTestManager(products ...catalog.Product) (*Manager, *catalog.MemStore) {
	ps := catalog.NewMemStore(products...)
	return NewManager(NewMemStore(), inventory.NewGuard(ps)), ps
}

func keyboard(stock int) catalog.Product {
	return catalog.Product{
		ID:     "p-keyboard",
		Name:   "Mechanical Keyboard",
		Price:  "199.90",
		Image:  "kb.jpg",
		Stock:  stock,
		Active: true,
	}
}

func TestAddItem_TargetQuantityAgainstStock(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(keyboard(5))

	c, err := m.AddItem(ctx, "u1", "p-keyboard", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.TotalItems())

	// Second add targets 6 against stock 5 and must fail whole; the cart
	// stays at 3.
	_, err = m.AddItem(ctx, "u1", "p-keyboard", 3)
	var stockErr *catalog.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)

	c, err = m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.TotalItems())
	require.Len(t, c.Lines, 1)
}

func TestAddItem_SnapshotsCurrentPrice(t *testing.T) {
	ctx := context.Background()
	m, ps := newTestManager(keyboard(10))

	c, err := m.AddItem(ctx, "u1", "p-keyboard", 1)
	require.NoError(t, err)
	assert.Equal(t, "199.90", c.Lines[0].Price)

	// Catalog price changes, then the line is bumped: the cart follows the
	// current price until the order is placed.
	p, err := ps.GetByID(ctx, "p-keyboard")
	require.NoError(t, err)
	p.Price = "249.00"
	require.NoError(t, ps.Create(ctx, p))

	c, err = m.AddItem(ctx, "u1", "p-keyboard", 1)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "249.00", c.Lines[0].Price)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestAddItem_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	p := keyboard(5)
	p.Active = false
	m, _ := newTestManager(p)

	_, err := m.AddItem(ctx, "u1", "p-keyboard", 1)
	assert.ErrorIs(t, err, inventory.ErrInactive)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(keyboard(5))

	_, err := m.AddItem(ctx, "u1", "p-keyboard", 2)
	require.NoError(t, err)

	c, err := m.UpdateQuantity(ctx, "u1", "p-keyboard", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Lines[0].Quantity)

	// Zero is rejected, not treated as removal.
	_, err = m.UpdateQuantity(ctx, "u1", "p-keyboard", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = m.UpdateQuantity(ctx, "u1", "p-keyboard", 6)
	var stockErr *catalog.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)

	_, err = m.UpdateQuantity(ctx, "u1", "p-missing", 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(keyboard(5))

	_, err := m.AddItem(ctx, "u1", "p-keyboard", 2)
	require.NoError(t, err)

	c, err := m.RemoveItem(ctx, "u1", "p-keyboard")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)

	// Removing again is not an error.
	c, err = m.RemoveItem(ctx, "u1", "p-keyboard")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(keyboard(5))

	_, err := m.AddItem(ctx, "u1", "p-keyboard", 2)
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, "u1"))

	c, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, "0.00", c.TotalPrice())
}

func TestDerivedTotals(t *testing.T) {
	c := &Cart{Lines: []Line{
		{ProductID: "a", Price: "10.50", Quantity: 2},
		{ProductID: "b", Price: "3.25", Quantity: 3},
	}}
	assert.Equal(t, 5, c.TotalItems())
	assert.Equal(t, "30.75", c.TotalPrice())

	v := c.View()
	assert.Equal(t, 5, v.TotalItems)
	assert.Equal(t, "30.75", v.TotalPrice)
}

func TestAnonymousCart_PureMutations(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(keyboard(5))

	var c Cart
	require.NoError(t, m.AddAnonymousItem(ctx, &c, "p-keyboard", 2))
	assert.Equal(t, 2, c.TotalItems())
	assert.Empty(t, c.UserID)

	// Failed validation leaves the client-held value untouched.
	err := m.AddAnonymousItem(ctx, &c, "p-keyboard", 4)
	var stockErr *catalog.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, c.TotalItems())

	require.NoError(t, m.UpdateAnonymousQuantity(ctx, &c, "p-keyboard", 5))
	assert.Equal(t, 5, c.TotalItems())

	m.RemoveAnonymousItem(&c, "p-keyboard")
	assert.Empty(t, c.Lines)

	err = m.AddAnonymousItem(ctx, &c, "p-missing", 1)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}
