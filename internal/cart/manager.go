// Package cart owns the two cart representations: a persisted per-user cart
// and an anonymous cart held by the client. Every quantity mutation goes
// through the inventory guard before the cart changes.
package cart

import (
	"context"
	"errors"

	"github.com/lmoreno89/tienda-core/internal/catalog"
	"github.com/lmoreno89/tienda-core/internal/inventory"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type Manager struct {
	carts Store
	guard *inventory.Guard
}

func NewManager(carts Store, guard *inventory.Guard) *Manager {
	return &Manager{carts: carts, guard: guard}
}

// Get returns the user's cart, creating an empty one on first touch.
func (m *Manager) Get(ctx context.Context, userID string) (*Cart, error) {
	return m.carts.Get(ctx, userID)
}

// AddItem adds qty units of a product to the user's cart. If a line already
// exists the target quantity is existing+qty; the target (not the delta) is
// validated against stock. On success name/price/image are re-snapshotted
// from the catalog, so a bumped line picks up the current price.
func (m *Manager) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := addLine(ctx, m.guard, c, productID, qty); err != nil {
		return nil, err
	}
	if err := m.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity sets the line for productID to exactly newQty. Zero or
// negative is rejected, not treated as removal.
func (m *Manager) UpdateQuantity(ctx context.Context, userID, productID string, newQty int) (*Cart, error) {
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := updateLineQuantity(ctx, m.guard, c, productID, newQty); err != nil {
		return nil, err
	}
	if err := m.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem drops the line for productID. Removing an absent line is not
// an error, so replaying the same request is safe.
func (m *Manager) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := m.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	removeLine(c, productID)
	if err := m.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the user's cart.
func (m *Manager) Clear(ctx context.Context, userID string) error {
	return m.carts.Delete(ctx, userID)
}

//
// Anonymous path: the same mutations over a caller-held Cart value. No cart
// store round-trip; the catalog is only read for validation and snapshots.
// The cart is left untouched when validation fails.
//

func (m *Manager) AddAnonymousItem(ctx context.Context, c *Cart, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return addLine(ctx, m.guard, c, productID, qty)
}

func (m *Manager) UpdateAnonymousQuantity(ctx context.Context, c *Cart, productID string, newQty int) error {
	return updateLineQuantity(ctx, m.guard, c, productID, newQty)
}

func (m *Manager) RemoveAnonymousItem(c *Cart, productID string) {
	removeLine(c, productID)
}

func (m *Manager) ClearAnonymous(c *Cart) {
	c.Lines = nil
}

func addLine(ctx context.Context, guard *inventory.Guard, c *Cart, productID string, qty int) error {
	target := qty
	idx := c.lineIndex(productID)
	if idx >= 0 {
		target = c.Lines[idx].Quantity + qty
	}
	p, err := guard.Reserve(ctx, productID, target)
	if err != nil {
		return err
	}
	line := snapshot(p, target)
	if idx >= 0 {
		c.Lines[idx] = line
	} else {
		c.Lines = append(c.Lines, line)
	}
	return nil
}

func updateLineQuantity(ctx context.Context, guard *inventory.Guard, c *Cart, productID string, newQty int) error {
	if newQty < 1 {
		return ErrInvalidQuantity
	}
	idx := c.lineIndex(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	p, err := guard.Reserve(ctx, productID, newQty)
	if err != nil {
		return err
	}
	c.Lines[idx] = snapshot(p, newQty)
	return nil
}

func removeLine(c *Cart, productID string) {
	idx := c.lineIndex(productID)
	if idx < 0 {
		return
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
}

func snapshot(p *catalog.Product, qty int) Line {
	return Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	}
}
