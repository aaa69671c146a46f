// Package inventory guards Product stock. Cart mutations get an advisory
// check (stock is validated but not taken); order creation commits the
// decrement through the store's conditional update.
package inventory

import (
	"context"
	"errors"
	"log"

	"github.com/lmoreno89/tienda-core/internal/catalog"
)

var (
	ErrInactive = errors.New("product is not available")
)

type Guard struct {
	products catalog.Store
}

func NewGuard(products catalog.Store) *Guard {
	return &Guard{products: products}
}

// Reserve checks that targetQty units of the product could be taken right
// now. targetQty is the desired total for a cart line, not a delta. Nothing
// is decremented; the authoritative check happens in Commit at order time.
func (g *Guard) Reserve(ctx context.Context, productID string, targetQty int) (*catalog.Product, error) {
	p, err := g.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrInactive
	}
	if targetQty > p.Stock {
		return nil, &catalog.InsufficientStockError{
			ProductID: productID,
			Requested: targetQty,
			Available: p.Stock,
		}
	}
	return p, nil
}

// Commit takes qty units of stock, failing when fewer than qty remain. The
// check and the decrement are a single store operation, so concurrent
// commits against the same product cannot oversell.
func (g *Guard) Commit(ctx context.Context, productID string, qty int) error {
	return g.products.DecrementStock(ctx, productID, qty)
}

// Release returns qty units previously taken by Commit. Used to unwind a
// multi-line order when a later line fails. Errors are logged, not
// propagated: the caller is already on a failure path.
func (g *Guard) Release(ctx context.Context, productID string, qty int) {
	if err := g.products.IncrementStock(ctx, productID, qty); err != nil {
		log.Printf("[inventory] release failed product=%s qty=%d err=%v", productID, qty, err)
	}
}
