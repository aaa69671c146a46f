package cart

import "github.com/shopspring/decimal"

// Line is one product entry in a cart. Name/Price/Image are a snapshot taken
// from the catalog when the line was added or last bumped, not a live join,
// so the cart keeps rendering even if the product changes underneath it.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart holds at most one line per product. UserID is empty for anonymous
// carts, which live on the client and never touch the cart store.
type Cart struct {
	UserID string `json:"user_id,omitempty"`
	Lines  []Line `json:"lines"`
}

// View is the wire shape of a cart: lines plus totals. Totals are derived
// on every read and never persisted.
// swagger:model
type View struct {
	UserID     string `json:"user_id,omitempty"`
	Lines      []Line `json:"lines"`
	TotalItems int    `json:"total_items"`
	TotalPrice string `json:"total_price"`
}

func (c *Cart) lineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// TotalItems sums line quantities.
func (c *Cart) TotalItems() int {
	n := 0
	for i := range c.Lines {
		n += c.Lines[i].Quantity
	}
	return n
}

// TotalPrice sums price*quantity over the lines. Prices come from our own
// catalog snapshots (NUMERIC::text), so parse failures are treated as zero.
func (c *Cart) TotalPrice() string {
	total := decimal.Zero
	for i := range c.Lines {
		p, err := decimal.NewFromString(c.Lines[i].Price)
		if err != nil {
			continue
		}
		total = total.Add(p.Mul(decimal.NewFromInt(int64(c.Lines[i].Quantity))))
	}
	return total.StringFixed(2)
}

// View materializes the derived totals alongside the lines.
func (c *Cart) View() View {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return View{
		UserID:     c.UserID,
		Lines:      lines,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}
