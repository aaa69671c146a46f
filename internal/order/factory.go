// Package order converts finalized carts into immutable orders and drives
// them through the fulfillment and payment state machines.
package order

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmoreno89/tienda-core/internal/inventory"
)

// Order numbers collide rarely (same millisecond + same random suffix), so a
// handful of regenerations is plenty.
const maxNumberRetries = 5

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// PricingVerdict classifies the caller-supplied pricing block against the
// server-side recomputation of the item subtotal.
type PricingVerdict string

const (
	// PricingTrusted: caller subtotal matches sum(price*quantity).
	PricingTrusted PricingVerdict = "trusted"
	// PricingRecomputed: caller sent no totals; the server filled them in.
	PricingRecomputed PricingVerdict = "recomputed"
	// PricingMismatched: caller subtotal diverges from the items. The
	// caller values are stored verbatim anyway; the divergence is logged
	// because it skews revenue reporting.
	PricingMismatched PricingVerdict = "mismatched"
)

// CreateInput is the checkout payload handed to the factory: the cart
// snapshot plus the checkout form.
type CreateInput struct {
	UserID        string
	Items         []Item
	Customer      Customer
	ShippingAddr  Address
	BillingAddr   Address
	PaymentMethod PaymentMethod
	Pricing       Pricing
}

type Factory struct {
	orders Store
	guard  *inventory.Guard
}

func NewFactory(orders Store, guard *inventory.Guard) *Factory {
	return &Factory{orders: orders, guard: guard}
}

// Create turns a validated cart snapshot into a persisted order. Stock is
// re-validated and decremented per line through the guard's conditional
// update immediately before persisting; any failure unwinds the decrements
// already made, so a failed checkout leaves both stock and the order ledger
// untouched.
func (f *Factory) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	// Authoritative stock commit, line by line. The conditional decrement
	// makes each line linearizable against concurrent checkouts; lines
	// already taken are released if a later one fails.
	var taken []Item
	for _, it := range in.Items {
		if err := f.guard.Commit(ctx, it.ProductID, it.Quantity); err != nil {
			f.release(ctx, taken)
			return nil, err
		}
		taken = append(taken, it)
	}

	pricing, verdict := resolvePricing(in.Items, in.Pricing)

	now := time.Now().UTC()
	o := &Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Items:         append([]Item(nil), in.Items...),
		Customer:      in.Customer,
		ShippingAddr:  in.ShippingAddr,
		BillingAddr:   in.BillingAddr,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
		Subtotal:      pricing.Subtotal,
		Tax:           pricing.Tax,
		ShippingCost:  pricing.ShippingCost,
		Total:         pricing.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var err error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		o.Number = NewNumber()
		err = f.orders.Insert(ctx, o)
		if err == nil {
			if verdict == PricingMismatched {
				log.Printf("[order] pricing mismatch number=%s caller_subtotal=%s items_subtotal=%s",
					o.Number, o.Subtotal, itemsSubtotal(o.Items).StringFixed(2))
			}
			return o, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			break
		}
	}
	f.release(ctx, taken)
	return nil, err
}

func (f *Factory) release(ctx context.Context, taken []Item) {
	for _, it := range taken {
		f.guard.Release(ctx, it.ProductID, it.Quantity)
	}
}

func validate(in CreateInput) error {
	if len(in.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return &ValidationError{Field: "items", Reason: "quantity must be at least 1"}
		}
		if it.ProductID == "" {
			return &ValidationError{Field: "items", Reason: "product_id is required"}
		}
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return &ValidationError{Field: "customer.name", Reason: "required"}
	}
	if strings.TrimSpace(in.Customer.Email) == "" {
		return &ValidationError{Field: "customer.email", Reason: "required"}
	}
	if err := validateAddr("shipping_address", in.ShippingAddr); err != nil {
		return err
	}
	if err := validateAddr("billing_address", in.BillingAddr); err != nil {
		return err
	}
	if !ValidPaymentMethod(in.PaymentMethod) {
		return &ValidationError{Field: "payment_method", Reason: "unknown method"}
	}
	return nil
}

func validateAddr(field string, a Address) error {
	if strings.TrimSpace(a.Street) == "" {
		return &ValidationError{Field: field + ".street", Reason: "required"}
	}
	if strings.TrimSpace(a.City) == "" {
		return &ValidationError{Field: field + ".city", Reason: "required"}
	}
	if strings.TrimSpace(a.Country) == "" {
		return &ValidationError{Field: field + ".country", Reason: "required"}
	}
	return nil
}

// resolvePricing cross-checks the caller's subtotal against the items. The
// caller's numbers always win when present; an empty pricing block is filled
// from the items with zero tax and shipping.
func resolvePricing(items []Item, p Pricing) (Pricing, PricingVerdict) {
	computed := itemsSubtotal(items)

	if strings.TrimSpace(p.Subtotal) == "" && strings.TrimSpace(p.Total) == "" {
		tax := orZero(p.Tax)
		shipping := orZero(p.ShippingCost)
		total := computed.Add(tax).Add(shipping)
		return Pricing{
			Subtotal:     computed.StringFixed(2),
			Tax:          tax.StringFixed(2),
			ShippingCost: shipping.StringFixed(2),
			Total:        total.StringFixed(2),
		}, PricingRecomputed
	}

	caller, err := decimal.NewFromString(p.Subtotal)
	if err != nil || !caller.Equal(computed) {
		return p, PricingMismatched
	}
	return p, PricingTrusted
}

func itemsSubtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			continue
		}
		sum = sum.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

func orZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
