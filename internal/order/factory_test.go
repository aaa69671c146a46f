package order

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno89/tienda-core/internal/catalog"
	"github.com/lmoreno89/tienda-core/internal/inventory"
)

func testProducts(stocks map[string]int) *catalog.MemStore {
	var seed []catalog.Product
	for id, stock := range stocks {
		seed = append(seed, catalog.Product{
			ID:     id,
			Name:   "Product " + id,
			Price:  "100.00",
			Stock:  stock,
			Active: true,
		})
	}
	return catalog.NewMemStore(seed...)
}

func validInput(items ...Item) CreateInput {
	return CreateInput{
		UserID: "u1",
		Items:  items,
		Customer: Customer{
			Name:  "Ana Torres",
			Email: "ana@example.com",
		},
		ShippingAddr:  Address{Street: "Av. Reforma 10", City: "CDMX", Country: "MX"},
		BillingAddr:   Address{Street: "Av. Reforma 10", City: "CDMX", Country: "MX"},
		PaymentMethod: PaymentMethodCard,
		Pricing: Pricing{
			Subtotal:     "200.00",
			Tax:          "20.00",
			ShippingCost: "10.00",
			Total:        "230.00",
		},
	}
}

func TestCreate_HappyPath(t *testing.T) {
	ctx := context.Background()
	products := testProducts(map[string]int{"p1": 5})
	orders := NewMemStore()
	f := NewFactory(orders, inventory.NewGuard(products))

	o, err := f.Create(ctx, validInput(Item{ProductID: "p1", Name: "Keyboard", Quantity: 2, Price: "100.00"}))
	require.NoError(t, err)

	// Caller pricing is stored verbatim.
	assert.Equal(t, "230.00", o.Total)
	assert.Equal(t, "200.00", o.Subtotal)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Regexp(t, numberPattern, o.Number)

	// Stock decremented by the ordered quantity.
	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	stored, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Items, stored.Items)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(NewMemStore(), inventory.NewGuard(testProducts(map[string]int{"p1": 5})))

	_, err := f.Create(ctx, validInput())
	assert.ErrorIs(t, err, ErrEmptyCart)

	in := validInput(Item{ProductID: "p1", Quantity: 1, Price: "100.00"})
	in.Customer.Email = ""
	_, err = f.Create(ctx, in)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "customer.email", valErr.Field)

	in = validInput(Item{ProductID: "p1", Quantity: 1, Price: "100.00"})
	in.ShippingAddr.City = ""
	_, err = f.Create(ctx, in)
	require.ErrorAs(t, err, &valErr)

	in = validInput(Item{ProductID: "p1", Quantity: 1, Price: "100.00"})
	in.PaymentMethod = "cheque"
	_, err = f.Create(ctx, in)
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "payment_method", valErr.Field)

	in = validInput(Item{ProductID: "p1", Quantity: 0, Price: "100.00"})
	_, err = f.Create(ctx, in)
	require.ErrorAs(t, err, &valErr)
}

func TestCreate_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	products := testProducts(map[string]int{"p1": 1})
	orders := NewMemStore()
	f := NewFactory(orders, inventory.NewGuard(products))

	_, err := f.Create(ctx, validInput(Item{ProductID: "p1", Quantity: 2, Price: "100.00"}))
	var stockErr *catalog.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)

	// No orphan order, stock untouched.
	all, err := orders.ScanAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	p, _ := products.GetByID(ctx, "p1")
	assert.Equal(t, 1, p.Stock)
}

func TestCreate_MultiLineFailureReleasesStock(t *testing.T) {
	ctx := context.Background()
	products := testProducts(map[string]int{"p1": 5, "p2": 1})
	orders := NewMemStore()
	f := NewFactory(orders, inventory.NewGuard(products))

	_, err := f.Create(ctx, validInput(
		Item{ProductID: "p1", Quantity: 3, Price: "100.00"},
		Item{ProductID: "p2", Quantity: 2, Price: "100.00"},
	))
	var stockErr *catalog.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// p1 was decremented before p2 failed; the failure must unwind it.
	p1, _ := products.GetByID(ctx, "p1")
	assert.Equal(t, 5, p1.Stock)
	p2, _ := products.GetByID(ctx, "p2")
	assert.Equal(t, 1, p2.Stock)

	all, err := orders.ScanAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// collideStore forces duplicate-number responses for the first n inserts.
type collideStore struct {
	*MemStore
	mu           sync.Mutex
	failuresLeft int
	attempts     int
}

func (s *collideStore) Insert(ctx context.Context, o *Order) error {
	s.mu.Lock()
	s.attempts++
	fail := s.failuresLeft > 0
	if fail {
		s.failuresLeft--
	}
	s.mu.Unlock()
	if fail {
		return ErrDuplicateNumber
	}
	return s.MemStore.Insert(ctx, o)
}

func TestCreate_RegeneratesNumberOnCollision(t *testing.T) {
	ctx := context.Background()
	products := testProducts(map[string]int{"p1": 5})
	store := &collideStore{MemStore: NewMemStore(), failuresLeft: 2}
	f := NewFactory(store, inventory.NewGuard(products))

	o, err := f.Create(ctx, validInput(Item{ProductID: "p1", Quantity: 1, Price: "100.00"}))
	require.NoError(t, err)
	assert.Equal(t, 3, store.attempts)
	assert.NotEmpty(t, o.Number)
}

func TestCreate_CollisionRetriesAreBounded(t *testing.T) {
	ctx := context.Background()
	products := testProducts(map[string]int{"p1": 5})
	store := &collideStore{MemStore: NewMemStore(), failuresLeft: 100}
	f := NewFactory(store, inventory.NewGuard(products))

	_, err := f.Create(ctx, validInput(Item{ProductID: "p1", Quantity: 1, Price: "100.00"}))
	require.ErrorIs(t, err, ErrDuplicateNumber)
	assert.Equal(t, maxNumberRetries, store.attempts)

	// Exhausted retries must release the committed stock.
	p, _ := products.GetByID(ctx, "p1")
	assert.Equal(t, 5, p.Stock)
}

func TestCreate_OrderSnapshotIsImmutable(t *testing.T) {
	ctx := context.Background()
	products := testProducts(map[string]int{"p1": 5})
	orders := NewMemStore()
	f := NewFactory(orders, inventory.NewGuard(products))

	o, err := f.Create(ctx, validInput(Item{ProductID: "p1", Name: "Keyboard", Quantity: 2, Price: "100.00"}))
	require.NoError(t, err)

	// Catalog changes after the order exists.
	p, _ := products.GetByID(ctx, "p1")
	p.Name = "Renamed"
	p.Price = "999.99"
	require.NoError(t, products.Create(ctx, p))

	first, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, "Keyboard", first.Items[0].Name)
	assert.Equal(t, "100.00", first.Items[0].Price)
}

func TestCreate_ConcurrentOrdersNeverOversell(t *testing.T) {
	ctx := context.Background()
	const stock = 10
	const attempts = 25
	products := testProducts(map[string]int{"p1": stock})
	orders := NewMemStore()
	f := NewFactory(orders, inventory.NewGuard(products))

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Create(ctx, validInput(Item{ProductID: "p1", Quantity: 1, Price: "100.00"}))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
		} else {
			var stockErr *catalog.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, stock, ok)

	p, _ := products.GetByID(ctx, "p1")
	assert.Equal(t, 0, p.Stock)

	// Every committed order carries a distinct number.
	all, err := orders.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, stock)
	numbers := make(map[string]bool, len(all))
	for _, o := range all {
		assert.False(t, numbers[o.Number], "duplicate number %s", o.Number)
		numbers[o.Number] = true
	}
}

func TestResolvePricing(t *testing.T) {
	items := []Item{{ProductID: "p1", Quantity: 2, Price: "100.00"}}

	t.Run("trusted", func(t *testing.T) {
		p, verdict := resolvePricing(items, Pricing{Subtotal: "200.00", Tax: "20.00", ShippingCost: "10.00", Total: "230.00"})
		assert.Equal(t, PricingTrusted, verdict)
		assert.Equal(t, "230.00", p.Total)
	})

	t.Run("mismatched is stored verbatim", func(t *testing.T) {
		p, verdict := resolvePricing(items, Pricing{Subtotal: "150.00", Tax: "0.00", ShippingCost: "0.00", Total: "150.00"})
		assert.Equal(t, PricingMismatched, verdict)
		assert.Equal(t, "150.00", p.Total)
		assert.Equal(t, "150.00", p.Subtotal)
	})

	t.Run("recomputed when omitted", func(t *testing.T) {
		p, verdict := resolvePricing(items, Pricing{})
		assert.Equal(t, PricingRecomputed, verdict)
		assert.Equal(t, "200.00", p.Subtotal)
		assert.Equal(t, "200.00", p.Total)
		assert.Equal(t, "0.00", p.Tax)
	})
}
