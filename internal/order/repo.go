package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateNumber maps the unique constraint on orders.number; the
	// factory retries with a fresh candidate.
	ErrDuplicateNumber = errors.New("order number already exists")
)

type Filter struct {
	UserID string
	Status Status
	Limit  int
	Offset int
}

type Store interface {
	Insert(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	// ScanAll returns the full ledger with items, for aggregation.
	ScanAll(ctx context.Context) ([]Order, error)
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

const orderColumns = `id, number, user_id, customer_name, customer_email, customer_phone,
	ship_street, ship_city, ship_zip, ship_country,
	bill_street, bill_city, bill_zip, bill_country,
	payment_method, payment_status, status,
	subtotal::text, tax::text, shipping_cost::text, total::text, notes, created_at, updated_at`

func (r *PGStore) Insert(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, number, user_id, customer_name, customer_email, customer_phone,
			ship_street, ship_city, ship_zip, ship_country,
			bill_street, bill_city, bill_zip, bill_country,
			payment_method, payment_status, status,
			subtotal, tax, shipping_cost, total, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`, o.ID, o.Number, o.UserID, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.ShippingAddr.Street, o.ShippingAddr.City, o.ShippingAddr.Zip, o.ShippingAddr.Country,
		o.BillingAddr.Street, o.BillingAddr.City, o.BillingAddr.Zip, o.BillingAddr.Country,
		o.PaymentMethod, o.PaymentStatus, o.Status,
		o.Subtotal, o.Tax, o.ShippingCost, o.Total, o.Notes, o.CreatedAt, o.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateNumber
		}
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, price, image)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, o.ID, it.ProductID, it.Name, it.Quantity, it.Price, it.Image); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGStore) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *PGStore) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE number=$1`, number)
}

func (r *PGStore) getOne(ctx context.Context, query, arg string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, query, arg), &o); err != nil {
		return nil, ErrNotFound
	}
	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PGStore) List(ctx context.Context, f Filter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, f.UserID, string(f.Status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *PGStore) Update(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Items are immutable after creation; only the mutable tail of the
	// order is ever written back.
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`, o.ID, o.Status, o.PaymentStatus, o.Notes, o.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGStore) ScanAll(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	byID := make(map[string]*Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	irows, err := r.db.Query(ctx, `SELECT order_id, product_id, name, quantity, price::text, image FROM order_items`)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var orderID string
		var it Item
		if err := irows.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price, &it.Image); err != nil {
			return nil, err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return orders, irows.Err()
}

func (r *PGStore) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, name, quantity, price::text, image
		FROM order_items WHERE order_id=$1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.Price, &it.Image); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, o *Order) error {
	return row.Scan(&o.ID, &o.Number, &o.UserID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.ShippingAddr.Street, &o.ShippingAddr.City, &o.ShippingAddr.Zip, &o.ShippingAddr.Country,
		&o.BillingAddr.Street, &o.BillingAddr.City, &o.BillingAddr.Zip, &o.BillingAddr.Country,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
