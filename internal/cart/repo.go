package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
)

// Store persists one cart per registered user. Get never fails on a missing
// cart; an empty cart is returned so callers always have something to mutate.
// Writes are last-writer-wins: a single user racing two mutations against
// their own cart is accepted for this domain.
type Store interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (r *PGStore) Get(ctx context.Context, userID string) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT product_id, name, price::text, image, quantity
		FROM cart_items WHERE user_id=$1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := &Cart{UserID: userID}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.Image, &l.Quantity); err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, l)
	}
	return c, rows.Err()
}

// Save rewrites the cart document in one transaction: delete then insert.
// Simpler than diffing lines and the row count per user is tiny.
func (r *PGStore) Save(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, c.UserID); err != nil {
		return err
	}
	for _, l := range c.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cart_items (user_id, product_id, name, price, image, quantity)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, c.UserID, l.ProductID, l.Name, l.Price, l.Image, l.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGStore) Delete(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
