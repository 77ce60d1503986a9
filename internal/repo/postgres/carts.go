package postgres

import (
	"context"
	"errors"

	"github.com/danmelak/shopcart/internal/domain/user"
	"github.com/danmelak/shopcart/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartsRepo mutates per-user cart rows with single-statement atomic deltas,
// so concurrent adds for the same user never lose updates.
type CartsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCartsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CartsRepo {
	return &CartsRepo{pool: pool, prom: prom}
}

func (r *CartsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CartsRepo) cartOp(op, outcome string) {
	if r.prom != nil {
		r.prom.CartOpsTotal.WithLabelValues(op, outcome).Inc()
	}
}

// AddItem increments the quantity by one, creating the row at 1 when the
// item was not in the cart yet.
func (r *CartsRepo) AddItem(ctx context.Context, userID string, itemID int) (user.Cart, error) {
	op := "carts.add_item"

	err := r.observe(op, func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO cart_items (user_id, item_id, quantity)
			VALUES ($1, $2, 1)
			ON CONFLICT (user_id, item_id)
			DO UPDATE SET quantity = cart_items.quantity + 1
		`, userID, itemID)

		return err
	})

	if err != nil {
		if isFKViolation(err) {
			r.cartOp("add", "error")
			return nil, user.ErrNotFound
		}

		r.cartOp("add", "error")
		return nil, err
	}

	r.cartOp("add", "applied")

	return r.Get(ctx, userID)
}

// RemoveItem decrements by one but never below zero: removing an item that
// is already at zero (or absent) is a no-op.
func (r *CartsRepo) RemoveItem(ctx context.Context, userID string, itemID int) (user.Cart, error) {
	var affected int64

	op := "carts.remove_item"

	err := r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE cart_items
			SET quantity = quantity - 1
			WHERE user_id = $1 AND item_id = $2 AND quantity > 0
		`, userID, itemID)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		r.cartOp("remove", "error")
		return nil, err
	}

	if affected == 0 {
		r.cartOp("remove", "noop")
	} else {
		r.cartOp("remove", "applied")
	}

	return r.Get(ctx, userID)
}

// Get returns the sparse cart mapping. The user must exist; an empty cart
// for a known user is a valid (empty) mapping.
func (r *CartsRepo) Get(ctx context.Context, userID string) (user.Cart, error) {
	cart := make(user.Cart)

	op := "carts.get"

	err := r.observe(op, func() error {
		var exists bool

		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
		).Scan(&exists)

		if err != nil {
			return err
		}

		if !exists {
			return user.ErrNotFound
		}

		rows, err := r.pool.Query(ctx, `
			SELECT item_id, quantity
			FROM cart_items
			WHERE user_id = $1
		`, userID)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var itemID, qty int

			if err := rows.Scan(&itemID, &qty); err != nil {
				return err
			}

			cart[itemID] = qty
		}

		return rows.Err()
	})

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, err
	}

	return cart, nil
}
