package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/danmelak/shopcart/internal/domain/product"
	"github.com/danmelak/shopcart/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, prom: prom}
}

func (r *ProductsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create assigns the next sequential public id (max+1, starting at 1)
// inside the insert statement itself.
func (r *ProductsRepo) Create(ctx context.Context, req product.CreateRequest) (product.Product, error) {
	p := product.Product{
		Name:      req.Name,
		Image:     req.Image,
		Category:  req.Category,
		NewPrice:  req.NewPrice,
		OldPrice:  req.OldPrice,
		Date:      time.Now().UTC(),
		Available: true,
	}

	op := "products.create"

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, `
			INSERT INTO products (id, name, image, category, new_price, old_price, date, available)
			SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, TRUE
			FROM products
			RETURNING id
		`, p.Name, p.Image, p.Category, p.NewPrice, p.OldPrice, p.Date).Scan(&p.ID)
	})

	if err != nil {
		return product.Product{}, err
	}

	return p, nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id int) error {
	var affected int64

	op := "products.delete"

	err := r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return product.ErrNotFound
	}

	return nil
}

func (r *ProductsRepo) ListAll(ctx context.Context) ([]product.Product, error) {
	return r.list(ctx, "products.list_all", `
		SELECT id, name, image, category, new_price, old_price, date, available
		FROM products
		ORDER BY id ASC
	`)
}

// ListNewest returns the last n products in ascending id order, matching
// the storefront's "new collections" strip.
func (r *ProductsRepo) ListNewest(ctx context.Context, n int) ([]product.Product, error) {
	return r.list(ctx, "products.list_newest", `
		SELECT id, name, image, category, new_price, old_price, date, available
		FROM (
			SELECT id, name, image, category, new_price, old_price, date, available
			FROM products
			ORDER BY id DESC
			LIMIT $1
		) latest
		ORDER BY id ASC
	`, n)
}

func (r *ProductsRepo) ListByCategory(ctx context.Context, category string, limit int) ([]product.Product, error) {
	return r.list(ctx, "products.list_by_category", `
		SELECT id, name, image, category, new_price, old_price, date, available
		FROM products
		WHERE category = $1
		ORDER BY id ASC
		LIMIT $2
	`, category, limit)
}

func (r *ProductsRepo) list(ctx context.Context, op, query string, args ...any) ([]product.Product, error) {
	out := make([]product.Product, 0, 16)

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var p product.Product

			err = rows.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.NewPrice, &p.OldPrice, &p.Date, &p.Available)

			if err != nil {
				return err
			}

			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []product.Product{}, nil
		}

		return nil, err
	}

	return out, nil
}
