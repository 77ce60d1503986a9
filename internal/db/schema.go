package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the storefront tables when missing. Statements are
// idempotent so startup can run this unconditionally.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            text PRIMARY KEY,
			name          text NOT NULL,
			email         text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			created_at    timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id         bigint PRIMARY KEY,
			name       text NOT NULL,
			image      text NOT NULL,
			category   text NOT NULL,
			new_price  double precision NOT NULL,
			old_price  double precision NOT NULL,
			date       timestamptz NOT NULL DEFAULT NOW(),
			available  boolean NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			user_id  text NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			item_id  bigint NOT NULL CHECK (item_id >= 0),
			quantity bigint NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			PRIMARY KEY (user_id, item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id              text PRIMARY KEY,
			type            text NOT NULL,
			payload         jsonb NOT NULL,
			status          text NOT NULL,
			attempts        int NOT NULL DEFAULT 0,
			max_attempts    int NOT NULL DEFAULT 10,
			run_at          timestamptz NOT NULL,
			locked_at       timestamptz,
			locked_by       text,
			last_error      text,
			idempotency_key text UNIQUE,
			user_id         text,
			created_at      timestamptz NOT NULL,
			updated_at      timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_claim_idx
			ON jobs (status, run_at) WHERE status = 'pending'`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
