package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureBootstrapped creates the vector extension and the application tables
// if they do not exist. Safe to run on every startup.
func EnsureBootstrapped(ctx context.Context, pool *pgxpool.Pool, embedDim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS users (
			id            text PRIMARY KEY,
			first_name    text NOT NULL DEFAULT '',
			email         text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			created_at    timestamptz NOT NULL DEFAULT now(),
			updated_at    timestamptz NOT NULL DEFAULT now()
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bookmarks (
			id             text PRIMARY KEY,
			user_id        text NOT NULL REFERENCES users(id),
			url            text NOT NULL,
			title          text NOT NULL DEFAULT '',
			description    text NOT NULL DEFAULT '',
			summary        text NOT NULL DEFAULT '',
			bigger_summary text NOT NULL DEFAULT '',
			tags           text[] NOT NULL DEFAULT '{}',
			reading_time   integer NOT NULL DEFAULT 0,
			content_type   text NOT NULL DEFAULT 'blog',
			embedding      vector(%d),
			snapshot_url   text NOT NULL DEFAULT '',
			shared_with    text[] NOT NULL DEFAULT '{}',
			created_at     timestamptz NOT NULL DEFAULT now(),
			updated_at     timestamptz NOT NULL DEFAULT now()
		)`, embedDim),

		`CREATE INDEX IF NOT EXISTS bookmarks_user_id_idx ON bookmarks (user_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap statement failed: %w", err)
		}
	}
	return nil
}
