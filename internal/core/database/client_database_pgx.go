package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/linkstash-app/linkstash/internal/config"
	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/models"
)

type DatabaseClient struct {
	pool *pgxpool.Pool
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		var err error
		dsn, err = dsnWithRootCert(dsn, cfg.SslCertPath)
		if err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 10 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(pingCtx, pool, cfg.EmbedDim); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{pool: pool}, nil
}

// dsnWithRootCert appends verify-ca SSL parameters to the connection URL, for
// hosted Postgres providers that hand out a CA certificate file.
func dsnWithRootCert(databaseURL, certPath string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", certPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.pool.Exec(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.pool.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for bookmarks

const bookmarkColumns = `id, user_id, url, title, description, summary, bigger_summary,
	tags, reading_time, content_type, embedding, snapshot_url, shared_with, created_at, updated_at`

func (c *DatabaseClient) CreateBookmark(ctx context.Context, b *models.Bookmark) error {
	if b == nil {
		return errors.New("nil bookmark")
	}
	const q = `
		INSERT INTO bookmarks
			(id, user_id, url, title, description, summary, bigger_summary,
			 tags, reading_time, content_type, embedding, snapshot_url, shared_with,
			 created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
	`
	_, err := c.pool.Exec(ctx, q,
		b.ID, b.UserID, b.URL, b.Title, b.Description, b.Summary, b.BiggerSummary,
		b.Tags, b.ReadingTime, b.ContentType, pgvector.NewVector(b.Embedding),
		b.SnapshotURL, b.SharedWith,
	)
	return err
}

func (c *DatabaseClient) GetBookmarkByID(ctx context.Context, id string) (*models.Bookmark, error) {
	q := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE id = $1`

	b, err := scanBookmark(c.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookmarksForUser returns bookmarks owned by or shared with the user,
// newest first.
func (c *DatabaseClient) ListBookmarksForUser(ctx context.Context, userID string) ([]models.Bookmark, error) {
	q := `
		SELECT ` + bookmarkColumns + `
		FROM bookmarks
		WHERE user_id = $1 OR $1 = ANY(shared_with)
		ORDER BY created_at DESC
	`
	rows, err := c.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// updatableBookmarkFields is the allowlist for user edits; everything else
// on the row belongs to the ingestion pipeline.
var updatableBookmarkFields = map[string]struct{}{
	"title":       {},
	"description": {},
	"summary":     {},
	"tags":        {},
	"shared_with": {},
}

func (c *DatabaseClient) UpdateBookmarkFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	set := "updated_at = now()"
	args := []any{id}
	i := 2
	for col, val := range fields {
		if _, ok := updatableBookmarkFields[col]; !ok {
			return fmt.Errorf("field %q is not editable", col)
		}
		set += fmt.Sprintf(", %s = $%d", col, i)
		args = append(args, val)
		i++
	}

	tag, err := c.pool.Exec(ctx, `UPDATE bookmarks SET `+set+` WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bookmark not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteBookmark(ctx context.Context, id, userID string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bookmark not found: %s", id)
	}
	return nil
}

// SearchBookmarks finds the top-k most similar bookmarks for a query
// embedding among those the user can see.
func (c *DatabaseClient) SearchBookmarks(ctx context.Context, userID string, queryVec []float32, limit int) ([]models.Bookmark, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `
		SELECT ` + bookmarkColumns + `
		FROM bookmarks
		WHERE (user_id = $1 OR $1 = ANY(shared_with)) AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := c.pool.Query(ctx, q, userID, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBookmark(row pgx.Row) (*models.Bookmark, error) {
	var b models.Bookmark
	var vec pgvector.Vector
	err := row.Scan(
		&b.ID, &b.UserID, &b.URL, &b.Title, &b.Description, &b.Summary, &b.BiggerSummary,
		&b.Tags, &b.ReadingTime, &b.ContentType, &vec, &b.SnapshotURL, &b.SharedWith,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Embedding = vec.Slice()
	return &b, nil
}

var _ core.DbClient = (*DatabaseClient)(nil)
