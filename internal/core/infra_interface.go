package core

import (
	"context"

	"github.com/linkstash-app/linkstash/internal/models"
)

// DbClient defines all persistence operations your services will need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	CreateBookmark(ctx context.Context, b *models.Bookmark) error
	GetBookmarkByID(ctx context.Context, id string) (*models.Bookmark, error)
	ListBookmarksForUser(ctx context.Context, userID string) ([]models.Bookmark, error)
	UpdateBookmarkFields(ctx context.Context, id string, fields map[string]any) error
	DeleteBookmark(ctx context.Context, id, userID string) error

	SearchBookmarks(ctx context.Context, userID string, queryVec []float32, limit int) ([]models.Bookmark, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage. Used for
// archiving raw HTML snapshots of saved pages.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// EmbeddingProvider turns texts into fixed-dimension vectors.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates text completions.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Transcriber converts a media URL into transcript text via an external
// speech-to-text service.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (string, error)
}

// PageRenderer renders a URL in a headless browser and returns the full DOM,
// for pages a plain HTTP fetch cannot see.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// WebSearcher queries an external web search API for suggested reading links.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]models.SearchResult, error)
}
