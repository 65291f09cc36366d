package services

import (
	"context"
	"fmt"

	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/models"
)

// SearchService answers free-text queries with embedding similarity over the
// user's bookmarks.
type SearchService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
}

func NewSearchService(db core.DbClient, embedder core.EmbeddingProvider) *SearchService {
	return &SearchService{db: db, embedder: embedder}
}

func (s *SearchService) Search(ctx context.Context, userID, query string, limit int) ([]models.Bookmark, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector")
	}

	return s.db.SearchBookmarks(ctx, userID, vectors[0], limit)
}
