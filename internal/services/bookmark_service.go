package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/core/ingest"
	"github.com/linkstash-app/linkstash/internal/models"
)

// BookmarkService owns the save flow: it runs the ingestion pipeline,
// archives the page snapshot, and persists the enriched record.
type BookmarkService struct {
	db       core.DbClient
	pipeline *ingest.Pipeline
	storage  core.ObjectClient // nil disables snapshot archiving
	bucket   string
	log      *zap.Logger
}

func NewBookmarkService(db core.DbClient, pipeline *ingest.Pipeline, storage core.ObjectClient, bucket string, log *zap.Logger) *BookmarkService {
	return &BookmarkService{db: db, pipeline: pipeline, storage: storage, bucket: bucket, log: log}
}

// Save ingests url for the user and persists the resulting bookmark. The
// record is written exactly once; the pipeline never touches it afterwards.
func (s *BookmarkService) Save(ctx context.Context, userID, url, mediaURL string) (*models.Bookmark, error) {
	result, err := s.pipeline.Run(ctx, url, mediaURL)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	snapshotURL := s.archiveSnapshot(ctx, userID, id, result.RawHTML)

	bookmark := &models.Bookmark{
		ID:            id,
		UserID:        userID,
		URL:           url,
		Title:         result.Page.Title,
		Description:   result.Page.Description,
		Summary:       result.Enrichment.Summary,
		BiggerSummary: result.Enrichment.BiggerSummary,
		Tags:          result.Enrichment.Tags,
		ReadingTime:   result.Enrichment.ReadingTime,
		ContentType:   string(result.ContentType),
		Embedding:     result.Embedding,
		SnapshotURL:   snapshotURL,
		SharedWith:    []string{},
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.db.CreateBookmark(ctx, bookmark); err != nil {
		return nil, fmt.Errorf("persist bookmark: %w", err)
	}
	return bookmark, nil
}

// archiveSnapshot uploads the raw markup best-effort; a missing snapshot
// never fails a save.
func (s *BookmarkService) archiveSnapshot(ctx context.Context, userID, bookmarkID, html string) string {
	if s.storage == nil || html == "" {
		return ""
	}

	key := path.Join("users", userID, "snapshots", bookmarkID+".html")
	url, err := s.storage.UploadFile(ctx, s.bucket, key, []byte(html), "text/html")
	if err != nil {
		s.log.Warn("snapshot upload failed", zap.String("bookmark_id", bookmarkID), zap.Error(err))
		return ""
	}
	return url
}

// Get returns a bookmark the user owns or that is shared with them.
func (s *BookmarkService) Get(ctx context.Context, userID, id string) (*models.Bookmark, error) {
	b, err := s.db.GetBookmarkByID(ctx, id)
	if err != nil || b == nil {
		return b, err
	}
	if !visibleTo(b, userID) {
		return nil, nil
	}
	return b, nil
}

func (s *BookmarkService) ListForUser(ctx context.Context, userID string) ([]models.Bookmark, error) {
	return s.db.ListBookmarksForUser(ctx, userID)
}

// Update applies user edits to an owned bookmark. The editable field set is
// enforced by the storage layer.
func (s *BookmarkService) Update(ctx context.Context, userID, id string, fields map[string]any) error {
	b, err := s.db.GetBookmarkByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil || b.UserID != userID {
		return fmt.Errorf("bookmark not found: %s", id)
	}
	return s.db.UpdateBookmarkFields(ctx, id, fields)
}

func (s *BookmarkService) Delete(ctx context.Context, userID, id string) error {
	return s.db.DeleteBookmark(ctx, id, userID)
}

func visibleTo(b *models.Bookmark, userID string) bool {
	if b.UserID == userID {
		return true
	}
	for _, u := range b.SharedWith {
		if u == userID {
			return true
		}
	}
	return false
}
