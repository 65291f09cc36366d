package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/models"
)

// fakeDB is an in-memory DbClient for service tests.
type fakeDB struct {
	users     map[string]*models.User
	bookmarks map[string]*models.Bookmark

	listErr    error
	lastSearch []float32
	updated    map[string]any
	deleted    []string
}

var _ core.DbClient = (*fakeDB)(nil)

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     make(map[string]*models.User),
		bookmarks: make(map[string]*models.Bookmark),
	}
}

func (f *fakeDB) CreateUser(_ context.Context, u *models.User) error {
	if _, ok := f.users[u.Email]; ok {
		return errors.New("duplicate email")
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeDB) CreateBookmark(_ context.Context, b *models.Bookmark) error {
	f.bookmarks[b.ID] = b
	return nil
}

func (f *fakeDB) GetBookmarkByID(_ context.Context, id string) (*models.Bookmark, error) {
	return f.bookmarks[id], nil
}

func (f *fakeDB) ListBookmarksForUser(_ context.Context, userID string) ([]models.Bookmark, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Bookmark
	for _, b := range f.bookmarks {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateBookmarkFields(_ context.Context, id string, fields map[string]any) error {
	if _, ok := f.bookmarks[id]; !ok {
		return fmt.Errorf("no bookmark %s", id)
	}
	f.updated = fields
	return nil
}

func (f *fakeDB) DeleteBookmark(_ context.Context, id, userID string) error {
	b, ok := f.bookmarks[id]
	if !ok || b.UserID != userID {
		return nil
	}
	delete(f.bookmarks, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDB) SearchBookmarks(_ context.Context, userID string, queryVec []float32, limit int) ([]models.Bookmark, error) {
	f.lastSearch = queryVec
	return f.ListBookmarksForUser(context.Background(), userID)
}

func (f *fakeDB) Close() error { return nil }

// fakeStorage records uploads and can be told to fail.
type fakeStorage struct {
	uploads map[string][]byte
	fail    bool
}

var _ core.ObjectClient = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	if f.fail {
		return "", errors.New("upload refused")
	}
	f.uploads[key] = data
	return "https://storage.test/" + bucket + "/" + key, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, _, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeStorage) GetFile(_ context.Context, _, key string) ([]byte, error) {
	return f.uploads[key], nil
}

// scriptedLLM returns canned responses in order.
type scriptedLLM struct {
	responses []string
	calls     int
	err       error
}

var _ core.LLMProvider = (*scriptedLLM)(nil)

func (f *scriptedLLM) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

type fixedEmbedder struct {
	vec []float32
	err error
}

var _ core.EmbeddingProvider = (*fixedEmbedder)(nil)

func (f *fixedEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]models.SearchResult
	queries []string
	err     error
}

var _ core.WebSearcher = (*fakeSearcher)(nil)

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]models.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}
