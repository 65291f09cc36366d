package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkstash-app/linkstash/internal/fingerprint"
	"github.com/linkstash-app/linkstash/internal/models"
)

func sampleBookmarks() []models.Bookmark {
	return []models.Bookmark{
		{ID: "b1", Title: "Go schedulers", Summary: "How goroutines run", URL: "https://go.dev/sched", Tags: []string{"go", "runtime"}},
		{ID: "b2", Title: "Raft explained", Summary: "Consensus basics", URL: "https://raft.io", Tags: []string{"distributed"}},
		{ID: "b3", Title: "pgvector intro", Summary: "Vectors in Postgres", URL: "https://pgvector.dev", Tags: nil},
	}
}

func TestCacheKeyOrderIndependent(t *testing.T) {
	records := sampleBookmarks()
	reversed := []models.Bookmark{records[2], records[1], records[0]}

	key1 := fingerprint.CacheKey(fingerprint.Fingerprint(records))
	key2 := fingerprint.CacheKey(fingerprint.Fingerprint(reversed))

	assert.Equal(t, key1, key2)
}

func TestCacheKeyIgnoresTagOrder(t *testing.T) {
	a := []models.Bookmark{{ID: "b1", Title: "t", URL: "u", Tags: []string{"x", "y"}}}
	b := []models.Bookmark{{ID: "b1", Title: "t", URL: "u", Tags: []string{"y", "x"}}}

	assert.Equal(t,
		fingerprint.CacheKey(fingerprint.Fingerprint(a)),
		fingerprint.CacheKey(fingerprint.Fingerprint(b)),
	)
}

func TestCacheKeyChangesWithContent(t *testing.T) {
	base := sampleBookmarks()
	key := fingerprint.CacheKey(fingerprint.Fingerprint(base))

	mutations := map[string]func(b *models.Bookmark){
		"title":   func(b *models.Bookmark) { b.Title = "changed" },
		"summary": func(b *models.Bookmark) { b.Summary = "changed" },
		"url":     func(b *models.Bookmark) { b.URL = "https://changed" },
		"tags":    func(b *models.Bookmark) { b.Tags = append(b.Tags, "extra") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			records := sampleBookmarks()
			mutate(&records[0])
			assert.NotEqual(t, key, fingerprint.CacheKey(fingerprint.Fingerprint(records)))
		})
	}
}

func TestFingerprintEmitsSeparatorsForEmptyFields(t *testing.T) {
	withTitle := fingerprint.Fingerprint([]models.Bookmark{{ID: "b1", Title: "x"}})
	withSummary := fingerprint.Fingerprint([]models.Bookmark{{ID: "b1", Summary: "x"}})

	require.Len(t, withTitle, 1)
	require.Len(t, withSummary, 1)
	assert.NotEqual(t, withTitle[0], withSummary[0])
}

func TestFingerprintEmptyInput(t *testing.T) {
	fp := fingerprint.Fingerprint(nil)
	assert.Empty(t, fp)
	assert.NotEmpty(t, fingerprint.CacheKey(fp))
}
