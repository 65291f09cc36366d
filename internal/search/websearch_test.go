package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkstash-app/linkstash/internal/search"
)

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "go concurrency", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))

		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Post A","url":"https://a.example","description":"about A"},
			{"title":"Post B","url":"https://b.example","description":"about B"}
		]}}`))
	}))
	defer srv.Close()

	c := search.NewClient(srv.URL, "secret")
	results, err := c.Search(context.Background(), "go concurrency", 3)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Post A", results[0].Title)
	assert.Equal(t, "https://b.example", results[1].URL)
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := search.NewClient(srv.URL, "secret")
	_, err := c.Search(context.Background(), "anything", 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearchMissingKey(t *testing.T) {
	c := search.NewClient("http://unused", "")
	_, err := c.Search(context.Background(), "anything", 3)
	require.Error(t, err)
}
