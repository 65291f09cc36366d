package transcribe_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkstash-app/linkstash/internal/core/ingest"
	"github.com/linkstash-app/linkstash/internal/core/transcribe"
	"github.com/linkstash-app/linkstash/internal/logger"
)

// transcriptServer fakes the job-submit + poll API. statuses is the sequence
// of statuses the poll endpoint walks through; the last one repeats.
func transcriptServer(t *testing.T, statuses []string, text, errMsg string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			require.Equal(t, "test-key", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/transcript/job-1":
			n := atomic.AddInt32(&polls, 1)
			idx := int(n) - 1
			if idx >= len(statuses) {
				idx = len(statuses) - 1
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": statuses[idx],
				"text":   text,
				"error":  errMsg,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func newTestClient(baseURL string) *transcribe.Client {
	return transcribe.NewClient(baseURL, "test-key", logger.Nop(),
		transcribe.WithPolling(0, 40))
}

func TestTranscribeCompletes(t *testing.T) {
	srv, polls := transcriptServer(t, []string{"queued", "processing", "completed"}, "hello world", "")

	text, err := newTestClient(srv.URL).Transcribe(context.Background(), "https://cdn.example.com/a.mp3")

	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(polls))
}

func TestTranscribeJobError(t *testing.T) {
	srv, _ := transcriptServer(t, []string{"processing", "error"}, "", "unsupported codec")

	_, err := newTestClient(srv.URL).Transcribe(context.Background(), "https://cdn.example.com/a.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrTranscription)
	assert.Contains(t, err.Error(), "unsupported codec")
}

// A job that never terminates exhausts the 40-poll budget and comes back as
// an empty transcript with no error.
func TestTranscribeSoftTimeout(t *testing.T) {
	srv, polls := transcriptServer(t, []string{"processing"}, "", "")

	text, err := newTestClient(srv.URL).Transcribe(context.Background(), "https://cdn.example.com/a.mp3")

	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, int32(40), atomic.LoadInt32(polls))
}

func TestTranscribeMissingAPIKey(t *testing.T) {
	c := transcribe.NewClient("http://unused", "", logger.Nop())

	_, err := c.Transcribe(context.Background(), "https://cdn.example.com/a.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrConfig)
}

func TestTranscribeContextCancelled(t *testing.T) {
	srv, _ := transcriptServer(t, []string{"processing"}, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	c := transcribe.NewClient(srv.URL, "test-key", logger.Nop())
	cancel()

	_, err := c.Transcribe(ctx, "https://cdn.example.com/a.mp3")
	require.Error(t, err)
}
