// Package transcribe submits media URLs to an external speech-to-text
// service and polls the async job until it terminates.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/core/ingest"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 40 // ~80s ceiling before the soft timeout
)

// Client talks to an AssemblyAI-compatible transcription API.
type Client struct {
	http         *http.Client
	baseURL      string
	apiKey       string
	clk          clock.Clock
	pollInterval time.Duration
	maxPolls     int
	log          *zap.Logger
}

// Option adjusts polling behavior, mainly for tests.
type Option func(*Client)

func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clk = clk }
}

func WithPolling(interval time.Duration, maxPolls int) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.maxPolls = maxPolls
	}
}

func NewClient(baseURL, apiKey string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		http:         &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		apiKey:       apiKey,
		clk:          clock.WallClock,
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
		log:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transcriptJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe submits mediaURL and polls until the job completes or fails.
// Exhausting the poll budget returns an empty transcript and no error: the
// caller degrades to metadata-only enrichment instead of hanging on a slow
// job.
func (c *Client) Transcribe(ctx context.Context, mediaURL string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: transcription API key not set", ingest.ErrConfig)
	}

	jobID, err := c.submit(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.clk.After(c.pollInterval):
		}

		job, err := c.poll(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch job.Status {
		case "completed":
			return job.Text, nil
		case "error":
			return "", fmt.Errorf("%w: %s", ingest.ErrTranscription, job.Error)
		}
	}

	c.log.Warn("transcription polls exhausted, returning empty transcript",
		zap.String("media_url", mediaURL), zap.Int("polls", c.maxPolls))
	return "", nil
}

func (c *Client) submit(ctx context.Context, mediaURL string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"audio_url": mediaURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var job transcriptJob
	if err := c.do(req, &job); err != nil {
		return "", fmt.Errorf("%w: submit: %w", ingest.ErrTranscription, err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("%w: submit returned no job id", ingest.ErrTranscription)
	}
	return job.ID, nil
}

func (c *Client) poll(ctx context.Context, jobID string) (*transcriptJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	var job transcriptJob
	if err := c.do(req, &job); err != nil {
		return nil, fmt.Errorf("%w: poll: %w", ingest.ErrTranscription, err)
	}
	return &job, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ core.Transcriber = (*Client)(nil)
