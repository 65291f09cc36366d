package ingest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkstash-app/linkstash/internal/core/ingest"
	"github.com/linkstash-app/linkstash/internal/logger"
)

type capturingLLM struct {
	response string
	err      error
	prompts  []string
}

func (c *capturingLLM) Generate(_ context.Context, _, userPrompt string) (string, error) {
	c.prompts = append(c.prompts, userPrompt)
	return c.response, c.err
}

type fakeEmbedder struct {
	vector []float32
	err    error
	texts  []string
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{f.vector}, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(llm *capturingLLM, embedder *fakeEmbedder, transcriber *fakeTranscriber) *ingest.Pipeline {
	log := logger.Nop()
	fetcher := ingest.NewFetcher(&fakeRenderer{}, log)
	enricher := ingest.NewEnricher(llm, log)
	return ingest.NewPipeline(fetcher, enricher, embedder, transcriber, log)
}

const videoPageHTML = `<html><head>
	<title>My Video</title>
	<meta name="description" content="A video about things.">
	<meta property="og:type" content="video.other">
	<meta property="og:video:duration" content="610">
</head><body><article><p>` +
	`Watch this long and fascinating video page with plenty of surrounding text so the ` +
	`fetch heuristic is satisfied that the page was fully rendered on the server side.` +
	`</p></article></body></html>`

const articlePageHTML = `<html><head>
	<title>My Article</title>
	<meta name="description" content="An article.">
</head><body><article><p>` +
	`This is the article body with enough visible words that the fetcher will not try ` +
	`to escalate to the headless browser during these orchestrator tests at all.` +
	`</p></article></body></html>`

const blogEnrichment = `{"summary":"An article summary.","biggerSummary":"More.","tags":["go"],"readingTime":7,"contentType":"blog"}`
const videoEnrichment = `{"summary":"A video summary.","biggerSummary":"More.","tags":["video"],"readingTime":99,"contentType":"video"}`

// Saving a video link without a media URL must classify by URL, skip the
// transcriber, enrich from title+description, and take the measured duration
// over the model's reading-time guess.
func TestRunVideoWithoutMediaURL(t *testing.T) {
	srv := serveHTML(t, videoPageHTML)

	llm := &capturingLLM{response: videoEnrichment}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	transcriber := &fakeTranscriber{}
	p := newPipeline(llm, embedder, transcriber)

	result, err := p.Run(context.Background(), srv.URL+"/watch?v=abc#youtube.com/watch", "")

	require.NoError(t, err)
	assert.Equal(t, ingest.ContentTypeVideo, result.ContentType)
	assert.Zero(t, transcriber.calls, "no media URL means no transcription")

	require.NotEmpty(t, llm.prompts)
	assert.Contains(t, llm.prompts[0], "Content:\nMy Video\nA video about things.")

	assert.Equal(t, 11, result.Enrichment.ReadingTime, "measured duration (610s -> 11min) overrides the model")
}

func TestRunVideoWithoutDurationKeepsModelReadingTime(t *testing.T) {
	noDuration := strings.Replace(videoPageHTML,
		`<meta property="og:video:duration" content="610">`, "", 1)
	srv := serveHTML(t, noDuration)

	llm := &capturingLLM{response: videoEnrichment}
	p := newPipeline(llm, &fakeEmbedder{vector: []float32{0.1}}, &fakeTranscriber{})

	result, err := p.Run(context.Background(), srv.URL+"/watch#youtube.com/watch", "")

	require.NoError(t, err)
	assert.Equal(t, 99, result.Enrichment.ReadingTime)
}

// All four enrichment attempts failing must still produce a persisted-ready
// result carrying the sentinel summary; the save is not aborted.
func TestRunSurvivesEnrichmentFailure(t *testing.T) {
	srv := serveHTML(t, articlePageHTML)

	llm := &capturingLLM{err: errors.New("api down")}
	embedder := &fakeEmbedder{vector: []float32{0.5}}
	p := newPipeline(llm, embedder, &fakeTranscriber{})

	result, err := p.Run(context.Background(), srv.URL, "")

	require.NoError(t, err)
	assert.Equal(t, ingest.FailedSummarySentinel, result.Enrichment.Summary)
	assert.Empty(t, result.Enrichment.Tags)
	assert.NotEmpty(t, embedder.texts, "embedding still runs after a sentinel enrichment")
	assert.Equal(t, []float32{0.5}, result.Embedding)
}

func TestRunTranscriberFailureDegradesToMetadata(t *testing.T) {
	srv := serveHTML(t, videoPageHTML)

	llm := &capturingLLM{response: videoEnrichment}
	transcriber := &fakeTranscriber{err: errors.New("job failed")}
	p := newPipeline(llm, &fakeEmbedder{vector: []float32{0.1}}, transcriber)

	result, err := p.Run(context.Background(), srv.URL+"/watch#youtube.com/watch", "https://cdn.example.com/audio.mp3")

	require.NoError(t, err, "a dead transcription service must not abort the save")
	assert.Equal(t, 1, transcriber.calls)
	assert.Empty(t, result.Transcript)
	assert.Contains(t, llm.prompts[0], "Content:\nMy Video\nA video about things.")
}

// The transcription soft timeout hands back an empty string without an
// error; the orchestrator must fall back to title+description.
func TestRunTranscriberSoftTimeoutFallsBack(t *testing.T) {
	srv := serveHTML(t, videoPageHTML)

	llm := &capturingLLM{response: videoEnrichment}
	transcriber := &fakeTranscriber{text: ""}
	p := newPipeline(llm, &fakeEmbedder{vector: []float32{0.1}}, transcriber)

	result, err := p.Run(context.Background(), srv.URL+"/watch#youtube.com/watch", "https://cdn.example.com/audio.mp3")

	require.NoError(t, err)
	assert.Empty(t, result.Transcript)
	assert.Contains(t, llm.prompts[0], "Content:\nMy Video\nA video about things.")
}

func TestRunUsesTranscriptWhenAvailable(t *testing.T) {
	srv := serveHTML(t, videoPageHTML)

	llm := &capturingLLM{response: videoEnrichment}
	transcriber := &fakeTranscriber{text: "hello and welcome to the show"}
	p := newPipeline(llm, &fakeEmbedder{vector: []float32{0.1}}, transcriber)

	result, err := p.Run(context.Background(), srv.URL+"/watch#youtube.com/watch", "https://cdn.example.com/audio.mp3")

	require.NoError(t, err)
	assert.Equal(t, "hello and welcome to the show", result.Transcript)
	assert.Contains(t, llm.prompts[0], "hello and welcome to the show")
}

func TestRunEmbeddingFailureIsFatal(t *testing.T) {
	srv := serveHTML(t, articlePageHTML)

	llm := &capturingLLM{response: blogEnrichment}
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	p := newPipeline(llm, embedder, &fakeTranscriber{})

	_, err := p.Run(context.Background(), srv.URL, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrEmbedding)
	assert.True(t, ingest.IsFatal(err))
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := newPipeline(&capturingLLM{response: blogEnrichment}, &fakeEmbedder{vector: []float32{0.1}}, &fakeTranscriber{})

	_, err := p.Run(context.Background(), srv.URL, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrFetch)
	assert.True(t, ingest.IsFatal(err))
}

func TestRunArticleUsesRefinedContent(t *testing.T) {
	srv := serveHTML(t, articlePageHTML)

	llm := &capturingLLM{response: blogEnrichment}
	p := newPipeline(llm, &fakeEmbedder{vector: []float32{0.1}}, &fakeTranscriber{})

	_, err := p.Run(context.Background(), srv.URL, "")

	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0], "This is the article body")
}
