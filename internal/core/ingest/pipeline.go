package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core"
)

// Pipeline sequences one full "magic save": fetch, classify, extract,
// transcribe or fall back, enrich, embed. Each run is a sequential chain of
// network-bound steps with no state shared between concurrent runs.
type Pipeline struct {
	fetcher     *Fetcher
	enricher    *Enricher
	embedder    core.EmbeddingProvider
	transcriber core.Transcriber
	log         *zap.Logger
}

func NewPipeline(fetcher *Fetcher, enricher *Enricher, embedder core.EmbeddingProvider, transcriber core.Transcriber, log *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		enricher:    enricher,
		embedder:    embedder,
		transcriber: transcriber,
		log:         log,
	}
}

// Run ingests a single URL. mediaURL, when non-empty, points at a direct
// audio stream for the page and enables transcription.
//
// Failure semantics: a fetch failure aborts (nothing to enrich), an embedding
// failure aborts (the record would be unusable for search), transcription
// failures degrade to title+description enrichment, and enrichment failures
// never escape the enricher.
func (p *Pipeline) Run(ctx context.Context, url, mediaURL string) (*SaveResult, error) {
	doc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if doc.MediaType == "application/pdf" {
		return p.runPDF(ctx, doc)
	}

	contentType := Classify(url, doc.HTML)
	page := Extract(doc.HTML)

	durationMinutes := 0
	durationFound := false
	if contentType.IsMedia() {
		durationMinutes, durationFound = ExtractDuration(doc.HTML)
	}

	contentForAI, transcript := p.contentForAI(ctx, doc, page, contentType, mediaURL)

	enrichment := p.enricher.Enrich(ctx, contentForAI, page.Title, page.Description, contentType)
	if enrichment.ContentType != "" {
		contentType = enrichment.ContentType
	}
	if contentType.IsMedia() && durationFound {
		enrichment.ReadingTime = durationMinutes
	}

	embedding, err := p.embed(ctx, page, enrichment, contentForAI)
	if err != nil {
		return nil, err
	}

	return &SaveResult{
		URL:         url,
		Page:        page,
		ContentType: contentType,
		Enrichment:  enrichment,
		Embedding:   embedding,
		Transcript:  transcript,
		FetchedVia:  doc.FetchedVia,
		RawHTML:     doc.HTML,
	}, nil
}

// contentForAI picks the text handed to enrichment. Articles use the refined
// main content; media uses the transcript when one can be produced, else the
// page's own title and description.
func (p *Pipeline) contentForAI(ctx context.Context, doc *SourceDocument, page ExtractedPage, contentType ContentType, mediaURL string) (content, transcript string) {
	fallback := page.Title + "\n" + page.Description

	if !contentType.IsMedia() {
		if refined := RefineMainContent(doc.HTML, doc.URL); refined != "" {
			return refined, ""
		}
		return fallback, ""
	}

	if mediaURL == "" || p.transcriber == nil {
		return fallback, ""
	}

	text, err := p.transcriber.Transcribe(ctx, mediaURL)
	if err != nil {
		// Degraded-but-complete: a dead transcription service must not
		// sink the save.
		p.log.Warn("transcription failed, enriching from page metadata",
			zap.String("media_url", mediaURL), zap.Error(err))
		return fallback, ""
	}
	text = strings.TrimSpace(text)
	if text == "" {
		// Soft poll timeout returns an empty transcript.
		return fallback, ""
	}
	return Truncate(text, refineMaxChars), text
}

func (p *Pipeline) runPDF(ctx context.Context, doc *SourceDocument) (*SaveResult, error) {
	page, err := ExtractPDF(doc.Raw)
	if err != nil {
		return nil, fetchErr(doc.URL, err)
	}

	content := Truncate(page.MainContentText, refineMaxChars)
	enrichment := p.enricher.Enrich(ctx, content, page.Title, page.Description, ContentTypeBlog)

	embedding, err := p.embed(ctx, page, enrichment, content)
	if err != nil {
		return nil, err
	}

	return &SaveResult{
		URL:         doc.URL,
		Page:        page,
		ContentType: ContentTypeBlog,
		Enrichment:  enrichment,
		Embedding:   embedding,
		FetchedVia:  doc.FetchedVia,
	}, nil
}

// embed produces the record's vector. Sentinel summaries are excluded from
// the embedded text so failed enrichments do not cluster together.
func (p *Pipeline) embed(ctx context.Context, page ExtractedPage, enrichment EnrichmentResult, content string) ([]float32, error) {
	parts := []string{page.Title}
	if enrichment.Summary != "" && enrichment.Summary != FailedSummarySentinel {
		parts = append(parts, enrichment.Summary)
	}
	parts = append(parts, Truncate(content, refineMaxChars))
	text := strings.TrimSpace(strings.Join(parts, "\n"))

	vectors, err := p.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: provider returned no vector", ErrEmbedding)
	}
	return vectors[0], nil
}

// IsFatal reports whether an ingestion error should surface to the user as a
// failed save.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFetch) || errors.Is(err, ErrEmbedding)
}
