package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/retry"
)

const (
	enrichMaxAttempts = 4
	enrichRetryDelay  = 500 * time.Millisecond

	// FailedSummarySentinel marks an enrichment that gave up. Callers treat
	// it as a soft failure and keep the save going.
	FailedSummarySentinel = "Summary generation failed."
)

const enrichSystemPrompt = `You are a bookmarking assistant. Given page content you respond with a single JSON object and nothing else. The object has exactly these fields:
"summary": one or two sentences describing the page,
"biggerSummary": a paragraph of 3-5 sentences,
"tags": an array of 3-6 short lowercase topic tags,
"readingTime": estimated minutes to read or watch, as an integer,
"contentType": one of "video", "audio" or "blog".
Do not wrap the object in markdown fences.`

// Enricher asks the text-generation API for a structured summary of a page.
// It retries the whole request on transport and parse failures and degrades
// to sentinel defaults instead of erroring; a flaky model must not sink a
// save.
type Enricher struct {
	llm core.LLMProvider
	log *zap.Logger
}

// NewEnricher builds an enricher. A nil provider (no API key configured)
// makes every call return the sentinel result without touching the network.
func NewEnricher(llm core.LLMProvider, log *zap.Logger) *Enricher {
	return &Enricher{llm: llm, log: log}
}

// Enrich produces the EnrichmentResult for one page. It never returns an
// error: after four failed attempts the sentinel result comes back instead.
func (e *Enricher) Enrich(ctx context.Context, content, title, description string, contentType ContentType) EnrichmentResult {
	if e.llm == nil {
		e.log.Warn("no LLM provider configured, returning sentinel enrichment")
		return sentinelResult(contentType)
	}

	userPrompt := fmt.Sprintf("Title: %s\nDescription: %s\nContent type hint: %s\n\nContent:\n%s",
		title, description, contentType, Truncate(content, refineMaxChars))

	result, err := retry.Do(ctx, retry.Config{
		MaxAttempts: enrichMaxAttempts,
		Delay:       enrichRetryDelay,
	}, func() (EnrichmentResult, error) {
		raw, err := e.llm.Generate(ctx, enrichSystemPrompt, userPrompt)
		if err != nil {
			return EnrichmentResult{}, fmt.Errorf("generate: %w", err)
		}
		return parseEnrichment(raw)
	})
	if err != nil {
		e.log.Warn("enrichment failed on all attempts, using sentinel", zap.Error(err))
		return sentinelResult(contentType)
	}

	if result.ContentType == "" {
		result.ContentType = contentType
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result
}

// parseEnrichment decodes the model's response into an EnrichmentResult.
// Markdown fences around the object are tolerated; anything else malformed
// counts as a retryable failure.
func parseEnrichment(raw string) (EnrichmentResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result EnrichmentResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return EnrichmentResult{}, fmt.Errorf("parse enrichment JSON: %w", err)
	}
	if result.Summary == "" {
		return EnrichmentResult{}, fmt.Errorf("enrichment JSON missing summary")
	}
	if result.ContentType != "" {
		result.ContentType = ParseContentType(string(result.ContentType))
	}
	return result, nil
}

func sentinelResult(contentType ContentType) EnrichmentResult {
	return EnrichmentResult{
		Summary:       FailedSummarySentinel,
		BiggerSummary: "",
		Tags:          []string{},
		ReadingTime:   1,
		ContentType:   contentType,
	}
}
