package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ingestion pipeline. Fetch and embedding failures
// abort a save; transcription failures degrade the save to text-only
// enrichment; enrichment failures never surface at all.
var (
	// ErrFetch means neither the direct fetch nor the headless fallback
	// produced usable markup.
	ErrFetch = errors.New("fetch failed")

	// ErrRender means headless navigation did not complete.
	ErrRender = errors.New("headless render failed")

	// ErrTranscription means the speech-to-text job terminally failed.
	ErrTranscription = errors.New("transcription failed")

	// ErrEmbedding means the embedding request failed; a bookmark is never
	// persisted without its vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConfig means a required API credential is missing.
	ErrConfig = errors.New("missing configuration")
)

func fetchErr(url string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrFetch, url, cause)
}

func renderErr(url string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrRender, url, cause)
}
