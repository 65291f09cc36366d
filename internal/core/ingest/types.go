package ingest

// ContentType tags what kind of page a bookmark points at. Classification
// happens once per save; enrichment may override it with its own judgement.
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
	ContentTypeBlog  ContentType = "blog"
)

// IsMedia reports whether the type carries a playable audio track.
func (t ContentType) IsMedia() bool {
	return t == ContentTypeVideo || t == ContentTypeAudio
}

// ParseContentType maps arbitrary strings onto the known set, defaulting
// to blog.
func ParseContentType(s string) ContentType {
	switch ContentType(s) {
	case ContentTypeVideo:
		return ContentTypeVideo
	case ContentTypeAudio:
		return ContentTypeAudio
	default:
		return ContentTypeBlog
	}
}

// FetchVia records which path produced the markup.
type FetchVia string

const (
	FetchDirect   FetchVia = "direct"
	FetchHeadless FetchVia = "headless"
)

// SourceDocument is the fetched raw markup for one URL. It exists only
// within a single ingestion run.
type SourceDocument struct {
	URL        string
	HTML       string
	Raw        []byte // unparsed body, kept for PDF extraction and snapshots
	MediaType  string // response Content-Type, without parameters
	FetchedVia FetchVia
}

// ExtractedPage holds the metadata and trimmed body text pulled from a
// SourceDocument. Title and description are empty strings when absent.
type ExtractedPage struct {
	Title           string
	Description     string
	MainContentText string
}

// EnrichmentResult is the structured output of AI enrichment. ReadingTime is
// in minutes and is overridden post-hoc by a measured media duration when
// one was found.
type EnrichmentResult struct {
	Summary       string      `json:"summary"`
	BiggerSummary string      `json:"biggerSummary"`
	Tags          []string    `json:"tags"`
	ReadingTime   int         `json:"readingTime"`
	ContentType   ContentType `json:"contentType"`
}

// SaveResult is everything a completed pipeline run hands back to the caller
// for persistence.
type SaveResult struct {
	URL         string
	Page        ExtractedPage
	ContentType ContentType
	Enrichment  EnrichmentResult
	Embedding   []float32
	Transcript  string
	FetchedVia  FetchVia
	RawHTML     string
}
