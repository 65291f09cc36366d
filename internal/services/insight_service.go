package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linkstash-app/linkstash/internal/cache"
	"github.com/linkstash-app/linkstash/internal/core"
	"github.com/linkstash-app/linkstash/internal/fingerprint"
	"github.com/linkstash-app/linkstash/internal/models"
)

const (
	topTagLimit     = 3
	exampleLimit    = 5
	readingPerTag   = 3
	summaryMaxChars = 200
)

// Cluster groups related bookmarks under an AI-generated label.
type Cluster struct {
	Label       string   `json:"label"`
	BookmarkIDs []string `json:"bookmarkIds"`
}

// KnowledgeGap names a topic the user reads around but not into.
type KnowledgeGap struct {
	Topic      string `json:"topic"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// TagCount pairs a tag with how many bookmarks carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// BookmarkSummary is a deterministic digest of a bookmark set, used both as
// LLM prompt material and in API responses.
type BookmarkSummary struct {
	Total            int        `json:"total"`
	TopTags          []TagCount `json:"topTags"`
	ExampleBookmarks string     `json:"exampleBookmarks"`
}

// InsightService computes derived views over a user's whole bookmark set.
// The LLM calls are expensive, so results are memoized by a cache key built
// from the set's content fingerprint: the same bookmarks in any order hit
// the same entry.
type InsightService struct {
	db           core.DbClient
	llm          core.LLMProvider
	searcher     core.WebSearcher
	clusterCache *cache.Cache[[]Cluster]
	gapCache     *cache.Cache[[]KnowledgeGap]
	log          *zap.Logger
}

func NewInsightService(db core.DbClient, llm core.LLMProvider, searcher core.WebSearcher,
	clusterCache *cache.Cache[[]Cluster], gapCache *cache.Cache[[]KnowledgeGap], log *zap.Logger) *InsightService {
	return &InsightService{
		db:           db,
		llm:          llm,
		searcher:     searcher,
		clusterCache: clusterCache,
		gapCache:     gapCache,
		log:          log,
	}
}

// Clusters returns LLM-labelled topic clusters for the user's bookmarks.
func (s *InsightService) Clusters(ctx context.Context, userID string) ([]Cluster, error) {
	bookmarks, err := s.db.ListBookmarksForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bookmarks) == 0 {
		return []Cluster{}, nil
	}

	key := "clusters:" + fingerprint.CacheKey(fingerprint.Fingerprint(bookmarks))
	if cached, ok := s.clusterCache.Get(key); ok {
		return cached, nil
	}

	prompt := clusterPrompt(bookmarks)
	raw, err := s.llm.Generate(ctx, insightSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("cluster generation: %w", err)
	}

	var clusters []Cluster
	if err := json.Unmarshal([]byte(stripFences(raw)), &clusters); err != nil {
		return nil, fmt.Errorf("parse cluster JSON: %w", err)
	}

	s.clusterCache.Set(key, clusters)
	return clusters, nil
}

// KnowledgeGaps asks the model which adjacent topics the bookmark set is
// missing.
func (s *InsightService) KnowledgeGaps(ctx context.Context, userID string) ([]KnowledgeGap, error) {
	bookmarks, err := s.db.ListBookmarksForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bookmarks) == 0 {
		return []KnowledgeGap{}, nil
	}

	key := "gaps:" + fingerprint.CacheKey(fingerprint.Fingerprint(bookmarks))
	if cached, ok := s.gapCache.Get(key); ok {
		return cached, nil
	}

	summary := SummarizeBookmarks(bookmarks)
	prompt := fmt.Sprintf(
		"A user has saved %d bookmarks. Their most common tags: %s.\nExamples:\n%s\n\n"+
			"Respond with a JSON array of at most 3 objects, each with fields "+
			`"topic", "reason" and "suggestion", naming adjacent topics the user has not covered.`,
		summary.Total, formatTagCounts(summary.TopTags), summary.ExampleBookmarks)

	raw, err := s.llm.Generate(ctx, insightSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("knowledge gap generation: %w", err)
	}

	var gaps []KnowledgeGap
	if err := json.Unmarshal([]byte(stripFences(raw)), &gaps); err != nil {
		return nil, fmt.Errorf("parse knowledge gap JSON: %w", err)
	}

	s.gapCache.Set(key, gaps)
	return gaps, nil
}

// SuggestedReading fans out one web search per top tag and merges the ranked
// results.
func (s *InsightService) SuggestedReading(ctx context.Context, userID string) ([]models.SearchResult, error) {
	bookmarks, err := s.db.ListBookmarksForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeBookmarks(bookmarks)
	if len(summary.TopTags) == 0 {
		return []models.SearchResult{}, nil
	}

	results := make([][]models.SearchResult, len(summary.TopTags))
	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range summary.TopTags {
		g.Go(func() error {
			found, err := s.searcher.Search(gctx, tc.Tag, readingPerTag)
			if err != nil {
				// One failed search should not empty the whole view.
				s.log.Warn("suggested reading search failed", zap.String("tag", tc.Tag), zap.Error(err))
				return nil
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]models.SearchResult, 0, len(summary.TopTags)*readingPerTag)
	seen := make(map[string]struct{})
	for _, batch := range results {
		for _, r := range batch {
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged, nil
}

// SummarizeBookmarks digests a bookmark set deterministically: tag counts
// sort by frequency descending with ties broken by tag name, and example
// lines sort by title, so any permutation of the input yields identical
// output.
func SummarizeBookmarks(bookmarks []models.Bookmark) BookmarkSummary {
	counts := make(map[string]int)
	for i := range bookmarks {
		for _, tag := range bookmarks[i].Tags {
			counts[tag]++
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	if len(tags) > topTagLimit {
		tags = tags[:topTagLimit]
	}

	ordered := make([]models.Bookmark, len(bookmarks))
	copy(ordered, bookmarks)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Title != ordered[j].Title {
			return ordered[i].Title < ordered[j].Title
		}
		return ordered[i].URL < ordered[j].URL
	})

	var lines []string
	for i := range ordered {
		if i >= exampleLimit {
			break
		}
		b := &ordered[i]
		summary := b.Summary
		if len(summary) > summaryMaxChars {
			summary = summary[:summaryMaxChars]
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", b.Title, b.URL, summary))
	}

	return BookmarkSummary{
		Total:            len(bookmarks),
		TopTags:          tags,
		ExampleBookmarks: strings.Join(lines, "\n"),
	}
}

const insightSystemPrompt = `You analyze a user's bookmark collection. You respond with valid JSON only, never prose, never markdown fences.`

func clusterPrompt(bookmarks []models.Bookmark) string {
	var sb strings.Builder
	sb.WriteString("Group these bookmarks into topic clusters. Respond with a JSON array of objects ")
	sb.WriteString(`with fields "label" (short topic name) and "bookmarkIds" (array of ids).` + "\n\n")

	ordered := make([]models.Bookmark, len(bookmarks))
	copy(ordered, bookmarks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for i := range ordered {
		b := &ordered[i]
		summary := b.Summary
		if len(summary) > summaryMaxChars {
			summary = summary[:summaryMaxChars]
		}
		fmt.Fprintf(&sb, "id=%s title=%q tags=%s summary=%q\n",
			b.ID, b.Title, strings.Join(b.Tags, "|"), summary)
	}
	return sb.String()
}

func formatTagCounts(tags []TagCount) string {
	parts := make([]string, 0, len(tags))
	for _, tc := range tags {
		parts = append(parts, fmt.Sprintf("%s (%d)", tc.Tag, tc.Count))
	}
	return strings.Join(parts, ", ")
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
