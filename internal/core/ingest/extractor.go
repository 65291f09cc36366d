package ingest

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	// refineMaxBlocks bounds how many paragraph-level blocks feed enrichment.
	refineMaxBlocks = 10
	// refineMaxChars is the hard cap on text sent to the AI enrichment call.
	refineMaxChars = 3000
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extract pulls title, description and a plain-text body out of page markup.
// Title and description default to empty strings when the tags are missing.
// Body text prefers a semantic article/main container and falls back to the
// whole page.
func Extract(html string) ExtractedPage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ExtractedPage{}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
		title = strings.TrimSpace(title)
	}

	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	description = strings.TrimSpace(description)
	if description == "" {
		description, _ = doc.Find(`meta[property="og:description"]`).First().Attr("content")
		description = strings.TrimSpace(description)
	}

	var body string
	for _, sel := range []string{"article", "main"} {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			body = node.Text()
			break
		}
	}
	if body == "" {
		body = doc.Find("body").Text()
	}

	return ExtractedPage{
		Title:           title,
		Description:     description,
		MainContentText: collapseWhitespace(body),
	}
}

// RefineMainContent produces the trimmed article text actually sent to AI
// enrichment: navigational and visual elements are stripped, the first ten
// paragraph-level blocks are joined, whitespace runs collapse to single
// spaces, and the result is hard-truncated to 3000 characters. When the
// selector pass yields nothing, a readability pass over the full document is
// tried before giving up.
func RefineMainContent(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, header, footer, aside, img, figure, iframe, noscript").Remove()

	var blocks []string
	doc.Find("p, li, blockquote, h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			blocks = append(blocks, text)
		}
		return len(blocks) < refineMaxBlocks
	})

	refined := collapseWhitespace(strings.Join(blocks, " "))
	if refined == "" {
		refined = readabilityText(html, pageURL)
	}
	return Truncate(refined, refineMaxChars)
}

// readabilityText runs Mozilla's readability algorithm over the document.
// Used only when selector-based refinement found no paragraph blocks.
func readabilityText(html, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return ""
	}
	return collapseWhitespace(article.TextContent)
}

// ExtractPDF converts PDF bytes into an ExtractedPage via docconv. Saved
// links occasionally point straight at papers.
func ExtractPDF(raw []byte) (ExtractedPage, error) {
	res, err := docconv.Convert(bytes.NewReader(raw), "application/pdf", false)
	if err != nil {
		return ExtractedPage{}, fmt.Errorf("pdf convert: %w", err)
	}

	title := strings.TrimSpace(res.Meta["Title"])
	body := collapseWhitespace(res.Body)
	if title == "" {
		// First sentence stands in for a title on untagged PDFs.
		title = Truncate(body, 80)
	}

	return ExtractedPage{Title: title, MainContentText: body}, nil
}

// Truncate cuts s to at most max bytes without splitting a rune, so the
// result is always valid UTF-8.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
