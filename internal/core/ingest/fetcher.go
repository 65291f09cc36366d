package ingest

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core"
)

const (
	fetchTimeout  = 15 * time.Second
	maxBodyBytes  = 10 << 20 // 10 MB
	minVisibleLen = 200      // below this, a framework marker means under-rendered

	// Plain Go user agents get blocked or served bot pages often enough
	// that we present a desktop browser.
	fetchUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var frameworkMarkers = []string{
	"#root", "#app", "#__next", "[data-reactroot]", "[ng-version]", "[data-v-app]",
}

var loadingMarkers = []string{
	".loading", ".spinner", ".skeleton", "[aria-busy=\"true\"]",
}

// Fetcher retrieves raw markup for a URL, escalating to a headless browser
// when the plain fetch looks like an empty SPA shell.
type Fetcher struct {
	client   *http.Client
	renderer core.PageRenderer
	log      *zap.Logger
}

func NewFetcher(renderer core.PageRenderer, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: fetchTimeout},
		renderer: renderer,
		log:      log,
	}
}

// Fetch returns the page markup for url. A failed direct fetch falls through
// to the headless renderer; when that also fails the save is over.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*SourceDocument, error) {
	doc, err := f.fetchDirect(ctx, url)
	if err != nil {
		f.log.Warn("direct fetch failed, trying headless", zap.String("url", url), zap.Error(err))
		html, rerr := f.render(ctx, url)
		if rerr != nil {
			return nil, fetchErr(url, fmt.Errorf("%w; headless: %w", err, rerr))
		}
		return &SourceDocument{URL: url, HTML: html, FetchedVia: FetchHeadless, MediaType: "text/html"}, nil
	}

	// PDFs skip the render heuristic entirely.
	if doc.MediaType == "application/pdf" {
		return doc, nil
	}

	if NeedsHeadlessRender(doc.HTML) {
		f.log.Info("page looks under-rendered, re-fetching headlessly", zap.String("url", url))
		html, rerr := f.render(ctx, url)
		if rerr != nil {
			// The thin markup is still better than nothing.
			f.log.Warn("headless re-fetch failed, keeping direct markup", zap.String("url", url), zap.Error(rerr))
			return doc, nil
		}
		return &SourceDocument{URL: url, HTML: html, FetchedVia: FetchHeadless, MediaType: "text/html"}, nil
	}

	return doc, nil
}

func (f *Fetcher) fetchDirect(ctx context.Context, url string) (*SourceDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	mediaType := "text/html"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, perr := mime.ParseMediaType(ct); perr == nil {
			mediaType = mt
		}
	}

	return &SourceDocument{
		URL:        url,
		HTML:       string(body),
		Raw:        body,
		MediaType:  mediaType,
		FetchedVia: FetchDirect,
	}, nil
}

func (f *Fetcher) render(ctx context.Context, url string) (string, error) {
	if f.renderer == nil {
		return "", renderErr(url, fmt.Errorf("no renderer configured"))
	}
	html, err := f.renderer.Render(ctx, url)
	if err != nil {
		return "", renderErr(url, err)
	}
	return html, nil
}

// NeedsHeadlessRender inspects directly fetched markup for signs of a
// client-rendered shell: almost no visible text next to a framework root
// container, or an explicit loading indicator.
func NeedsHeadlessRender(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, sel := range loadingMarkers {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}

	visible := collapseWhitespace(doc.Find("body").Text())
	if utf8.RuneCountInString(visible) >= minVisibleLen {
		return false
	}
	for _, sel := range frameworkMarkers {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}
