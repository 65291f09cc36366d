// Package browser renders pages in a headless Chrome instance for content a
// plain HTTP fetch cannot see.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/linkstash-app/linkstash/internal/core"
)

const (
	navigationTimeout = 10 * time.Second
	// settleDelay gives late XHR-driven content a moment to land after the
	// document is ready.
	settleDelay = 2 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ChromeRenderer runs one isolated browser context per call. The deferred
// cancels terminate the Chrome process on every exit path, including
// navigation timeouts; a leaked browser is the main resource risk here.
type ChromeRenderer struct {
	log *zap.Logger
}

func NewChromeRenderer(log *zap.Logger) *ChromeRenderer {
	return &ChromeRenderer{log: log}
}

// Render navigates to url and returns the fully rendered DOM.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1280, 800),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, navigationTimeout+settleDelay)
	defer cancelRun()

	start := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	r.log.Debug("headless render complete",
		zap.String("url", url),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(html)))
	return html, nil
}

var _ core.PageRenderer = (*ChromeRenderer)(nil)
