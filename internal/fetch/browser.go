// Package fetch - browser.go provides headless browser rendering for SPA sites.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the minimum extracted text length to consider an HTTP fetch
// sufficient. Shorter text suggests a JavaScript-rendered page.
const MinContentLength = 500

// minBrowserTimeout is the floor for a browser render; page scripts need time to run.
const minBrowserTimeout = 20 * time.Second

// ShouldUseBrowser reports whether extracted text is too short to trust.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

func browserTimeout(httpTimeout time.Duration) time.Duration {
	if t := 3 * httpTimeout; t > minBrowserTimeout {
		return t
	}
	return minBrowserTimeout
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome or Chromium on the host.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger *zap.SugaredLogger) (string, error) {
	logger.Debugw("starting headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debugw("rendered page", "url", url, "bytes", len(html))
	return html, nil
}
