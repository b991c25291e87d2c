// Package fetch reads brand web pages and reduces them to visible text for
// voice profile generation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; VoiceAPI/1.0)"

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 5 << 20

// PageFetcher returns the visible text of a web page.
type PageFetcher interface {
	PageText(ctx context.Context, url string) (string, error)
}

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL. A non-200 status returns the result
// together with an *Error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	return result, nil
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements, then finds content using contentSelectors,
// falling back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, script, style, noscript, template, svg, .cookie-banner, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// DefaultTextSelectors returns standard selectors for marketing and content pages.
func DefaultTextSelectors() []string {
	return []string{
		"main",
		"[role='main']",
		"article",
		"#content",
		".content",
	}
}

// cleanWhitespace collapses runs of spaces and drops blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// HTTPFetcher fetches pages over HTTP and optionally re-renders thin pages in a
// headless browser.
type HTTPFetcher struct {
	opts       *Options
	useBrowser bool
	logger     *zap.SugaredLogger

	render func(ctx context.Context, url string, timeout time.Duration) (string, error)
}

var _ PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher. A nil opts uses DefaultOptions.
func NewHTTPFetcher(opts *Options, useBrowser bool, logger *zap.SugaredLogger) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	f := &HTTPFetcher{opts: opts, useBrowser: useBrowser, logger: logger}
	f.render = func(ctx context.Context, url string, timeout time.Duration) (string, error) {
		return WithBrowser(ctx, url, timeout, f.logger)
	}
	return f
}

// PageText fetches url and returns its visible text.
func (f *HTTPFetcher) PageText(ctx context.Context, urlStr string) (string, error) {
	result, err := URL(ctx, urlStr, f.opts)
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(result.HTML, DefaultTextSelectors())
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}

	if !f.useBrowser || !ShouldUseBrowser(text) {
		return text, nil
	}

	f.logger.Infow("page text is thin, rendering in browser", "url", urlStr, "chars", len(text))
	html, err := f.render(ctx, urlStr, browserTimeout(f.opts.Timeout))
	if err != nil {
		f.logger.Warnw("browser rendering failed, keeping HTTP text", "url", urlStr, "error", err)
		return text, nil
	}

	rendered, err := ExtractMainText(html, DefaultTextSelectors())
	if err != nil || len(rendered) <= len(text) {
		return text, nil
	}
	return rendered, nil
}
