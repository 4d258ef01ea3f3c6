package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"marquee/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

// Limits for result-page fetches. Catalog pages are article-sized; anything
// larger is almost certainly not prose worth mining.
const (
	maxBodyBytes   = 2 << 20
	maxTextRunes   = 20000
	defaultTimeout = 15 * time.Second
	userAgent      = "marquee/1.0 (+https://watch.marquee.local)"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Client fetches search-result pages and reduces them to plain text that the
// extractor can mine.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a page fetcher with the given timeout. Zero or negative
// timeouts fall back to the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPageText GETs pageURL and returns its visible text with boilerplate
// removed. Failures are returned for the caller to log; the resolver treats
// any error as "no page text available".
func (c *Client) FetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: status code %d", pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", fmt.Errorf("unsupported content type %q from %s", ct, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", pageURL, err)
	}

	text := ExtractText(string(body))
	if text == "" {
		logger.Debug("No text extracted from page", "url", pageURL)
	}
	return text, nil
}

// ExtractText reduces an HTML document to readable text. Script, style and
// navigation elements are dropped, main-content containers are preferred over
// the whole body, and whitespace runs collapse to single spaces so downstream
// pattern matching sees sentence-like text.
func ExtractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	mainContentSelectors := []string{
		"article", "main", "[role='main']",
		".main-content", ".entry-content", ".post-content", ".article-body",
		"#content", ".content",
	}

	var builder strings.Builder
	for _, selector := range mainContentSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			appendBlockText(&builder, s)
		})
		if builder.Len() > 0 {
			break
		}
	}
	if builder.Len() == 0 {
		doc.Find("body").Each(func(_ int, s *goquery.Selection) {
			appendBlockText(&builder, s)
		})
	}

	text := whitespaceRegex.ReplaceAllString(builder.String(), " ")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > maxTextRunes {
		text = strings.TrimSpace(string(runes[:maxTextRunes]))
	}
	return text
}

// appendBlockText collects the text of block-level elements, one trailing
// space per block so adjacent blocks never run together.
func appendBlockText(builder *strings.Builder, s *goquery.Selection) {
	s.Find("p, h1, h2, h3, h4, li, blockquote, td").Each(func(_ int, item *goquery.Selection) {
		text := strings.TrimSpace(item.Text())
		if text == "" {
			return
		}
		builder.WriteString(text)
		builder.WriteString(" ")
	})
}
