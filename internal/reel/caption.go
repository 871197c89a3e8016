package reel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageCaption reads the og:description meta tag of the public reel page.
type PageCaption struct {
	client    *http.Client
	userAgent string
}

// NewPageCaption constructs a page caption source. A nil client gets a 10s timeout.
func NewPageCaption(client *http.Client) *PageCaption {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PageCaption{
		client:    client,
		userAgent: "Mozilla/5.0 (compatible; moviepicker/1.0)",
	}
}

// Caption implements CaptionSource.
func (p *PageCaption) Caption(ctx context.Context, ref Reference) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return "", fmt.Errorf("page caption: new request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("page caption: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page caption: http %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("page caption: parse html: %w", err)
	}
	return ExtractOGDescription(doc), nil
}

// ExtractOGDescription returns the og:description content, falling back to
// the plain description meta tag.
func ExtractOGDescription(doc *goquery.Document) string {
	for _, selector := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
