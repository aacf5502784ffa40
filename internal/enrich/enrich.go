// Package enrich fills the optional Article fields (image, body text) by
// fetching the article page itself. Everything here is best effort: a nil
// result means the article ships without the extras.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	fetchTimeout = 8 * time.Second
	maxBodyBytes = 2 << 20
	maxContent   = 2000
)

// PageMeta holds what could be recovered from one article page.
type PageMeta struct {
	ImageURL    string
	Description string
	Content     string
}

// Enricher fetches article pages, optionally through a scrape proxy when an
// API key is configured. No key means direct fetches; it never means failure.
type Enricher struct {
	client   *http.Client
	proxyKey string
}

func New(proxyKey string) *Enricher {
	return &Enricher{client: &http.Client{}, proxyKey: proxyKey}
}

// Enrich fetches pageURL and extracts OpenGraph fields and readable body
// text. Any failure returns nil.
func (e *Enricher) Enrich(ctx context.Context, pageURL string) *PageMeta {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	target := pageURL
	if e.proxyKey != "" {
		target = fmt.Sprintf("https://api.scraperapi.com/?api_key=%s&url=%s", e.proxyKey, url.QueryEscape(pageURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "civicnews/1.0 (+https://github.com/civicnews/civicnews)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil
	}

	meta := &PageMeta{}
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		meta.ImageURL, _ = doc.Find(`meta[property="og:image"]`).Attr("content")
		meta.Description, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}
	if parsedURL, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(bytes.NewReader(body), parsedURL); err == nil {
			meta.Content = truncate(strings.Join(strings.Fields(article.TextContent), " "), maxContent)
		}
	}

	if meta.ImageURL == "" && meta.Description == "" && meta.Content == "" {
		return nil
	}
	return meta
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
