package rss

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"civicnews/internal/model"
)

// Client identities tried in rotation. Some feed hosts reject unfamiliar
// fingerprints, so the desktop browser profiles go first and the honest bot
// identity last.
var identities = []struct {
	userAgent string
	accept    string
}{
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		accept:    "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8",
	},
	{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:127.0) Gecko/20100101 Firefox/127.0",
		accept:    "application/rss+xml, application/xml;q=0.9, */*;q=0.8",
	},
	{
		userAgent: "civicnews/1.0 (+https://github.com/civicnews/civicnews)",
		accept:    "*/*",
	},
}

// Fetcher retrieves raw feed bodies. Tier 1 sources get the longer timeout;
// they are worth waiting for.
type Fetcher struct {
	client       *http.Client
	Tier1Timeout time.Duration
	LowerTimeout time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:       &http.Client{},
		Tier1Timeout: 10 * time.Second,
		LowerTimeout: 6 * time.Second,
	}
}

// Fetch returns the raw feed body for src, or "" once every identity has been
// tried. A failing source is logged and contributes nothing; it never aborts
// the aggregation.
func (f *Fetcher) Fetch(ctx context.Context, src model.FeedSource) string {
	timeout := f.LowerTimeout
	if src.Tier == 1 {
		timeout = f.Tier1Timeout
	}

	for _, id := range identities {
		body, err := f.attempt(ctx, src.URL, id.userAgent, id.accept, timeout)
		if err != nil {
			log.Printf("[Fetch] %s: %v", src.Name, err)
			continue
		}
		return body
	}
	return ""
}

func (f *Fetcher) attempt(ctx context.Context, feedURL, userAgent, accept string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty body")
	}
	return string(body), nil
}
