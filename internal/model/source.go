package model

type FeedType string

const (
	FeedTypeRSS     FeedType = "rss"
	FeedTypeSitemap FeedType = "sitemap"
)

// FeedSource is one static registry entry, loaded at process start.
// Tier 1 is the highest priority.
type FeedSource struct {
	Name        string
	URL         string
	Category    string
	Type        FeedType
	Tier        int
	Credibility int // 0-100
}
