package model

import "time"

// SourceRef identifies the outlet an article came from.
type SourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is the public result unit. Immutable after aggregation, except
// RecordID which is attached after the metadata write-back.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      SourceRef `json:"source"`
	Category    string    `json:"category"`
	Content     string    `json:"content,omitempty"`
	Relevance   int       `json:"relevanceScore"`
	Tier        int       `json:"tier"`
	Credibility int       `json:"credibilityScore"`
	RecordID    *uint     `json:"recordId,omitempty"`
}

// RawFeedItem is one extracted feed entry, discarded after classification.
type RawFeedItem struct {
	Title       string
	Description string
	Link        string
	PublishedAt time.Time
	SourceName  string
}
