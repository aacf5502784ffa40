package model

import "time"

// CachedResult is one persisted cache row: a serialized article list stored
// under a deterministic request key. The store keeps at most one live row per
// key (replace-on-write).
type CachedResult struct {
	ID        uint      `gorm:"primaryKey"`
	CacheKey  string    `gorm:"size:255;index;not null"`
	Articles  string    `gorm:"type:text;not null"` // JSON-encoded []Article
	Source    string    `gorm:"size:50;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// SourceMetadata is the durable per-article record the aggregator writes back
// opportunistically. Upserted by URL.
type SourceMetadata struct {
	ID            uint   `gorm:"primaryKey"`
	URL           string `gorm:"size:500;uniqueIndex;not null"`
	Title         string `gorm:"size:500"`
	Description   string `gorm:"type:text"`
	Domain        string `gorm:"size:255;index"`
	OGImage       string `gorm:"size:500"`
	OGDescription string `gorm:"type:text"`
	Credibility   int
	Bias          string `gorm:"size:50"`
	IsSecure      bool
	HasPaywall    bool
	FetchedAt     time.Time
}
