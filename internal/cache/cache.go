// Package cache implements the two-tier read-through cache in front of the
// aggregation pipeline: a short-TTL in-process map over a long-TTL sqlite
// store, with static fallback content when the whole pipeline comes up empty.
package cache

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"civicnews/internal/model"
)

// Provenance labels reported to clients.
const (
	SourceRSS      = "rss_feeds"
	SourceDatabase = "database_cache"
	SourceFallback = "mock_fallback"
)

// AggregateFunc runs the full fetch/parse/classify/rank pipeline.
type AggregateFunc func(ctx context.Context, sources, categories []string) []model.Article

// Result is what the cache hands to the HTTP layer.
type Result struct {
	Articles  []model.Article
	Source    string
	FromCache bool
}

// TwoTier is constructed once per process and injected into the handler.
// The fallback func is invoked per miss so its content stays current.
type TwoTier struct {
	memory    *Memory
	store     *Store
	aggregate AggregateFunc
	fallback  func() []model.Article
}

func NewTwoTier(memory *Memory, store *Store, aggregate AggregateFunc, fallback func() []model.Article) *TwoTier {
	return &TwoTier{memory: memory, store: store, aggregate: aggregate, fallback: fallback}
}

// Key derives the deterministic cache key for a request's filters. Tokens are
// normalized and sorted so equivalent requests share an entry.
func Key(maxArticles int, sources, categories []string) string {
	return fmt.Sprintf("news:%d:%s:%s", maxArticles, token(sources), token(categories))
}

func token(values []string) string {
	var cleaned []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && v != "all" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return "all"
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}

// Get serves a request through the tiers: memory hit, then store hit with
// memory repopulation, then a full aggregation written through both tiers.
// Fallback content is never cached. An error here means the persistent store
// itself failed; everything below it degrades silently.
func (c *TwoTier) Get(ctx context.Context, maxArticles int, sources, categories []string) (Result, error) {
	key := Key(maxArticles, sources, categories)

	if e, ok := c.memory.Get(key); ok {
		return Result{Articles: trim(e.Articles, maxArticles), Source: e.Source, FromCache: true}, nil
	}

	e, err := c.store.Get(key)
	if err != nil {
		return Result{}, err
	}
	if e != nil {
		c.memory.Set(key, e.Articles, SourceDatabase)
		return Result{Articles: trim(e.Articles, maxArticles), Source: SourceDatabase, FromCache: true}, nil
	}

	articles := c.aggregate(ctx, sources, categories)
	if len(articles) == 0 {
		return Result{Articles: trim(c.fallback(), maxArticles), Source: SourceFallback, FromCache: false}, nil
	}

	c.memory.Set(key, articles, SourceRSS)
	if err := c.store.Set(key, articles, SourceRSS); err != nil {
		log.Printf("[Cache] write-through failed for key %s: %v", key, err)
	}
	return Result{Articles: trim(articles, maxArticles), Source: SourceRSS, FromCache: false}, nil
}

// MemoryLen exposes the in-memory entry count for the status endpoint.
func (c *TwoTier) MemoryLen() int {
	return c.memory.Len()
}

func trim(articles []model.Article, n int) []model.Article {
	if n > 0 && len(articles) > n {
		return articles[:n]
	}
	return articles
}
