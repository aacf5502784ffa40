// Package aggregate runs the full pipeline for one request: concurrent
// fetches across the registry, parsing, relevance classification, dedupe,
// ranking, and the opportunistic metadata write-back.
package aggregate

import (
	"context"
	"log"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civicnews/internal/classify"
	"civicnews/internal/enrich"
	"civicnews/internal/model"
	"civicnews/internal/rss"
	"civicnews/internal/source"
)

const maxResults = 30

// Per-source caps before merging, keyed by tier. Bounds the damage when one
// feed returns an unusually large payload.
func perTierCap(tier int) int {
	switch tier {
	case 1:
		return 20
	case 2:
		return 15
	default:
		return 10
	}
}

const enrichPerRun = 3

// Aggregator is stateless per invocation; the db and enricher may be nil
// (tests, degraded startup) and only disable the write-back and enrichment.
type Aggregator struct {
	registry *source.Registry
	fetcher  *rss.Fetcher
	parser   *rss.Parser
	enricher *enrich.Enricher
	db       *gorm.DB
}

func New(registry *source.Registry, db *gorm.DB, enricher *enrich.Enricher) *Aggregator {
	return &Aggregator{
		registry: registry,
		fetcher:  rss.NewFetcher(),
		parser:   rss.NewParser(),
		enricher: enricher,
		db:       db,
	}
}

// Aggregate produces the ranked, deduplicated article list for the given
// filters. Every per-source and per-item failure is absorbed here; the worst
// outcome is an empty slice.
func (a *Aggregator) Aggregate(ctx context.Context, sources, categories []string) []model.Article {
	feeds := a.registry.Filter(sources, categories)
	if len(feeds) == 0 {
		return nil
	}

	// All-settled fan-out: each goroutine owns one distinct slot, so a slow
	// or failing source neither blocks nor cancels the others.
	settled := make([][]model.RawFeedItem, len(feeds))
	var wg sync.WaitGroup
	for i, src := range feeds {
		wg.Add(1)
		go func(i int, src model.FeedSource) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Aggregate] %s: recovered: %v", src.Name, r)
				}
			}()
			raw := a.fetcher.Fetch(ctx, src)
			items := a.parser.Parse(raw, src)
			if limit := perTierCap(src.Tier); len(items) > limit {
				items = items[:limit]
			}
			settled[i] = items
		}(i, src)
	}
	wg.Wait()

	// Assembly walks feeds in tier order, so dedupe keeps the higher-tier copy.
	seen := make(map[string]bool)
	var articles []model.Article
	for i, src := range feeds {
		for _, item := range settled[i] {
			article, ok := buildArticle(item, src)
			if !ok {
				continue
			}
			urlKey := dedupeKey(article.URL)
			titleKey := "t:" + strings.ToLower(article.Title)
			if seen[urlKey] || seen[titleKey] {
				continue
			}
			seen[urlKey] = true
			seen[titleKey] = true
			articles = append(articles, article)
		}
	}

	articles = rank(articles)

	a.enrichTopArticles(ctx, articles)
	a.writeBack(articles)
	return articles
}

// rank applies the stable three-key sort (tier asc, relevance desc,
// published desc) and the overall result cap.
func rank(articles []model.Article) []model.Article {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Tier != articles[j].Tier {
			return articles[i].Tier < articles[j].Tier
		}
		if articles[i].Relevance != articles[j].Relevance {
			return articles[i].Relevance > articles[j].Relevance
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > maxResults {
		articles = articles[:maxResults]
	}
	return articles
}

// buildArticle validates an item's shape, classifies it, and promotes it to
// an Article. The ID is deterministic over the canonical link.
func buildArticle(item model.RawFeedItem, src model.FeedSource) (model.Article, bool) {
	if item.Title == "" || item.Description == "" || !rss.ValidLink(item.Link) {
		return model.Article{}, false
	}
	verdict := classify.Evaluate(item.Title + " " + item.Description)
	if !verdict.Included {
		return model.Article{}, false
	}
	return model.Article{
		ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(item.Link)).String(),
		Title:       item.Title,
		Description: item.Description,
		URL:         item.Link,
		PublishedAt: item.PublishedAt,
		Source:      model.SourceRef{ID: source.Slug(src.Name), Name: src.Name},
		Category:    src.Category,
		Relevance:   verdict.Score,
		Tier:        src.Tier,
		Credibility: src.Credibility,
	}, true
}

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "fbclid", "gclid"}

// dedupeKey normalizes a link so syndicated duplicates collapse: lowercased
// host without www, tracking params dropped, trailing slash trimmed.
func dedupeKey(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "u:" + strings.ToLower(link)
	}
	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return "u:" + host + strings.TrimSuffix(u.Path, "/") + "?" + u.RawQuery
}

// enrichTopArticles fills optional fields for a handful of tier-1 results.
// Bounded so a slow upstream page cannot stall the response for long.
func (a *Aggregator) enrichTopArticles(ctx context.Context, articles []model.Article) {
	if a.enricher == nil {
		return
	}
	enriched := 0
	for i := range articles {
		if enriched >= enrichPerRun {
			return
		}
		if articles[i].Tier != 1 {
			continue
		}
		meta := a.enricher.Enrich(ctx, articles[i].URL)
		enriched++
		if meta == nil {
			continue
		}
		if articles[i].ImageURL == "" {
			articles[i].ImageURL = meta.ImageURL
		}
		if articles[i].Content == "" {
			articles[i].Content = meta.Content
		}
	}
}

// writeBack persists per-article metadata. A failed write only leaves that
// article's RecordID nil; the article stays in the result set.
func (a *Aggregator) writeBack(articles []model.Article) {
	if a.db == nil {
		return
	}
	for i := range articles {
		rating := a.registry.Rate(articles[i].URL)
		record := model.SourceMetadata{URL: articles[i].URL}
		err := a.db.
			Where("url = ?", articles[i].URL).
			Assign(model.SourceMetadata{
				Title:         articles[i].Title,
				Description:   articles[i].Description,
				Domain:        source.Domain(articles[i].URL),
				OGImage:       articles[i].ImageURL,
				OGDescription: articles[i].Description,
				Credibility:   articles[i].Credibility,
				Bias:          rating.Bias,
				IsSecure:      strings.HasPrefix(articles[i].URL, "https://"),
				HasPaywall:    source.Paywalled(articles[i].URL),
				FetchedAt:     time.Now(),
			}).
			FirstOrCreate(&record).Error
		if err != nil {
			log.Printf("[Aggregate] metadata write for %s failed: %v", articles[i].URL, err)
			continue
		}
		articles[i].RecordID = &record.ID
	}
}
