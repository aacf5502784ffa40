package aggregate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicnews/internal/model"
	"civicnews/internal/source"
)

func TestRankThreeKeySort(t *testing.T) {
	now := time.Now()
	articles := []model.Article{
		{ID: "a", Tier: 2, Relevance: 50, PublishedAt: now},
		{ID: "b", Tier: 1, Relevance: 80, PublishedAt: now},
		{ID: "c", Tier: 1, Relevance: 90, PublishedAt: now},
	}

	ranked := rank(articles)
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("rank order = [%s %s %s], want [c b a]", ranked[0].ID, ranked[1].ID, ranked[2].ID)
		}
	}
}

func TestRankRecencyBreaksTies(t *testing.T) {
	now := time.Now()
	articles := []model.Article{
		{ID: "old", Tier: 1, Relevance: 50, PublishedAt: now.Add(-2 * time.Hour)},
		{ID: "new", Tier: 1, Relevance: 50, PublishedAt: now},
	}
	ranked := rank(articles)
	if ranked[0].ID != "new" {
		t.Errorf("newest first on tier+relevance tie, got %s", ranked[0].ID)
	}
}

func TestRankTruncates(t *testing.T) {
	articles := make([]model.Article, 45)
	for i := range articles {
		articles[i] = model.Article{Tier: 1, Relevance: i}
	}
	if got := len(rank(articles)); got != maxResults {
		t.Errorf("len = %d, want %d", got, maxResults)
	}
}

func TestDedupeKeyNormalizes(t *testing.T) {
	a := dedupeKey("https://www.example.com/story/?utm_source=feed&utm_medium=rss")
	b := dedupeKey("https://example.com/story")
	if a != b {
		t.Errorf("tracking params and www should not split duplicates: %q vs %q", a, b)
	}
	if dedupeKey("https://example.com/story") == dedupeKey("https://example.com/other") {
		t.Error("distinct paths must not collide")
	}
}

const senateFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Wire</title>
<item>
<title>Senate Passes Bill Funding Rural Broadband Expansion</title>
<description>The Senate passed bipartisan legislation on Thursday to expand rural broadband access, sending the bill to the House.</description>
<link>https://example.com/senate-passes-bill</link>
<pubDate>Mon, 12 Jan 2026 09:30:00 GMT</pubDate>
</item>
<item>
<title>Ten Cozy Soup Recipe Ideas for a Cold Week</title>
<description>Warm up with these ten hearty soup recipe ideas, from classic chicken noodle to spicy lentil stew for winter evenings.</description>
<link>https://example.com/soup-recipes</link>
<pubDate>Mon, 12 Jan 2026 08:00:00 GMT</pubDate>
</item>
</channel></rss>`

func testRegistry(t *testing.T, sources ...model.FeedSource) *source.Registry {
	t.Helper()
	registry, err := source.NewRegistry(sources)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return registry
}

func TestAggregateEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(senateFeed))
	}))
	defer srv.Close()

	registry := testRegistry(t, model.FeedSource{
		Name: "Test Wire", URL: srv.URL, Category: "politics",
		Type: model.FeedTypeRSS, Tier: 1, Credibility: 90,
	})

	articles := New(registry, nil, nil).Aggregate(context.Background(), nil, nil)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 (recipe item excluded)", len(articles))
	}

	got := articles[0]
	if got.Title != "Senate Passes Bill Funding Rural Broadband Expansion" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Relevance <= 0 {
		t.Errorf("relevance = %d, want > 0", got.Relevance)
	}
	if got.Source.Name != "Test Wire" || got.Source.ID != "test-wire" {
		t.Errorf("source attribution = %+v", got.Source)
	}
	if got.Tier != 1 || got.Credibility != 90 {
		t.Errorf("tier/credibility = %d/%d", got.Tier, got.Credibility)
	}
	if got.ID == "" {
		t.Error("article must carry a deterministic identifier")
	}
}

func TestAggregateIsolatesFailingSources(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(senateFeed))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	registry := testRegistry(t,
		model.FeedSource{Name: "Bad Wire", URL: bad.URL, Category: "politics", Type: model.FeedTypeRSS, Tier: 1, Credibility: 80},
		model.FeedSource{Name: "Good Wire", URL: good.URL, Category: "politics", Type: model.FeedTypeRSS, Tier: 2, Credibility: 85},
	)

	articles := New(registry, nil, nil).Aggregate(context.Background(), nil, nil)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 from the healthy source", len(articles))
	}
	if articles[0].Source.Name != "Good Wire" {
		t.Errorf("attribution = %q", articles[0].Source.Name)
	}
}

func TestAggregateAllSourcesFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	registry := testRegistry(t, model.FeedSource{
		Name: "Bad Wire", URL: bad.URL, Category: "politics",
		Type: model.FeedTypeRSS, Tier: 1, Credibility: 80,
	})

	if articles := New(registry, nil, nil).Aggregate(context.Background(), nil, nil); len(articles) != 0 {
		t.Errorf("got %d articles, want 0 when every source fails", len(articles))
	}
}

func TestAggregateDeduplicatesAcrossSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(senateFeed))
	}))
	defer srv.Close()

	// Two registry entries pointing at the same upstream story.
	registry := testRegistry(t,
		model.FeedSource{Name: "Wire One", URL: srv.URL + "/a", Category: "politics", Type: model.FeedTypeRSS, Tier: 1, Credibility: 90},
		model.FeedSource{Name: "Wire Two", URL: srv.URL + "/b", Category: "politics", Type: model.FeedTypeRSS, Tier: 2, Credibility: 80},
	)

	articles := New(registry, nil, nil).Aggregate(context.Background(), nil, nil)
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 after dedupe", len(articles))
	}
	// Tier order assembly keeps the higher-tier copy.
	if articles[0].Source.Name != "Wire One" {
		t.Errorf("kept %q, want the tier-1 copy", articles[0].Source.Name)
	}
}

func TestPerTierCaps(t *testing.T) {
	tests := []struct{ tier, want int }{{1, 20}, {2, 15}, {3, 10}}
	for _, tt := range tests {
		if got := perTierCap(tt.tier); got != tt.want {
			t.Errorf("perTierCap(%d) = %d, want %d", tt.tier, got, tt.want)
		}
	}
}
