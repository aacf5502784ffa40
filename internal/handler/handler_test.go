package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"civicnews/internal/cache"
	"civicnews/internal/model"
	"civicnews/internal/source"
)

func testRouter(t *testing.T, aggregate cache.AggregateFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(&model.CachedResult{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	registry, err := source.Load()
	if err != nil {
		t.Fatalf("loading registry: %v", err)
	}

	memory := cache.NewMemory(15*time.Minute, 10)
	store := cache.NewStore(db, 30*time.Minute)
	twoTier := cache.NewTwoTier(memory, store, aggregate, cache.DefaultFallback)

	r := gin.New()
	h := NewHandler(twoTier, store, registry)
	h.RegisterRoutes(r)
	return r
}

func liveArticles(n int) []model.Article {
	now := time.Now()
	articles := make([]model.Article, n)
	for i := range articles {
		articles[i] = model.Article{
			ID:          "id",
			Title:       "Senate Passes Landmark Infrastructure Bill",
			Description: "The Senate approved the sweeping package on a bipartisan vote Thursday afternoon.",
			URL:         "https://example.com/story",
			PublishedAt: now,
			Source:      model.SourceRef{ID: "test-wire", Name: "Test Wire"},
			Category:    "politics",
			Relevance:   60,
			Tier:        1,
			Credibility: 90,
		}
	}
	return articles
}

func getNews(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v\n%s", err, w.Body.String())
	}
	return w, body
}

func TestGetNewsLiveResults(t *testing.T) {
	r := testRouter(t, func(ctx context.Context, sources, categories []string) []model.Article {
		return liveArticles(4)
	})

	w, body := getNews(t, r, "/api/news?maxArticles=3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body["status"] != "ok" || body["source"] != "rss_feeds" || body["fromCache"] != false {
		t.Errorf("envelope = %v", body)
	}
	if body["totalResults"] != float64(3) {
		t.Errorf("totalResults = %v, want 3 (trimmed to maxArticles)", body["totalResults"])
	}
}

func TestGetNewsSecondRequestFromCache(t *testing.T) {
	r := testRouter(t, func(ctx context.Context, sources, categories []string) []model.Article {
		return liveArticles(2)
	})

	getNews(t, r, "/api/news")
	_, body := getNews(t, r, "/api/news")
	if body["fromCache"] != true {
		t.Errorf("second request fromCache = %v, want true", body["fromCache"])
	}
}

func TestGetNewsFallbackWhenPipelineEmpty(t *testing.T) {
	r := testRouter(t, func(ctx context.Context, sources, categories []string) []model.Article {
		return nil
	})

	w, body := getNews(t, r, "/api/news")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for graceful exhaustion", w.Code)
	}
	if body["status"] != "ok" || body["source"] != "mock_fallback" || body["fromCache"] != false {
		t.Errorf("envelope = %v", body)
	}
	if body["totalResults"] == float64(0) {
		t.Error("fallback response must carry articles")
	}
}

func TestGetNewsErrorWhenStoreBroken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// No AutoMigrate, so the persistent tier fails on every read.
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	registry, err := source.Load()
	if err != nil {
		t.Fatalf("loading registry: %v", err)
	}

	memory := cache.NewMemory(15*time.Minute, 10)
	store := cache.NewStore(db, 30*time.Minute)
	twoTier := cache.NewTwoTier(memory, store, func(ctx context.Context, sources, categories []string) []model.Article {
		t.Fatal("aggregator must not run when the store errors")
		return nil
	}, cache.DefaultFallback)

	r := gin.New()
	h := NewHandler(twoTier, store, registry)
	h.RegisterRoutes(r)

	w, body := getNews(t, r, "/api/news")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body["status"] != "error" || body["source"] != "mock_error" || body["fromCache"] != false {
		t.Errorf("envelope = %v", body)
	}
	if body["totalResults"] == float64(0) {
		t.Error("error response must still carry fallback articles")
	}
}

func TestGetNewsClampsMaxArticles(t *testing.T) {
	r := testRouter(t, func(ctx context.Context, sources, categories []string) []model.Article {
		return liveArticles(30)
	})

	for _, path := range []string{"/api/news?maxArticles=-5", "/api/news?maxArticles=junk"} {
		_, body := getNews(t, r, path)
		if body["totalResults"] != float64(20) {
			t.Errorf("%s: totalResults = %v, want default 20", path, body["totalResults"])
		}
	}

	_, body := getNews(t, r, "/api/news?maxArticles=500")
	if body["totalResults"] != float64(30) {
		t.Errorf("totalResults = %v, want ceiling 30", body["totalResults"])
	}
}

func TestListSources(t *testing.T) {
	r := testRouter(t, func(ctx context.Context, sources, categories []string) []model.Article { return nil })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Sources []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Tier int    `json:"tier"`
		} `json:"sources"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.Total == 0 || len(body.Sources) != body.Total {
		t.Errorf("sources = %d, total = %d", len(body.Sources), body.Total)
	}
	for _, s := range body.Sources {
		if s.ID == "" || s.Name == "" || s.Tier < 1 || s.Tier > 3 {
			t.Errorf("malformed source view: %+v", s)
		}
	}
}

func TestGetStatus(t *testing.T) {
	r := testRouter(t, func(ctx context.Context, sources, categories []string) []model.Article { return nil })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	for _, key := range []string{"uptime_seconds", "registered_feeds", "memory_entries", "persisted_entries"} {
		if _, ok := body[key]; !ok {
			t.Errorf("status missing %q", key)
		}
	}
}
