package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"civicnews/internal/cache"
	"civicnews/internal/model"
	"civicnews/internal/source"
)

const (
	defaultMaxArticles = 20
	maxArticlesCeiling = 30
)

type Handler struct {
	cache     *cache.TwoTier
	store     *cache.Store
	registry  *source.Registry
	started   time.Time
	scheduler interface {
		NextSweepTime() time.Time
	}
}

func NewHandler(c *cache.TwoTier, store *cache.Store, registry *source.Registry) *Handler {
	return &Handler{
		cache:    c,
		store:    store,
		registry: registry,
		started:  time.Now(),
	}
}

// SetScheduler wires in the cron scheduler for status reporting.
func (h *Handler) SetScheduler(scheduler interface {
	NextSweepTime() time.Time
}) {
	h.scheduler = scheduler
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/news", h.GetNews)
		api.GET("/sources", h.ListSources)
		api.GET("/status", h.GetStatus)
	}
}

type newsResponse struct {
	Articles     []model.Article `json:"articles"`
	TotalResults int             `json:"totalResults"`
	Status       string          `json:"status"`
	Source       string          `json:"source"`
	FromCache    bool            `json:"fromCache"`
	Message      string          `json:"message"`
}

func (h *Handler) GetNews(c *gin.Context) {
	maxArticles, err := strconv.Atoi(c.DefaultQuery("maxArticles", strconv.Itoa(defaultMaxArticles)))
	if err != nil || maxArticles < 1 {
		maxArticles = defaultMaxArticles
	}
	if maxArticles > maxArticlesCeiling {
		maxArticles = maxArticlesCeiling
	}
	sources := splitParam(c.Query("sources"))
	categories := splitParam(c.Query("categories"))

	result, err := h.cache.Get(c.Request.Context(), maxArticles, sources, categories)
	if err != nil {
		log.Printf("[API] news pipeline failed: %v", err)
		fallback := cache.DefaultFallback()
		if len(fallback) > maxArticles {
			fallback = fallback[:maxArticles]
		}
		c.JSON(http.StatusInternalServerError, newsResponse{
			Articles:     fallback,
			TotalResults: len(fallback),
			Status:       "error",
			Source:       "mock_error",
			FromCache:    false,
			Message:      "news pipeline unavailable, serving fallback content",
		})
		return
	}

	c.JSON(http.StatusOK, newsResponse{
		Articles:     result.Articles,
		TotalResults: len(result.Articles),
		Status:       "ok",
		Source:       result.Source,
		FromCache:    result.FromCache,
		Message:      messageFor(result),
	})
}

func messageFor(r cache.Result) string {
	switch r.Source {
	case cache.SourceRSS:
		return "live results aggregated from registered feeds"
	case cache.SourceDatabase:
		return "served from persistent cache"
	case cache.SourceFallback:
		return "no fresh articles available, serving fallback content"
	default:
		return "served from cache"
	}
}

func (h *Handler) ListSources(c *gin.Context) {
	type sourceView struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		Tier        int    `json:"tier"`
		Credibility int    `json:"credibility"`
	}
	sources := h.registry.All()
	views := make([]sourceView, 0, len(sources))
	for _, s := range sources {
		views = append(views, sourceView{
			ID:          source.Slug(s.Name),
			Name:        s.Name,
			Category:    s.Category,
			Type:        string(s.Type),
			Tier:        s.Tier,
			Credibility: s.Credibility,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sources": views, "total": len(views)})
}

func (h *Handler) GetStatus(c *gin.Context) {
	persisted, err := h.store.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := gin.H{
		"uptime_seconds":    int(time.Since(h.started).Seconds()),
		"registered_feeds":  h.registry.Len(),
		"memory_entries":    h.cache.MemoryLen(),
		"persisted_entries": persisted,
	}
	if h.scheduler != nil {
		status["next_sweep_time"] = h.scheduler.NextSweepTime()
	}
	c.JSON(http.StatusOK, status)
}

func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
