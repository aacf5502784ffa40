package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"civicnews/config"
	"civicnews/internal/aggregate"
	"civicnews/internal/cache"
	"civicnews/internal/enrich"
	"civicnews/internal/handler"
	"civicnews/internal/model"
	"civicnews/internal/scheduler"
	"civicnews/internal/source"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatal("Failed to create data dir:", err)
	}
	db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	db.AutoMigrate(&model.CachedResult{}, &model.SourceMetadata{})

	registry, err := source.Load()
	if err != nil {
		log.Fatal("Invalid feed registry:", err)
	}

	var enricher *enrich.Enricher
	if cfg.Enrich.Enabled {
		enricher = enrich.New(cfg.Enrich.APIKey)
	}

	aggregator := aggregate.New(registry, db, enricher)
	memory := cache.NewMemory(cfg.Cache.GetMemoryTTL(), cfg.Cache.MemoryCapacity)
	store := cache.NewStore(db, cfg.Cache.GetStoreTTL())
	twoTier := cache.NewTwoTier(memory, store, aggregator.Aggregate, cache.DefaultFallback)

	sched := scheduler.NewScheduler(store, cfg.Cron.SweepInterval, cfg.Cache.GetSweepAge())
	sched.Start()
	defer sched.Stop()

	r := gin.Default()
	h := handler.NewHandler(twoTier, store, registry)
	h.SetScheduler(sched)
	h.RegisterRoutes(r)

	log.Printf("Server starting on %s", cfg.GetServerAddress())
	r.Run(cfg.GetServerAddress())
}
