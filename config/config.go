package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Cron     CronConfig     `yaml:"cron"`
	Enrich   EnrichConfig   `yaml:"enrich"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	MemoryTTL      string `yaml:"memory_ttl"`
	MemoryCapacity int    `yaml:"memory_capacity"`
	StoreTTL       string `yaml:"store_ttl"`
	SweepAge       string `yaml:"sweep_age"`
}

type CronConfig struct {
	SweepInterval string `yaml:"sweep_interval"`
}

type EnrichConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"-"` // env only, never from file
}

// Load reads the optional config file and applies environment overrides on
// top of the baked-in defaults.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: "3000",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Path: "data/civicnews.db",
		},
		Cache: CacheConfig{
			MemoryTTL:      "15m",
			MemoryCapacity: 10,
			StoreTTL:       "30m",
			SweepAge:       "24h",
		},
		Cron: CronConfig{
			SweepInterval: "0 * * * *", // hourly
		},
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else {
		log.Printf("config file %s not found, using defaults", configPath)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	// Optional scrape-proxy key; absence just disables proxied enrichment.
	cfg.Enrich.APIKey = os.Getenv("SCRAPE_PROXY_KEY")

	return cfg, nil
}

// GetServerAddress returns the listen address, prefixing bare ports.
func (c *Config) GetServerAddress() string {
	if _, err := strconv.Atoi(c.Server.Port); err == nil {
		return ":" + c.Server.Port
	}
	return c.Server.Port
}

// GetMemoryTTL parses the memory-tier TTL, falling back to 15 minutes.
func (c *CacheConfig) GetMemoryTTL() time.Duration {
	return parseDuration(c.MemoryTTL, 15*time.Minute)
}

// GetStoreTTL parses the persistent-tier TTL, falling back to 30 minutes.
func (c *CacheConfig) GetStoreTTL() time.Duration {
	return parseDuration(c.StoreTTL, 30*time.Minute)
}

// GetSweepAge parses the sweep age bound, falling back to 24 hours.
func (c *CacheConfig) GetSweepAge() time.Duration {
	return parseDuration(c.SweepAge, 24*time.Hour)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}
