package cache

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"civicnews/internal/model"
)

// Store is the persistent tier: one live row per key in sqlite, validity
// decided by a created-after predicate rather than row deletion.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// Get returns the freshest non-expired row for key, or nil on a miss.
// A corrupted payload counts as a miss, not an error.
func (s *Store) Get(key string) (*Entry, error) {
	var row model.CachedResult
	cutoff := s.now().Add(-s.ttl)
	err := s.db.
		Where("cache_key = ? AND created_at > ?", key, cutoff).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var articles []model.Article
	if err := json.Unmarshal([]byte(row.Articles), &articles); err != nil {
		log.Printf("[Cache] corrupted row for key %s: %v", key, err)
		return nil, nil
	}
	return &Entry{Key: key, Articles: articles, Source: row.Source, CreatedAt: row.CreatedAt}, nil
}

// Set replaces any prior rows for key with a single fresh one. Calling it
// twice with the same key leaves exactly one row.
func (s *Store) Set(key string, articles []model.Article, source string) error {
	payload, err := json.Marshal(articles)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cache_key = ?", key).Delete(&model.CachedResult{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.CachedResult{
			CacheKey:  key,
			Articles:  string(payload),
			Source:    source,
			CreatedAt: s.now(),
		}).Error
	})
}

// SweepOlderThan deletes rows past the given age and reports how many went.
func (s *Store) SweepOlderThan(age time.Duration) (int64, error) {
	res := s.db.Where("created_at < ?", s.now().Add(-age)).Delete(&model.CachedResult{})
	return res.RowsAffected, res.Error
}

func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.Model(&model.CachedResult{}).Count(&n).Error
	return n, err
}
