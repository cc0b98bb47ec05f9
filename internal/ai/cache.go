package ai

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// CachedAnalysis is the last accepted analysis of a user.
type CachedAnalysis struct {
	Result    AnalysisResult `json:"result"`
	Engine    Engine         `json:"engine"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
}

// ResultCache keeps one analysis per user for a limited time.
type ResultCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewResultCache(maxUsers int64, ttl time.Duration) (*ResultCache, error) {
	if maxUsers <= 0 {
		maxUsers = 10000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxUsers * 10,
		MaxCost:     maxUsers,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &ResultCache{cache: cache, ttl: ttl}, nil
}

// Get returns the cached analysis of a user.
func (c *ResultCache) Get(userID uuid.UUID) (CachedAnalysis, bool) {
	value, ok := c.cache.Get(userID.String())
	if !ok {
		return CachedAnalysis{}, false
	}
	entry, ok := value.(CachedAnalysis)
	return entry, ok
}

// Set replaces the cached analysis of a user.
func (c *ResultCache) Set(userID uuid.UUID, entry CachedAnalysis) {
	c.cache.SetWithTTL(userID.String(), entry, 1, c.ttl)
	c.cache.Wait()
}

func (c *ResultCache) Invalidate(userID uuid.UUID) {
	c.cache.Del(userID.String())
}

func (c *ResultCache) Close() {
	c.cache.Close()
}
