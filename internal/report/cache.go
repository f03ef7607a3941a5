package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radiusdt/vector-reports/internal/models"
)

// ReportCache is the key/value capability used to memoize assembled
// reports. Entries expire after their TTL; there is no explicit
// invalidation path, so a stale-but-unexpired entry is always trusted.
type ReportCache interface {
	Get(ctx context.Context, key string) (*models.CampaignReport, bool, error)
	Set(ctx context.Context, key string, r *models.CampaignReport, ttl time.Duration) error
}

// CacheKey derives the deterministic cache key for one report request.
// The date strings are used verbatim, no normalization: the format is
// shared with entries written by earlier deployments and must stay
// bit-identical.
func CacheKey(campaignID, startDate, endDate string) string {
	return fmt.Sprintf("report_%s_%s_%s", campaignID, startDate, endDate)
}

// =============================================
// REDIS CACHE
// =============================================

// RedisReportCache stores JSON-serialized reports in Redis with a TTL.
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache creates a Redis-backed report cache.
func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*models.CampaignReport, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached report: %w", err)
	}

	var r models.CampaignReport
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &r, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, r *models.CampaignReport, ttl time.Duration) error {
	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// =============================================
// IN-MEMORY CACHE
// =============================================

type memoryCacheEntry struct {
	report    *models.CampaignReport
	expiresAt time.Time
}

// MemoryReportCache is a process-local report cache. Used as the fallback
// when Redis is unavailable and by tests.
type MemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

// NewMemoryReportCache creates an in-memory report cache.
func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{
		entries: make(map[string]memoryCacheEntry),
	}
}

func (c *MemoryReportCache) Get(ctx context.Context, key string) (*models.CampaignReport, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.report, true, nil
}

func (c *MemoryReportCache) Set(ctx context.Context, key string, r *models.CampaignReport, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		report:    r,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
