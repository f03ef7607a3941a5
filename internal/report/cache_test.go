package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-reports/internal/models"
)

func TestCacheKeyFormat(t *testing.T) {
	// The key format is shared with existing cached entries; the date
	// strings go in verbatim.
	require.Equal(t, "report_c1_2024-01-01_2024-01-31", CacheKey("c1", "2024-01-01", "2024-01-31"))
	require.Equal(t, CacheKey("c1", "2024-01-01", "2024-01-31"), CacheKey("c1", "2024-01-01", "2024-01-31"))
}

func testReport() *models.CampaignReport {
	return &models.CampaignReport{
		CampaignName: "Summer Sale",
		CampaignID:   "c1",
		Budget:       1000,
		Metrics: &models.MetricsReport{
			TotalImpressions: 2,
			TotalClicks:      1,
			CTR:              50,
			PlatformBreakdown: map[string]*models.BreakdownBucket{
				"web": {Impressions: 2, Clicks: 1},
			},
			DailyBreakdown: map[string]*models.BreakdownBucket{
				"2024-01-01": {Impressions: 2, Clicks: 1},
			},
			GeoBreakdown: map[string]*models.BreakdownBucket{
				"US": {Impressions: 2, Clicks: 1},
			},
		},
		GeneratedAt: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestRedisCache(t *testing.T) (*RedisReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisReportCache(client), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()
	key := CacheKey("c1", "2024-01-01", "2024-01-31")

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	want := testReport()
	require.NoError(t, cache.Set(ctx, key, want, 24*time.Hour))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	// TTL is applied on write.
	require.Equal(t, 24*time.Hour, mr.TTL(key))
}

func TestRedisCacheExpiry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()
	key := CacheKey("c1", "2024-01-01", "2024-01-31")

	require.NoError(t, cache.Set(ctx, key, testReport(), time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryReportCache()
	ctx := context.Background()
	key := CacheKey("c1", "2024-01-01", "2024-01-31")

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	want := testReport()
	require.NoError(t, cache.Set(ctx, key, want, time.Minute))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}
