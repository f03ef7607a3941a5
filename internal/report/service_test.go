package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-reports/internal/metrics"
	"github.com/radiusdt/vector-reports/internal/models"
	"github.com/radiusdt/vector-reports/internal/storage"
)

// Prometheus collectors register against the default registry once per
// test binary.
var (
	testMetrics     *metrics.Metrics
	testMetricsOnce sync.Once
)

func serviceMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("vector_reports_test")
	})
	return testMetrics
}

// countingEventSource wraps an EventSource and counts fetch calls.
type countingEventSource struct {
	inner storage.EventSource
	calls int
	err   error
}

func (s *countingEventSource) FetchEvents(ctx context.Context, campaignID string, kind models.EventKind, start, end time.Time) ([]models.EventRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.FetchEvents(ctx, campaignID, kind, start, end)
}

type serviceFixture struct {
	svc    *Service
	events *countingEventSource
}

func newTestService(t *testing.T) *serviceFixture {
	t.Helper()

	campaigns := storage.NewInMemoryCampaignRepo()
	require.NoError(t, campaigns.Upsert(context.Background(), &models.Campaign{
		ID:     "c1",
		Name:   "Summer Sale",
		Budget: 1000,
		Status: models.CampaignStatusActive,
	}))

	profiles := storage.NewInMemoryProfileStore()
	profiles.Put(models.UserProfile{UserID: "u1", Country: "US"})

	source := storage.NewInMemoryEventSource()
	source.Add(
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: day("2024-01-01"), Kind: models.KindImpression},
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: day("2024-01-02"), Kind: models.KindImpression},
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: day("2024-01-01"), Kind: models.KindClick},
	)

	events := &countingEventSource{inner: source}
	resolver := NewIdentityResolver(profiles, nil, zap.NewNop())
	svc := NewService(
		campaigns,
		events,
		resolver,
		NewMemoryReportCache(),
		NewAggregator(0),
		24*time.Hour,
		zap.NewNop(),
		serviceMetrics(),
	)

	return &serviceFixture{svc: svc, events: events}
}

func TestCampaignReportPipeline(t *testing.T) {
	f := newTestService(t)

	got, err := f.svc.CampaignReport(context.Background(), "c1", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	require.Equal(t, "Summer Sale", got.CampaignName)
	require.Equal(t, "c1", got.CampaignID)
	require.Equal(t, 1000.0, got.Budget)
	require.WithinDuration(t, time.Now().UTC(), got.GeneratedAt, 5*time.Second)

	m := got.Metrics
	require.EqualValues(t, 2, m.TotalImpressions)
	require.EqualValues(t, 1, m.TotalClicks)
	require.Equal(t, 50.0, m.CTR)
	require.Equal(t, &models.BreakdownBucket{Impressions: 2, Clicks: 1}, m.GeoBreakdown["US"])

	// One fetch per event kind.
	require.Equal(t, 3, f.events.calls)
}

func TestCampaignReportCacheHit(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	first, err := f.svc.CampaignReport(ctx, "c1", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Equal(t, 3, f.events.calls)

	// Second identical request is served from cache without recomputing.
	second, err := f.svc.CampaignReport(ctx, "c1", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Equal(t, 3, f.events.calls)
	require.Equal(t, first, second)
}

func TestCampaignReportInvalidRange(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		start, end string
	}{
		{"start after end", "2024-02-01", "2024-01-01"},
		{"bad start", "not-a-date", "2024-01-31"},
		{"bad end", "2024-01-01", "31/01/2024"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CampaignReport(ctx, "c1", tc.start, tc.end)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}

	// Rejected before any collaborator call.
	require.Equal(t, 0, f.events.calls)
}

func TestCampaignReportNotFound(t *testing.T) {
	f := newTestService(t)

	_, err := f.svc.CampaignReport(context.Background(), "missing", "2024-01-01", "2024-01-31")
	require.ErrorIs(t, err, ErrCampaignNotFound)
	require.Equal(t, 0, f.events.calls)
}

func TestCampaignReportSourceFailure(t *testing.T) {
	f := newTestService(t)
	f.events.err = errors.New("connection reset")

	_, err := f.svc.CampaignReport(context.Background(), "c1", "2024-01-01", "2024-01-31")
	require.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestCampaignReportRangeFiltersEvents(t *testing.T) {
	f := newTestService(t)

	got, err := f.svc.CampaignReport(context.Background(), "c1", "2024-01-02", "2024-01-02")
	require.NoError(t, err)

	m := got.Metrics
	require.EqualValues(t, 1, m.TotalImpressions)
	require.EqualValues(t, 0, m.TotalClicks)
	require.Equal(t, 0.0, m.CTR)
	require.Len(t, m.DailyBreakdown, 1)
}
