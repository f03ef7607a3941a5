package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-reports/internal/metrics"
	"github.com/radiusdt/vector-reports/internal/models"
	"github.com/radiusdt/vector-reports/internal/storage"
)

const dateLayout = "2006-01-02"

// Service runs the report pipeline: validate the range, look up the
// campaign, consult the cache, and on a miss fetch the event streams,
// resolve user profiles in one batch, aggregate and assemble.
//
// Concurrent requests for the same uncached key may both recompute and
// both write; each write is a full overwrite of one key with a
// self-consistent value, so last write wins.
type Service struct {
	campaigns storage.CampaignRepo
	events    storage.EventSource
	resolver  *IdentityResolver
	cache     ReportCache
	agg       *Aggregator
	ttl       time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewService constructs the report service.
func NewService(
	campaigns storage.CampaignRepo,
	events storage.EventSource,
	resolver *IdentityResolver,
	cache ReportCache,
	agg *Aggregator,
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		campaigns: campaigns,
		events:    events,
		resolver:  resolver,
		cache:     cache,
		agg:       agg,
		ttl:       ttl,
		logger:    logger,
		metrics:   m,
	}
}

// CampaignReport returns the aggregated report for a campaign over an
// inclusive date range. Dates are the caller-supplied strings; they feed
// the cache key verbatim and must parse as YYYY-MM-DD with start <= end.
func (s *Service) CampaignReport(ctx context.Context, campaignID, startDate, endDate string) (*models.CampaignReport, error) {
	begin := time.Now()

	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		s.metrics.ReportRequests.WithLabelValues("invalid_range").Inc()
		return nil, err
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		s.metrics.ReportRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: campaign lookup: %v", ErrSourceUnavailable, err)
	}
	if campaign == nil {
		s.metrics.ReportRequests.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, campaignID)
	}

	key := CacheKey(campaignID, startDate, endDate)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		// A broken cache degrades to recomputation, it does not fail the
		// request.
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		s.metrics.CacheHits.Inc()
		s.metrics.ReportRequests.WithLabelValues("hit").Inc()
		return cached, nil
	}
	s.metrics.CacheMisses.Inc()

	result, err := s.compute(ctx, campaign, start, end)
	if err != nil {
		s.metrics.ReportRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}

	s.metrics.ReportRequests.WithLabelValues("computed").Inc()
	s.metrics.ReportDuration.Observe(time.Since(begin).Seconds())

	s.logger.Info("campaign report generated",
		zap.String("campaign_id", campaignID),
		zap.String("start_date", startDate),
		zap.String("end_date", endDate),
		zap.Int64("impressions", result.Metrics.TotalImpressions),
		zap.Int64("clicks", result.Metrics.TotalClicks),
		zap.Int64("conversions", result.Metrics.TotalConversions),
		zap.Duration("took", time.Since(begin)),
	)

	return result, nil
}

func (s *Service) compute(ctx context.Context, campaign *models.Campaign, start, end time.Time) (*models.CampaignReport, error) {
	impressions, err := s.fetch(ctx, campaign.ID, models.KindImpression, start, end)
	if err != nil {
		return nil, err
	}
	clicks, err := s.fetch(ctx, campaign.ID, models.KindClick, start, end)
	if err != nil {
		return nil, err
	}
	conversions, err := s.fetch(ctx, campaign.ID, models.KindConversion, start, end)
	if err != nil {
		return nil, err
	}

	// Geographic attribution only considers users seen in the impressions
	// stream; their IDs are collected and resolved in one batch call.
	userIDs := CollectUserIDs(impressions)
	s.metrics.ProfileBatchSize.Observe(float64(len(userIDs)))

	profiles, err := s.resolver.Resolve(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	aggBegin := time.Now()
	metricsReport, err := s.agg.Aggregate(impressions, clicks, conversions, profiles)
	if err != nil {
		return nil, err
	}
	s.metrics.AggregationDuration.Observe(time.Since(aggBegin).Seconds())

	return Assemble(metricsReport, campaign), nil
}

func (s *Service) fetch(ctx context.Context, campaignID string, kind models.EventKind, start, end time.Time) ([]models.EventRecord, error) {
	events, err := s.events.FetchEvents(ctx, campaignID, kind, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s events: %v", ErrSourceUnavailable, kind, err)
	}
	s.metrics.EventsFetched.WithLabelValues(string(kind)).Add(float64(len(events)))
	return events, nil
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q", ErrInvalidRange, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q", ErrInvalidRange, endDate)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s after end %s", ErrInvalidRange, startDate, endDate)
	}
	return start, end, nil
}
