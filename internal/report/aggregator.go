package report

import (
	"github.com/radiusdt/vector-reports/internal/models"
)

// Aggregator folds the three event streams and a resolved profile mapping
// into a MetricsReport. It holds no state across calls and is safe to
// invoke concurrently for different inputs.
type Aggregator struct {
	batchSize int
}

// NewAggregator creates an aggregator. batchSize bounds the working set of
// each fold pass; partial bucket maps are merged chunk by chunk. A batch
// size of 0 folds each stream in a single pass.
func NewAggregator(batchSize int) *Aggregator {
	return &Aggregator{batchSize: batchSize}
}

// Aggregate computes totals, derived rates and the platform, daily and
// geographic breakdowns. Totals are record counts, not unique-user counts:
// repeated events from the same user all count. Any record missing a
// required field rejects the whole call; no partial report is produced.
func (a *Aggregator) Aggregate(impressions, clicks, conversions []models.EventRecord, profiles map[string]models.UserProfile) (*models.MetricsReport, error) {
	r := &models.MetricsReport{
		TotalImpressions:  int64(len(impressions)),
		TotalClicks:       int64(len(clicks)),
		TotalConversions:  int64(len(conversions)),
		PlatformBreakdown: make(map[string]*models.BreakdownBucket),
		DailyBreakdown:    make(map[string]*models.BreakdownBucket),
		GeoBreakdown:      make(map[string]*models.BreakdownBucket),
	}

	if r.TotalImpressions > 0 {
		r.CTR = float64(r.TotalClicks) / float64(r.TotalImpressions) * 100
	}
	if r.TotalClicks > 0 {
		r.ConversionRate = float64(r.TotalConversions) / float64(r.TotalClicks) * 100
	}

	// Platform and daily folds run over all three streams independently: a
	// click or conversion on a platform with no impressions still creates
	// its bucket.
	streams := []struct {
		events []models.EventRecord
		kind   models.EventKind
	}{
		{impressions, models.KindImpression},
		{clicks, models.KindClick},
		{conversions, models.KindConversion},
	}
	for _, s := range streams {
		if err := a.foldStream(r, s.events, s.kind); err != nil {
			return nil, err
		}
	}

	a.foldGeo(r.GeoBreakdown, impressions, clicks, profiles)

	return r, nil
}

// foldStream accumulates one stream into the platform and daily breakdowns,
// processing events in bounded-size chunks and merging the partial maps.
func (a *Aggregator) foldStream(r *models.MetricsReport, events []models.EventRecord, kind models.EventKind) error {
	size := a.batchSize
	if size <= 0 {
		size = len(events)
	}

	for offset := 0; offset < len(events); offset += size {
		limit := offset + size
		if limit > len(events) {
			limit = len(events)
		}

		platform := make(map[string]*models.BreakdownBucket)
		daily := make(map[string]*models.BreakdownBucket)
		for _, e := range events[offset:limit] {
			if err := e.Validate(); err != nil {
				return err
			}
			bump(platform, e.Platform, kind)
			bump(daily, e.DateKey(), kind)
		}

		mergeBuckets(r.PlatformBreakdown, platform)
		mergeBuckets(r.DailyBreakdown, daily)
	}
	return nil
}

// foldGeo attributes events to countries via the resolved profile mapping.
// Impressions whose user did not resolve are excluded silently. Clicks are
// only counted into a country bucket that already exists from the
// impressions pass, and conversions are not geo-attributed at all; existing
// report consumers depend on these exact numbers.
func (a *Aggregator) foldGeo(geo map[string]*models.BreakdownBucket, impressions, clicks []models.EventRecord, profiles map[string]models.UserProfile) {
	for _, e := range impressions {
		p, ok := profiles[e.UserID]
		if !ok || p.Country == "" {
			continue
		}
		bump(geo, p.Country, models.KindImpression)
	}

	for _, e := range clicks {
		p, ok := profiles[e.UserID]
		if !ok || p.Country == "" {
			continue
		}
		if b, ok := geo[p.Country]; ok {
			b.Clicks++
		}
	}
}

// CollectUserIDs returns the distinct user IDs referenced by the given
// events, deduplicated before the batch profile lookup.
func CollectUserIDs(events []models.EventRecord) []string {
	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		ids = append(ids, e.UserID)
	}
	return ids
}

func bump(m map[string]*models.BreakdownBucket, key string, kind models.EventKind) {
	b, ok := m[key]
	if !ok {
		b = &models.BreakdownBucket{}
		m[key] = b
	}
	switch kind {
	case models.KindImpression:
		b.Impressions++
	case models.KindClick:
		b.Clicks++
	case models.KindConversion:
		b.Conversions++
	}
}

func mergeBuckets(dst, src map[string]*models.BreakdownBucket) {
	for k, b := range src {
		if existing, ok := dst[k]; ok {
			existing.Merge(b)
		} else {
			dst[k] = b
		}
	}
}
