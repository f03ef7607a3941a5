package models

import "time"

// BreakdownBucket accumulates event counts for one key of a breakdown
// dimension (platform value, calendar date, or country).
type BreakdownBucket struct {
	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`
}

// Merge adds the counts of other into b. Used when folding events in
// bounded batches.
func (b *BreakdownBucket) Merge(other *BreakdownBucket) {
	b.Impressions += other.Impressions
	b.Clicks += other.Clicks
	b.Conversions += other.Conversions
}

// MetricsReport holds the aggregated performance metrics for one campaign
// over one date range. Treated as immutable once returned by the aggregator.
type MetricsReport struct {
	TotalImpressions int64 `json:"total_impressions"`
	TotalClicks      int64 `json:"total_clicks"`
	TotalConversions int64 `json:"total_conversions"`

	// CTR and ConversionRate are percentages. Both are 0 when their
	// denominator is 0; neither is capped at 100.
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`

	PlatformBreakdown map[string]*BreakdownBucket `json:"platform_breakdown"`
	DailyBreakdown    map[string]*BreakdownBucket `json:"daily_breakdown"`
	GeoBreakdown      map[string]*BreakdownBucket `json:"geo_breakdown"`
}

// CampaignReport is the final deliverable: the aggregated metrics wrapped
// with campaign metadata and a generation timestamp. The JSON field names
// are fixed for downstream consumers.
type CampaignReport struct {
	CampaignName string         `json:"campaign_name"`
	CampaignID   string         `json:"campaign_id"`
	Budget       float64        `json:"budget"`
	Metrics      *MetricsReport `json:"metrics"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
