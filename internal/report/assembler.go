package report

import (
	"time"

	"github.com/radiusdt/vector-reports/internal/models"
)

// Assemble wraps aggregated metrics with campaign metadata and the
// generation timestamp to produce the final report.
func Assemble(metrics *models.MetricsReport, campaign *models.Campaign) *models.CampaignReport {
	return &models.CampaignReport{
		CampaignName: campaign.Name,
		CampaignID:   campaign.ID,
		Budget:       campaign.Budget,
		Metrics:      metrics,
		GeneratedAt:  time.Now().UTC(),
	}
}
