package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-reports/internal/models"
)

func TestAssemble(t *testing.T) {
	m := &models.MetricsReport{TotalImpressions: 5}
	c := &models.Campaign{ID: "c1", Name: "Summer Sale", Budget: 1000}

	got := Assemble(m, c)

	require.Equal(t, "Summer Sale", got.CampaignName)
	require.Equal(t, "c1", got.CampaignID)
	require.Equal(t, 1000.0, got.Budget)
	require.Same(t, m, got.Metrics)
	require.WithinDuration(t, time.Now().UTC(), got.GeneratedAt, 5*time.Second)
}

func TestCampaignReportFieldNames(t *testing.T) {
	// Downstream consumers depend on these exact field names.
	raw, err := json.Marshal(Assemble(&models.MetricsReport{}, &models.Campaign{ID: "c1", Name: "n"}))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, field := range []string{"campaign_name", "campaign_id", "budget", "metrics", "generated_at"} {
		require.Contains(t, doc, field)
	}
}
