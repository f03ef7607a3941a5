package storage

import (
	"context"
	"time"

	"github.com/radiusdt/vector-reports/internal/models"
)

// =============================================
// EVENT SOURCE
// =============================================

// EventSource supplies the raw per-event records for a campaign and an
// inclusive date range, one call per event kind. Each call returns all
// matching rows for the range; pagination is not a concern of this layer.
type EventSource interface {
	FetchEvents(ctx context.Context, campaignID string, kind models.EventKind, start, end time.Time) ([]models.EventRecord, error)
}

// =============================================
// PROFILE STORE
// =============================================

// ProfileStore resolves user identifiers to user profiles in a single
// round trip. Identifiers with no profile are simply absent from the
// result, never an error.
type ProfileStore interface {
	ResolveBatch(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error)
}

// =============================================
// CAMPAIGN REPOSITORY
// =============================================

// CampaignRepo defines operations for campaign storage.
type CampaignRepo interface {
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	ListAll(ctx context.Context) ([]*models.Campaign, error)
	Upsert(ctx context.Context, c *models.Campaign) error
}
