package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-reports/internal/models"
)

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestInMemoryEventSourceFiltering(t *testing.T) {
	s := NewInMemoryEventSource()
	s.Add(
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: date("2024-01-01"), Kind: models.KindImpression},
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: date("2024-01-15"), Kind: models.KindImpression},
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: date("2024-02-01"), Kind: models.KindImpression},
		models.EventRecord{CampaignID: "c1", UserID: "u1", Platform: "web", Date: date("2024-01-15"), Kind: models.KindClick},
		models.EventRecord{CampaignID: "c2", UserID: "u1", Platform: "web", Date: date("2024-01-15"), Kind: models.KindImpression},
	)
	ctx := context.Background()

	// Range bounds are inclusive; other campaigns and kinds are excluded.
	events, err := s.FetchEvents(ctx, "c1", models.KindImpression, date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)
	require.Len(t, events, 2)

	events, err = s.FetchEvents(ctx, "c1", models.KindImpression, date("2024-02-01"), date("2024-02-01"))
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = s.FetchEvents(ctx, "c1", models.KindConversion, date("2024-01-01"), date("2024-12-31"))
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestInMemoryProfileStoreResolveBatch(t *testing.T) {
	s := NewInMemoryProfileStore()
	s.Put(models.UserProfile{UserID: "u1", Country: "US"})
	s.Put(models.UserProfile{UserID: "u2", Country: "DE"})

	profiles, err := s.ResolveBatch(context.Background(), []string{"u1", "u3"})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Equal(t, "US", profiles["u1"].Country)

	profiles, err = s.ResolveBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, profiles)
}

func TestInMemoryCampaignRepo(t *testing.T) {
	r := NewInMemoryCampaignRepo()
	ctx := context.Background()

	c, err := r.GetByID(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, c)

	require.NoError(t, r.Upsert(ctx, &models.Campaign{ID: "c1", Name: "First", Budget: 100}))

	c, err = r.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "First", c.Name)

	// Mutating the returned copy must not affect the stored campaign.
	c.Name = "changed"
	again, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "First", again.Name)
}
