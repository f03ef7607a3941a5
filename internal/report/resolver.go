package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radiusdt/vector-reports/internal/geoip"
	"github.com/radiusdt/vector-reports/internal/models"
	"github.com/radiusdt/vector-reports/internal/storage"
)

// IdentityResolver maps user identifiers to user profiles. The resolution
// is a single batch round trip regardless of input size: collecting the
// full key set first and issuing one store call is what keeps wide date
// ranges from degenerating into one lookup per event.
type IdentityResolver struct {
	store  storage.ProfileStore
	geo    *geoip.Resolver
	logger *zap.Logger
}

// NewIdentityResolver creates a resolver backed by the given profile store.
// geo may be nil; when set, profiles without a stored country are
// backfilled from their last seen IP.
func NewIdentityResolver(store storage.ProfileStore, geo *geoip.Resolver, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{
		store:  store,
		geo:    geo,
		logger: logger,
	}
}

// Resolve returns the profiles for the given user IDs. An empty input
// returns an empty mapping without touching the store. IDs with no profile
// are absent from the result, never an error.
func (r *IdentityResolver) Resolve(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error) {
	if len(userIDs) == 0 {
		return map[string]models.UserProfile{}, nil
	}

	profiles, err := r.store.ResolveBatch(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user profiles: %w", err)
	}

	if r.geo != nil {
		for id, p := range profiles {
			if p.Country != "" || p.LastSeenIP == "" {
				continue
			}
			country, err := r.geo.Country(p.LastSeenIP)
			if err != nil {
				r.logger.Debug("geoip country lookup failed",
					zap.String("user_id", id),
					zap.Error(err),
				)
				continue
			}
			p.Country = country
			profiles[id] = p
		}
	}

	return profiles, nil
}
