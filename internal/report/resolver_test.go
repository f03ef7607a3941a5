package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-reports/internal/models"
)

// countingProfileStore records how many batch calls it receives.
type countingProfileStore struct {
	calls    int
	profiles map[string]models.UserProfile
	err      error
}

func (s *countingProfileStore) ResolveBatch(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	result := make(map[string]models.UserProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func TestResolveEmptyInputSkipsStore(t *testing.T) {
	store := &countingProfileStore{}
	r := NewIdentityResolver(store, nil, zap.NewNop())

	profiles, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, profiles)
	require.Equal(t, 0, store.calls)
}

func TestResolveSingleBatchCall(t *testing.T) {
	store := &countingProfileStore{
		profiles: map[string]models.UserProfile{
			"u1": {UserID: "u1", Country: "US"},
			"u2": {UserID: "u2", Country: "DE"},
		},
	}
	r := NewIdentityResolver(store, nil, zap.NewNop())

	profiles, err := r.Resolve(context.Background(), []string{"u1", "u2", "missing"})
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
	require.Len(t, profiles, 2)

	// Missing IDs are absent, not an error.
	_, ok := profiles["missing"]
	require.False(t, ok)
}

func TestResolveLargeBatchStillOneCall(t *testing.T) {
	known := make(map[string]models.UserProfile, 10000)
	ids := make([]string, 0, 10000)
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("u%d", i)
		known[id] = models.UserProfile{UserID: id, Country: "US"}
		ids = append(ids, id)
	}
	store := &countingProfileStore{profiles: known}
	r := NewIdentityResolver(store, nil, zap.NewNop())

	profiles, err := r.Resolve(context.Background(), ids)
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
	require.Len(t, profiles, 10000)
}

func TestResolveStoreFailure(t *testing.T) {
	store := &countingProfileStore{err: errors.New("connection refused")}
	r := NewIdentityResolver(store, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), []string{"u1"})
	require.Error(t, err)
}
