package storage

import (
	"context"
	"sync"
	"time"

	"github.com/radiusdt/vector-reports/internal/models"
)

// =============================================
// IN-MEMORY EVENT SOURCE
// =============================================

// InMemoryEventSource provides in-memory storage for events. Used as the
// no-database fallback and by tests.
type InMemoryEventSource struct {
	mu     sync.RWMutex
	events []models.EventRecord
}

// NewInMemoryEventSource creates a new in-memory event source.
func NewInMemoryEventSource() *InMemoryEventSource {
	return &InMemoryEventSource{}
}

// Add stores event records.
func (s *InMemoryEventSource) Add(events ...models.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

// FetchEvents returns all records of the given kind for the campaign whose
// date falls inside [start, end] (inclusive).
func (s *InMemoryEventSource) FetchEvents(ctx context.Context, campaignID string, kind models.EventKind, start, end time.Time) ([]models.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := end.AddDate(0, 0, 1)

	result := make([]models.EventRecord, 0)
	for _, e := range s.events {
		if e.CampaignID != campaignID || e.Kind != kind {
			continue
		}
		if e.Date.Before(start) || !e.Date.Before(cutoff) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// =============================================
// IN-MEMORY PROFILE STORE
// =============================================

// InMemoryProfileStore provides in-memory storage for user profiles.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

// NewInMemoryProfileStore creates a new in-memory profile store.
func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		profiles: make(map[string]models.UserProfile),
	}
}

// Put stores a profile.
func (s *InMemoryProfileStore) Put(p models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

// ResolveBatch returns the profiles for the given IDs in one pass. IDs
// without a profile are absent from the result.
func (s *InMemoryProfileStore) ResolveBatch(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]models.UserProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

// =============================================
// IN-MEMORY CAMPAIGN REPOSITORY
// =============================================

// InMemoryCampaignRepo provides in-memory storage for campaigns.
type InMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
}

// NewInMemoryCampaignRepo creates a new in-memory campaign repository.
func NewInMemoryCampaignRepo() *InMemoryCampaignRepo {
	return &InMemoryCampaignRepo{
		campaigns: make(map[string]*models.Campaign),
	}
}

func (r *InMemoryCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCampaignRepo) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (r *InMemoryCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}
