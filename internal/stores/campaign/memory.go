package campaign

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	campaigns map[string]*Campaign
	analytics map[string]*Analytics
	mutex     sync.RWMutex
}

// NewInMemoryStore creates a new in-memory campaign store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		campaigns: make(map[string]*Campaign),
		analytics: make(map[string]*Analytics),
	}
}

func copyCampaign(c *Campaign) *Campaign {
	campaignCopy := *c
	campaignCopy.Channels = append(Channels{}, c.Channels...)
	return &campaignCopy
}

// Create stores a new campaign
func (s *InMemoryStore) Create(ctx context.Context, c *Campaign) error {
	if c.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if c.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.campaigns[c.ID] = copyCampaign(c)
	return nil
}

// Get retrieves a campaign by id, scoped to its owner
func (s *InMemoryStore) Get(ctx context.Context, userID, id string) (*Campaign, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, exists := s.campaigns[id]
	if !exists || c.UserID != userID {
		return nil, ErrNotFound
	}

	return copyCampaign(c), nil
}

// List retrieves all campaigns belonging to a user, newest first
func (s *InMemoryStore) List(ctx context.Context, userID string) ([]*Campaign, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	campaigns := []*Campaign{}
	for _, c := range s.campaigns {
		if c.UserID == userID {
			campaigns = append(campaigns, copyCampaign(c))
		}
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})

	return campaigns, nil
}

// Update saves every field of an existing campaign
func (s *InMemoryStore) Update(ctx context.Context, c *Campaign) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.campaigns[c.ID]; !exists {
		return ErrNotFound
	}

	c.UpdatedAt = time.Now()
	s.campaigns[c.ID] = copyCampaign(c)
	return nil
}

// Delete removes a campaign and its analytics snapshot, scoped to its owner
func (s *InMemoryStore) Delete(ctx context.Context, userID, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c, exists := s.campaigns[id]
	if !exists || c.UserID != userID {
		return ErrNotFound
	}

	delete(s.campaigns, id)
	delete(s.analytics, id)
	return nil
}

// ListByStatus retrieves campaigns across all users in a given status
func (s *InMemoryStore) ListByStatus(ctx context.Context, status Status) ([]*Campaign, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	campaigns := []*Campaign{}
	for _, c := range s.campaigns {
		if c.Status == status {
			campaigns = append(campaigns, copyCampaign(c))
		}
	}

	return campaigns, nil
}

// UpsertAnalytics inserts or replaces the analytics snapshot for a campaign
func (s *InMemoryStore) UpsertAnalytics(ctx context.Context, a *Analytics) error {
	if a.CampaignID == "" {
		return fmt.Errorf("campaign_id cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	analyticsCopy := *a
	analyticsCopy.UpdatedAt = time.Now()
	s.analytics[a.CampaignID] = &analyticsCopy
	return nil
}

// GetAnalytics retrieves the analytics snapshot for a campaign
func (s *InMemoryStore) GetAnalytics(ctx context.Context, campaignID string) (*Analytics, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	a, exists := s.analytics[campaignID]
	if !exists {
		return nil, ErrNotFound
	}

	analyticsCopy := *a
	return &analyticsCopy, nil
}

// AnalyticsCount returns the number of stored analytics rows. Test helper
// for verifying upsert idempotency
func (s *InMemoryStore) AnalyticsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.analytics)
}
