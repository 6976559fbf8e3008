package campaign

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no campaign matches the lookup. Lookups are
// always scoped to the requesting user, so a campaign owned by someone else
// is indistinguishable from one that does not exist
var ErrNotFound = errors.New("campaign not found")

// Store interface defines methods for campaign persistence
type Store interface {
	Create(ctx context.Context, c *Campaign) error
	Get(ctx context.Context, userID, id string) (*Campaign, error)
	List(ctx context.Context, userID string) ([]*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, userID, id string) error
	ListByStatus(ctx context.Context, status Status) ([]*Campaign, error)
	UpsertAnalytics(ctx context.Context, a *Analytics) error
	GetAnalytics(ctx context.Context, campaignID string) (*Analytics, error)
}

// MySqlStore handles campaign persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new campaign store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return NewMySqlStoreWithDB(db)
}

// NewMySqlStoreWithDB creates a campaign store on an existing GORM connection
func NewMySqlStoreWithDB(db *gorm.DB) (*MySqlStore, error) {
	// Auto-migrate tables
	if err := db.AutoMigrate(&Campaign{}, &Analytics{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &MySqlStore{db: db}, nil
}

// Create inserts a new campaign row
func (s *MySqlStore) Create(ctx context.Context, c *Campaign) error {
	result := s.db.WithContext(ctx).Create(c)
	if result.Error != nil {
		return fmt.Errorf("failed to create campaign: %w", result.Error)
	}
	return nil
}

// Get retrieves a campaign by id, scoped to its owner
func (s *MySqlStore) Get(ctx context.Context, userID, id string) (*Campaign, error) {
	var c Campaign
	result := s.db.WithContext(ctx).First(&c, "id = ? AND user_id = ?", id, userID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", result.Error)
	}

	return &c, nil
}

// List retrieves all campaigns belonging to a user, newest first
func (s *MySqlStore) List(ctx context.Context, userID string) ([]*Campaign, error) {
	var campaigns []*Campaign
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&campaigns)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", result.Error)
	}

	return campaigns, nil
}

// Update saves every field of an existing campaign
func (s *MySqlStore) Update(ctx context.Context, c *Campaign) error {
	result := s.db.WithContext(ctx).Save(c)
	if result.Error != nil {
		return fmt.Errorf("failed to update campaign: %w", result.Error)
	}
	return nil
}

// Delete removes a campaign and its analytics snapshot, scoped to its owner
func (s *MySqlStore) Delete(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Campaign{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete campaign: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.db.WithContext(ctx).Where("campaign_id = ?", id).Delete(&Analytics{})
	return nil
}

// ListByStatus retrieves campaigns across all users in a given status. Used
// by the background analytics refresher
func (s *MySqlStore) ListByStatus(ctx context.Context, status Status) ([]*Campaign, error) {
	var campaigns []*Campaign
	result := s.db.WithContext(ctx).Where("status = ?", status).Find(&campaigns)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list campaigns by status: %w", result.Error)
	}

	return campaigns, nil
}

// UpsertAnalytics inserts or replaces the analytics snapshot for a campaign.
// Repeated syncs keep exactly one row per campaign id
func (s *MySqlStore) UpsertAnalytics(ctx context.Context, a *Analytics) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"emails_sent", "emails_opened", "emails_clicked",
			"open_rate", "click_rate", "bounce_rate",
			"unsubscribes", "complaints", "last_synced_at", "updated_at",
		}),
	}).Create(a)

	if result.Error != nil {
		return fmt.Errorf("failed to save analytics: %w", result.Error)
	}
	return nil
}

// GetAnalytics retrieves the analytics snapshot for a campaign
func (s *MySqlStore) GetAnalytics(ctx context.Context, campaignID string) (*Analytics, error) {
	var a Analytics
	result := s.db.WithContext(ctx).First(&a, "campaign_id = ?", campaignID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analytics: %w", result.Error)
	}

	return &a, nil
}
