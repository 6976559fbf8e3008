package credential

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no credential exists for a (user, service) pair
var ErrNotFound = errors.New("credential not found")

// Store interface defines methods for credential persistence
type Store interface {
	Upsert(ctx context.Context, cred *Credential) error
	Get(ctx context.Context, userID string, service Service) (*Credential, error)
	List(ctx context.Context, userID string) ([]*Credential, error)
	Delete(ctx context.Context, userID string, service Service) error
}

// MySqlStore handles credential persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new credential store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return NewMySqlStoreWithDB(db)
}

// NewMySqlStoreWithDB creates a credential store on an existing GORM connection
func NewMySqlStoreWithDB(db *gorm.DB) (*MySqlStore, error) {
	// Auto-migrate tables
	if err := db.AutoMigrate(&Credential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &MySqlStore{db: db}, nil
}

// Upsert creates a credential or replaces the secret and metadata of an
// existing (user, service) row. Connect and refresh flows both go through here
func (s *MySqlStore) Upsert(ctx context.Context, cred *Credential) error {
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "service"}},
		DoUpdates: clause.AssignmentColumns([]string{"secret", "metadata", "updated_at"}),
	}).Create(cred)

	if result.Error != nil {
		return fmt.Errorf("failed to save credential: %w", result.Error)
	}
	return nil
}

// Get retrieves the credential for a (user, service) pair
func (s *MySqlStore) Get(ctx context.Context, userID string, service Service) (*Credential, error) {
	var cred Credential
	result := s.db.WithContext(ctx).First(&cred, "user_id = ? AND service = ?", userID, service)

	if result.Error != nil {
		// Handle not found error
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		// Handle generic errors
		return nil, fmt.Errorf("failed to get credential: %w", result.Error)
	}

	return &cred, nil
}

// List retrieves all credentials belonging to a user
func (s *MySqlStore) List(ctx context.Context, userID string) ([]*Credential, error) {
	var creds []*Credential
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("service ASC").Find(&creds)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", result.Error)
	}

	return creds, nil
}

// Delete removes the credential for a (user, service) pair
func (s *MySqlStore) Delete(ctx context.Context, userID string, service Service) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND service = ?", userID, service).Delete(&Credential{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
