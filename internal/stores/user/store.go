package user

import (
	"context"
	"errors"
	"fmt"

	gosqlmysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no user or session matches the lookup
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a signup collides with an existing email
	ErrEmailTaken = errors.New("email already registered")
)

// Store interface defines methods for user and session persistence
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// MySqlStore handles user persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new user store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return NewMySqlStoreWithDB(db)
}

// NewMySqlStoreWithDB creates a user store on an existing GORM connection
func NewMySqlStoreWithDB(db *gorm.DB) (*MySqlStore, error) {
	// Auto-migrate tables
	if err := db.AutoMigrate(&User{}, &Session{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &MySqlStore{db: db}, nil
}

// CreateUser inserts a new account row
func (s *MySqlStore) CreateUser(ctx context.Context, u *User) error {
	result := s.db.WithContext(ctx).Create(u)

	if result.Error != nil {
		// Map duplicate key violations on the email column to ErrEmailTaken
		var mysqlErr *gosqlmysql.MySQLError
		if errors.As(result.Error, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", result.Error)
	}

	return nil
}

// GetUserByEmail retrieves a user by email address
func (s *MySqlStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	result := s.db.WithContext(ctx).First(&u, "email = ?", email)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}

	return &u, nil
}

// GetUserByID retrieves a user by ID
func (s *MySqlStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	result := s.db.WithContext(ctx).First(&u, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}

	return &u, nil
}

// CreateSession inserts a new session row
func (s *MySqlStore) CreateSession(ctx context.Context, session *Session) error {
	result := s.db.WithContext(ctx).Create(session)
	if result.Error != nil {
		return fmt.Errorf("failed to create session: %w", result.Error)
	}
	return nil
}

// GetSession retrieves a session by token. Expired sessions are deleted on
// read and reported as not found
func (s *MySqlStore) GetSession(ctx context.Context, token string) (*Session, error) {
	var session Session
	result := s.db.WithContext(ctx).First(&session, "token = ?", token)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", result.Error)
	}

	if session.Expired() {
		s.db.WithContext(ctx).Delete(&session)
		return nil, ErrNotFound
	}

	return &session, nil
}

// DeleteSession removes a session by token
func (s *MySqlStore) DeleteSession(ctx context.Context, token string) error {
	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}
