package auth_module

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/launchkite/launchkite/internal/stores/user"
)

// SessionCookie is the name of the session cookie issued on login
const SessionCookie = "launchkite_session"

// sessionTTL is how long an issued session stays valid
const sessionTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials is returned when email or password don't match
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service implements account and session management over the user store
type Service struct {
	users user.Store
}

// NewService creates an auth service
func NewService(users user.Store) *Service {
	return &Service{users: users}
}

// Signup creates a new account and an initial session
func (s *Service) Signup(ctx context.Context, email, password, name string) (*user.User, *user.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, nil, err
	}

	session, err := s.newSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return u, session, nil
}

// Login verifies credentials and issues a session
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *user.Session, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.newSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return u, session, nil
}

// Logout revokes a session token
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.users.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to a user
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	session, err := s.users.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.users.GetUserByID(ctx, session.UserID)
}

func (s *Service) newSession(ctx context.Context, userID string) (*user.Session, error) {
	session := &user.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
