package user

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	users    map[string]*User
	sessions map[string]*Session
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory user store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:    make(map[string]*User),
		sessions: make(map[string]*Session),
	}
}

// CreateUser stores a new account
func (s *InMemoryStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}

	// Store a copy to avoid shared references
	userCopy := *u
	s.users[u.ID] = &userCopy
	return nil
}

// GetUserByEmail retrieves a user by email address
func (s *InMemoryStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByID retrieves a user by ID
func (s *InMemoryStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}

	userCopy := *u
	return &userCopy, nil
}

// CreateSession stores a new session
func (s *InMemoryStore) CreateSession(ctx context.Context, session *Session) error {
	if session.Token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	sessionCopy := *session
	s.sessions[session.Token] = &sessionCopy
	return nil
}

// GetSession retrieves a session by token, dropping expired ones
func (s *InMemoryStore) GetSession(ctx context.Context, token string) (*Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, exists := s.sessions[token]
	if !exists {
		return nil, ErrNotFound
	}

	if session.Expired() {
		delete(s.sessions, token)
		return nil, ErrNotFound
	}

	sessionCopy := *session
	return &sessionCopy, nil
}

// DeleteSession removes a session by token
func (s *InMemoryStore) DeleteSession(ctx context.Context, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, token)
	return nil
}
