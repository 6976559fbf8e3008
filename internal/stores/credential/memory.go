package credential

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	creds map[string]*Credential
	mutex sync.RWMutex
}

// NewInMemoryStore creates a new in-memory credential store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		creds: make(map[string]*Credential),
	}
}

func key(userID string, service Service) string {
	return userID + "/" + string(service)
}

func copyCredential(cred *Credential) *Credential {
	c := *cred
	c.Metadata = make(Metadata, len(cred.Metadata))
	maps.Copy(c.Metadata, cred.Metadata)
	return &c
}

// Upsert stores a credential keyed by (user, service)
func (s *InMemoryStore) Upsert(ctx context.Context, cred *Credential) error {
	if cred.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if cred.Service == "" {
		return fmt.Errorf("service cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Store a copy to avoid shared references
	c := copyCredential(cred)
	c.UpdatedAt = time.Now()
	s.creds[key(cred.UserID, cred.Service)] = c
	return nil
}

// Get retrieves the credential for a (user, service) pair
func (s *InMemoryStore) Get(ctx context.Context, userID string, service Service) (*Credential, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cred, exists := s.creds[key(userID, service)]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to avoid external mutations
	return copyCredential(cred), nil
}

// List retrieves all credentials belonging to a user
func (s *InMemoryStore) List(ctx context.Context, userID string) ([]*Credential, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	creds := []*Credential{}
	for _, cred := range s.creds {
		if cred.UserID == userID {
			creds = append(creds, copyCredential(cred))
		}
	}

	return creds, nil
}

// Delete removes the credential for a (user, service) pair
func (s *InMemoryStore) Delete(ctx context.Context, userID string, service Service) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	k := key(userID, service)
	if _, exists := s.creds[k]; !exists {
		return ErrNotFound
	}

	delete(s.creds, k)
	return nil
}
