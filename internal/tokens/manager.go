// Package tokens implements the credential token lifecycle: it hands out
// valid access tokens for integration calls, refreshing expiring OAuth
// tokens just ahead of their expiry and persisting the replacement
package tokens

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/launchkite/launchkite/internal/secrets"
	"github.com/launchkite/launchkite/internal/stores/credential"
)

// refreshThreshold is how close to expiry a token may get before it is
// refreshed preemptively
const refreshThreshold = 5 * time.Minute

var (
	// ErrNotConnected is returned when the user has no credential for the
	// requested service
	ErrNotConnected = errors.New("service not connected")

	// ErrRefreshFailed is returned when a refresh exchange fails. Callers
	// must treat the service as disconnected and prompt reconnection; there
	// is no retry loop
	ErrRefreshFailed = errors.New("token refresh failed")
)

// RefreshResult is the replacement credential returned by a refresh exchange
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Refresher exchanges a refresh token for a replacement access token at the
// provider's token endpoint
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

// RefresherFunc adapts a function to the Refresher interface
type RefresherFunc func(ctx context.Context, refreshToken string) (*RefreshResult, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	return f(ctx, refreshToken)
}

// Manager decides whether a stored token is still usable and refreshes it
// when it is not. There is deliberately no locking around the
// read-check-refresh-write sequence: two calls racing near expiry may both
// refresh, and the second write wins
type Manager struct {
	store      credential.Store
	box        *secrets.Box
	refreshers map[credential.Service]Refresher
}

// NewManager creates a token lifecycle manager over the credential store
func NewManager(store credential.Store, box *secrets.Box) *Manager {
	return &Manager{
		store:      store,
		box:        box,
		refreshers: make(map[credential.Service]Refresher),
	}
}

// RegisterRefresher attaches the refresh exchange for a service issuing
// expiring tokens
func (m *Manager) RegisterRefresher(service credential.Service, r Refresher) {
	m.refreshers[service] = r
}

// SaveSecret encrypts a plaintext secret and upserts the credential row.
// Connect and reconnect flows go through here
func (m *Manager) SaveSecret(ctx context.Context, cred *credential.Credential, plaintext string) error {
	sealed, err := m.box.Seal(plaintext)
	if err != nil {
		return fmt.Errorf("failed to seal secret: %w", err)
	}

	cred.Secret = sealed
	return m.store.Upsert(ctx, cred)
}

// GetValidToken returns a usable access token for (user, service)
func (m *Manager) GetValidToken(ctx context.Context, userID string, service credential.Service) (string, error) {
	token, _, err := m.Resolve(ctx, userID, service)
	return token, err
}

// Resolve returns a usable access token plus the credential metadata for
// (user, service). Non-expiring secrets come back unchanged; an expiring
// token within the refresh threshold is exchanged and persisted first
func (m *Manager) Resolve(ctx context.Context, userID string, service credential.Service) (string, credential.Metadata, error) {
	cred, err := m.store.Get(ctx, userID, service)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return "", nil, ErrNotConnected
		}
		return "", nil, err
	}

	secret, err := m.box.Open(cred.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open stored secret: %w", err)
	}

	expiresAt, expiring := parseExpiry(cred.Metadata)
	if !expiring {
		return secret, cred.Metadata, nil
	}

	if time.Until(expiresAt) >= refreshThreshold {
		// Still comfortably valid; no side effects
		return secret, cred.Metadata, nil
	}

	refreshed, err := m.refresh(ctx, cred)
	if err != nil {
		return "", nil, err
	}

	return refreshed.AccessToken, cred.Metadata, nil
}

// refresh performs one refresh exchange and persists the result
func (m *Manager) refresh(ctx context.Context, cred *credential.Credential) (*RefreshResult, error) {
	refresher, ok := m.refreshers[cred.Service]
	if !ok {
		return nil, fmt.Errorf("%w: no refresher registered for %s", ErrRefreshFailed, cred.Service)
	}

	refreshToken := cred.Metadata[credential.MetaRefreshToken]
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token stored for %s", ErrRefreshFailed, cred.Service)
	}

	result, err := refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	cred.Metadata[credential.MetaRefreshToken] = result.RefreshToken
	cred.Metadata[credential.MetaExpiresAt] = result.ExpiresAt.Format(time.RFC3339)

	if err := m.SaveSecret(ctx, cred, result.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	log.Printf("[TOKENS]: Refreshed %s token for user %s", cred.Service, cred.UserID)
	return result, nil
}

// parseExpiry reads the expiry from credential metadata. Credentials without
// an expires_at entry never expire
func parseExpiry(meta credential.Metadata) (time.Time, bool) {
	raw, ok := meta[credential.MetaExpiresAt]
	if !ok || raw == "" {
		return time.Time{}, false
	}

	expiresAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Unparseable expiry is treated as expired so the next call repairs
		// the record through a refresh
		return time.Time{}, true
	}

	return expiresAt, true
}
