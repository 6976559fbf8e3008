package tokens

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkite/launchkite/internal/secrets"
	"github.com/launchkite/launchkite/internal/stores/credential"
)

const testKey = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

// countingStore wraps the in-memory store and counts writes
type countingStore struct {
	*credential.InMemoryStore
	upserts int
}

func (s *countingStore) Upsert(ctx context.Context, cred *credential.Credential) error {
	s.upserts++
	return s.InMemoryStore.Upsert(ctx, cred)
}

// fakeRefresher records refresh calls and returns a canned result or error
type fakeRefresher struct {
	calls  int
	result *RefreshResult
	err    error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestManager(t *testing.T) (*Manager, *countingStore, *secrets.Box) {
	t.Helper()

	box, err := secrets.NewBox(testKey)
	require.NoError(t, err)

	store := &countingStore{InMemoryStore: credential.NewInMemoryStore()}
	return NewManager(store, box), store, box
}

// seedCredential stores an encrypted credential directly
func seedCredential(t *testing.T, store credential.Store, box *secrets.Box, userID string, service credential.Service, secret string, meta credential.Metadata) {
	t.Helper()

	sealed, err := box.Seal(secret)
	require.NoError(t, err)

	err = store.Upsert(context.Background(), &credential.Credential{
		UserID:   userID,
		Service:  service,
		Secret:   sealed,
		Metadata: meta,
	})
	require.NoError(t, err)
}

func TestGetValidToken_NotConnected(t *testing.T) {
	manager, _, _ := newTestManager(t)

	_, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceCanva)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGetValidToken_NonExpiringSecret(t *testing.T) {
	manager, store, box := newTestManager(t)
	seedCredential(t, store, box, "user-1", credential.ServiceMailchimp, "mc-api-key", credential.Metadata{
		credential.MetaServerPrefix: "us1",
	})
	store.upserts = 0

	token, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceMailchimp)
	require.NoError(t, err)
	assert.Equal(t, "mc-api-key", token)
	assert.Equal(t, 0, store.upserts, "non-expiring lookup must not write")
}

func TestGetValidToken_FreshTokenReturnedUnchanged(t *testing.T) {
	manager, store, box := newTestManager(t)

	refresher := &fakeRefresher{}
	manager.RegisterRefresher(credential.ServiceCanva, refresher)

	seedCredential(t, store, box, "user-1", credential.ServiceCanva, "canva-access", credential.Metadata{
		credential.MetaRefreshToken: "canva-refresh",
		credential.MetaExpiresAt:    time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	store.upserts = 0

	token, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceCanva)
	require.NoError(t, err)
	assert.Equal(t, "canva-access", token)
	assert.Equal(t, 0, refresher.calls, "fresh token must not trigger a refresh")
	assert.Equal(t, 0, store.upserts, "fresh token lookup must not write")
}

func TestGetValidToken_NearExpiryRefreshesOnceAndPersists(t *testing.T) {
	manager, store, box := newTestManager(t)

	newExpiry := time.Now().Add(4 * time.Hour).Truncate(time.Second)
	refresher := &fakeRefresher{result: &RefreshResult{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresAt:    newExpiry,
	}}
	manager.RegisterRefresher(credential.ServiceCanva, refresher)

	// Four minutes remaining is inside the five minute threshold
	seedCredential(t, store, box, "user-1", credential.ServiceCanva, "old-access", credential.Metadata{
		credential.MetaRefreshToken: "old-refresh",
		credential.MetaExpiresAt:    time.Now().Add(4 * time.Minute).Format(time.RFC3339),
	})
	store.upserts = 0

	token, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceCanva)
	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, refresher.calls, "exactly one refresh exchange")
	assert.Equal(t, 1, store.upserts, "refresh result must be persisted")

	// The stored credential now carries the replacement token and expiry
	cred, err := store.Get(context.Background(), "user-1", credential.ServiceCanva)
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", cred.Metadata[credential.MetaRefreshToken])
	assert.Equal(t, newExpiry.Format(time.RFC3339), cred.Metadata[credential.MetaExpiresAt])

	opened, err := box.Open(cred.Secret)
	require.NoError(t, err)
	assert.Equal(t, "new-access", opened)
}

func TestGetValidToken_RefreshFailure(t *testing.T) {
	manager, store, box := newTestManager(t)

	refresher := &fakeRefresher{err: fmt.Errorf("invalid_grant")}
	manager.RegisterRefresher(credential.ServiceCanva, refresher)

	seedCredential(t, store, box, "user-1", credential.ServiceCanva, "old-access", credential.Metadata{
		credential.MetaRefreshToken: "revoked-refresh",
		credential.MetaExpiresAt:    time.Now().Add(time.Minute).Format(time.RFC3339),
	})

	_, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceCanva)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Equal(t, 1, refresher.calls)
}

func TestGetValidToken_MissingRefreshToken(t *testing.T) {
	manager, store, box := newTestManager(t)
	manager.RegisterRefresher(credential.ServiceCanva, &fakeRefresher{})

	seedCredential(t, store, box, "user-1", credential.ServiceCanva, "old-access", credential.Metadata{
		credential.MetaExpiresAt: time.Now().Add(time.Minute).Format(time.RFC3339),
	})

	_, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceCanva)
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestGetValidToken_UnparseableExpiryTreatedAsExpired(t *testing.T) {
	manager, store, box := newTestManager(t)

	refresher := &fakeRefresher{result: &RefreshResult{
		AccessToken:  "repaired-access",
		RefreshToken: "repaired-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}}
	manager.RegisterRefresher(credential.ServiceCanva, refresher)

	seedCredential(t, store, box, "user-1", credential.ServiceCanva, "old-access", credential.Metadata{
		credential.MetaRefreshToken: "old-refresh",
		credential.MetaExpiresAt:    "not-a-timestamp",
	})

	token, err := manager.GetValidToken(context.Background(), "user-1", credential.ServiceCanva)
	require.NoError(t, err)
	assert.Equal(t, "repaired-access", token)
	assert.Equal(t, 1, refresher.calls)
}

func TestSaveSecret_EncryptsAtRest(t *testing.T) {
	manager, store, box := newTestManager(t)

	err := manager.SaveSecret(context.Background(), &credential.Credential{
		UserID:   "user-1",
		Service:  credential.ServiceNotion,
		Metadata: credential.Metadata{credential.MetaDatabaseID: "db-1"},
	}, "notion-secret")
	require.NoError(t, err)

	cred, err := store.Get(context.Background(), "user-1", credential.ServiceNotion)
	require.NoError(t, err)
	assert.NotEqual(t, "notion-secret", cred.Secret, "secret must not be stored in plaintext")

	opened, err := box.Open(cred.Secret)
	require.NoError(t, err)
	assert.Equal(t, "notion-secret", opened)
}

func TestRefresherFunc(t *testing.T) {
	called := false
	var r Refresher = RefresherFunc(func(ctx context.Context, refreshToken string) (*RefreshResult, error) {
		called = true
		assert.Equal(t, "rt", refreshToken)
		return nil, errors.New("boom")
	})

	_, err := r.Refresh(context.Background(), "rt")
	assert.Error(t, err)
	assert.True(t, called)
}
