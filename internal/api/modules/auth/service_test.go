package auth_module

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkite/launchkite/internal/stores/user"
)

func TestSignup_HashesPasswordAndIssuesSession(t *testing.T) {
	service := NewService(user.NewInMemoryStore())

	u, session, err := service.Signup(context.Background(), "ana@example.com", "hunter22", "Ana")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	service := NewService(user.NewInMemoryStore())

	_, _, err := service.Signup(context.Background(), "ana@example.com", "hunter22", "Ana")
	require.NoError(t, err)

	_, _, err = service.Signup(context.Background(), "ana@example.com", "other-pass", "Ana Again")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	service := NewService(user.NewInMemoryStore())

	_, _, err := service.Signup(context.Background(), "ana@example.com", "hunter22", "Ana")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		u, session, err := service.Login(context.Background(), "ana@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", u.Email)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := service.Login(context.Background(), "ana@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		// Unknown accounts and wrong passwords are indistinguishable
		_, _, err := service.Login(context.Background(), "nobody@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticate(t *testing.T) {
	store := user.NewInMemoryStore()
	service := NewService(store)

	u, session, err := service.Signup(context.Background(), "ana@example.com", "hunter22", "Ana")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		got, err := service.Authenticate(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := service.Authenticate(context.Background(), "bogus")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &user.Session{
			Token:     "expired-token",
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, store.CreateSession(context.Background(), expired))

		_, err := service.Authenticate(context.Background(), "expired-token")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestLogout_RevokesSession(t *testing.T) {
	service := NewService(user.NewInMemoryStore())

	_, session, err := service.Signup(context.Background(), "ana@example.com", "hunter22", "Ana")
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.Token))

	_, err = service.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
