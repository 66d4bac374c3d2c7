package service

import (
	"testing"
	"time"

	"vigil/core/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*AuthService, *repository.Store) {
	t.Helper()
	store := repository.OpenDegraded()
	threat := NewThreatService(store.Users, store.Events, 5, 15*time.Minute)
	auth := NewAuthService(store.Users, threat, "test-signing-secret", 30*time.Minute, 168*time.Hour)
	return auth, store
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newTestAuth(t)

	user, err := auth.Register("u@example.com", "hunter2hunter2", "Test User")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	pair, err := auth.Login("u@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, 1800, pair.ExpiresIn)

	userID, err := auth.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register("dup@example.com", "password123", "")
	require.NoError(t, err)

	_, err = auth.Register("dup@example.com", "password456", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	auth, store := newTestAuth(t)

	user, err := auth.Register("w@example.com", "password123", "")
	require.NoError(t, err)

	_, err = auth.Login("w@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := store.Users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FailedLoginCount)

	_, err = auth.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLockoutBlocksCorrectPassword(t *testing.T) {
	auth, store := newTestAuth(t)

	_, err := auth.Register("locked@example.com", "password123", "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = auth.Login("locked@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Correct password, but the lockout check runs first.
	_, err = auth.Login("locked@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// Exactly one lockout event, not one per rejected attempt.
	_, err = auth.Login("locked@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountLocked)
	events, err := store.Events.Recent("auth_lockout", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestLockoutExpires(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register("expire@example.com", "password123", "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		auth.Login("expire@example.com", "wrong-password")
	}
	_, err = auth.Login("expire@example.com", "password123")
	require.ErrorIs(t, err, ErrAccountLocked)

	// Jump past the lockout window.
	auth.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err = auth.Login("expire@example.com", "password123")
	assert.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register("out@example.com", "password123", "")
	require.NoError(t, err)
	pair, err := auth.Login("out@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.Verify(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(pair.AccessToken))

	_, err = auth.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRotates(t *testing.T) {
	auth, _ := newTestAuth(t)

	user, err := auth.Register("r@example.com", "password123", "")
	require.NoError(t, err)
	pair, err := auth.Login("r@example.com", "password123")
	require.NoError(t, err)

	next, err := auth.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	userID, err := auth.Verify(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// A refresh token is an access token nowhere.
	_, err = auth.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The rotated-out refresh token is dead.
	_, err = auth.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register("exp@example.com", "password123", "")
	require.NoError(t, err)
	pair, err := auth.Login("exp@example.com", "password123")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = auth.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser(t *testing.T) {
	auth, _ := newTestAuth(t)

	user, err := auth.Register("me@example.com", "password123", "Me Myself")
	require.NoError(t, err)
	pair, err := auth.Login("me@example.com", "password123")
	require.NoError(t, err)

	got, err := auth.CurrentUser(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Me Myself", got.FullName)

	_, err = auth.CurrentUser("garbage-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
