package security_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/domain/auth"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newAuthenticator(t *testing.T, now time.Time) (*security.Authenticator, *memory.SessionStore) {
	t.Helper()
	accounts := memory.NewAccountRepository()
	sessions := memory.NewSessionStore()

	hash, err := security.BcryptHasher{Cost: 4}.Hash("s3cret")
	require.NoError(t, err)
	require.NoError(t, accounts.Save(context.Background(), &auth.Account{
		ID:           "acc-1",
		Email:        "admin@example.com",
		Name:         "Administrator",
		PasswordHash: hash,
		CreatedAt:    now,
	}))

	return &security.Authenticator{
		Accounts: accounts,
		Sessions: sessions,
		TTL:      time.Hour,
		Now:      func() time.Time { return now },
	}, sessions
}

func TestLoginIssuesSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a, _ := newAuthenticator(t, now)
	ctx := context.Background()

	session, err := a.Login(ctx, "Admin@Example.com ", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "acc-1", session.AccountID)

	got, err := a.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, session.Token, got.Token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a, _ := newAuthenticator(t, now)
	ctx := context.Background()

	_, err := a.Login(ctx, "admin@example.com", "wrong")
	require.ErrorIs(t, err, auth.ErrBadCredentials)

	// Unknown accounts answer the same way as wrong passwords.
	_, err = a.Login(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a, sessions := newAuthenticator(t, now)
	ctx := context.Background()

	session, err := a.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)

	a.Now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = a.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, auth.ErrSessionExpired)

	// Expired sessions are dropped from the store on the failed check.
	_, err = sessions.Get(ctx, session.Token)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestLogoutDeletesSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a, _ := newAuthenticator(t, now)
	ctx := context.Background()

	session, err := a.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.NoError(t, a.Logout(ctx, session.Token))

	_, err = a.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}
