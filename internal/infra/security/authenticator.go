package security

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/auth"
)

// Authenticator implements bearer-token admin auth: bcrypt credential check
// on login, opaque random tokens, TTL-bound sessions in the session store.
type Authenticator struct {
	Accounts auth.AccountRepository
	Sessions auth.SessionStore
	Hasher   BcryptHasher
	Tokens   RandomTokenGenerator
	TTL      time.Duration
	Now      func() time.Time
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	account, err := a.Accounts.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			return nil, auth.ErrBadCredentials
		}
		return nil, err
	}
	if err := a.Hasher.Compare(account.PasswordHash, password); err != nil {
		return nil, auth.ErrBadCredentials
	}
	token, err := a.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := auth.NewSession(token, account.ID, a.TTL, a.now())
	if err != nil {
		return nil, err
	}
	if err := a.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Authenticate resolves a bearer token to a live session. Expired sessions
// are removed as a side effect.
func (a *Authenticator) Authenticate(ctx context.Context, token auth.Token) (*auth.Session, error) {
	session, err := a.Sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(a.now()) {
		_ = a.Sessions.Delete(ctx, token)
		return nil, auth.ErrSessionExpired
	}
	return session, nil
}

func (a *Authenticator) Logout(ctx context.Context, token auth.Token) error {
	return a.Sessions.Delete(ctx, token)
}

func (a *Authenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
