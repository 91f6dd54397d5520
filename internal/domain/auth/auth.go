package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
	ErrSessionExpired  = errors.New("auth: session expired")
	ErrBadCredentials  = errors.New("auth: invalid email or password")
	ErrAccountNotFound = errors.New("auth: account not found")
)

// Account is a back-office operator. The public funnel needs no account at
// all; only admin routes authenticate.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

type AccountRepository interface {
	ByEmail(ctx context.Context, email string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

type Token string

type Session struct {
	Token     Token
	AccountID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
}

func NewSession(token Token, accountID string, ttl time.Duration, now time.Time) (*Session, error) {
	if strings.TrimSpace(string(token)) == "" {
		return nil, ErrTokenRequired
	}
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrUserRequired
	}
	if ttl <= 0 {
		return nil, ErrTTLInvalid
	}
	now = now.UTC()
	return &Session{
		Token:     token,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at.UTC())
}
