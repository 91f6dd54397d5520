package memory

import (
	"context"
	"strings"
	"sync"

	domainauth "staybook/internal/domain/auth"
)

// AccountRepository keeps back-office accounts keyed by normalized email.
type AccountRepository struct {
	mu    sync.RWMutex
	items map[string]*domainauth.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{items: make(map[string]*domainauth.Account)}
}

func (r *AccountRepository) ByEmail(ctx context.Context, email string) (*domainauth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.items[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domainauth.ErrAccountNotFound
	}
	return account, nil
}

func (r *AccountRepository) Save(ctx context.Context, account *domainauth.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[strings.ToLower(strings.TrimSpace(account.Email))] = account
	return nil
}

// SessionStore keeps admin sessions in memory; restarts log everyone out.
type SessionStore struct {
	mu    sync.RWMutex
	items map[domainauth.Token]*domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[domainauth.Token]*domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Token] = session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

var (
	_ domainauth.AccountRepository = (*AccountRepository)(nil)
	_ domainauth.SessionStore      = (*SessionStore)(nil)
)
