package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"swiftride.org/internal/ids"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store in process memory. Used by tests and when the
// service runs without a database DSN.
type MemoryStore struct {
	users    *memUserStore
	captains *memCaptainStore
	ledger   *memLedger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    &memUserStore{byEmail: make(map[string]*User), byID: make(map[string]*User)},
		captains: &memCaptainStore{byEmail: make(map[string]*Captain), byID: make(map[string]*Captain)},
		ledger:   &memLedger{entries: make(map[string]time.Time)},
	}
}

func (s *MemoryStore) Users() UserStore         { return s.users }
func (s *MemoryStore) Captains() CaptainStore   { return s.captains }
func (s *MemoryStore) Ledger() RevocationLedger { return s.ledger }

type memUserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]*User
}

func (s *memUserStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return ErrAlreadyExists
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	stored := *u
	s.byEmail[email] = &stored
	s.byID[u.ID] = &stored
	return nil
}

func (s *memUserStore) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *stored
	u.PasswordHash = ""
	return &u, nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := *stored
	return &u, nil
}

type memCaptainStore struct {
	mu      sync.RWMutex
	byEmail map[string]*Captain
	byID    map[string]*Captain
}

func (s *memCaptainStore) Create(ctx context.Context, c *Captain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(c.Email)
	if _, ok := s.byEmail[email]; ok {
		return ErrAlreadyExists
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	now := time.Now().UTC()
	c.Email = email
	c.CreatedAt = now
	c.UpdatedAt = now
	stored := *c
	s.byEmail[email] = &stored
	s.byID[c.ID] = &stored
	return nil
}

func (s *memCaptainStore) Find(ctx context.Context, id string) (*Captain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *stored
	c.PasswordHash = ""
	return &c, nil
}

func (s *memCaptainStore) FindByEmail(ctx context.Context, email string) (*Captain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	c := *stored
	return &c, nil
}

type memLedger struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func (l *memLedger) Revoke(ctx context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[token]; ok {
		return nil
	}
	l.entries[token] = time.Now().UTC()
	return nil
}

func (l *memLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[token]
	return ok, nil
}

func (l *memLedger) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var purged int64
	for token, revokedAt := range l.entries {
		if revokedAt.Before(before) {
			delete(l.entries, token)
			purged++
		}
	}
	return purged, nil
}
