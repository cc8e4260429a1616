package grants

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory for single-node
// deployments and tests. Expiry is checked lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	refresh map[string]entry // principal id -> fingerprint
	resets  map[string]entry // token -> principal id
	byOwner map[string]string
	verify  map[string]entry // email -> code

	// now is a clock override for tests.
	now func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) live(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		refresh: make(map[string]entry),
		resets:  make(map[string]entry),
		byOwner: make(map[string]string),
		verify:  make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) SetRefresh(
	_ context.Context,
	principalID, fingerprint string,
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[principalID] = entry{value: fingerprint, expiresAt: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) GetRefresh(_ context.Context, principalID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.refresh[principalID]
	if !ok || !e.live(s.now()) {
		delete(s.refresh, principalID)
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) DeleteRefresh(_ context.Context, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, principalID)
	return nil
}

func (s *MemoryStore) SetReset(
	_ context.Context,
	principalID, token string,
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byOwner[principalID]; ok {
		delete(s.resets, prev)
	}
	s.resets[token] = entry{value: principalID, expiresAt: s.expiry(ttl)}
	s.byOwner[principalID] = token
	return nil
}

func (s *MemoryStore) ConsumeReset(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.resets[token]
	delete(s.resets, token)
	if !ok || !e.live(s.now()) {
		return "", ErrNotFound
	}

	delete(s.byOwner, e.value)
	return e.value, nil
}

func (s *MemoryStore) SetVerification(
	_ context.Context,
	email, code string,
	ttl time.Duration,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verify[email] = entry{value: code, expiresAt: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) GetVerification(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.verify[email]
	if !ok || !e.live(s.now()) {
		delete(s.verify, email)
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) DeleteVerification(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verify, email)
	return nil
}
