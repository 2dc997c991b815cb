package store

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
)

type memoryEntry struct {
	fields    map[string]string
	value     *string
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a thread-safe in-memory implementation of the Store interface.
// Expired entries are evicted lazily on access or by DeleteExpired.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests to drive expiry.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// live returns the entry at key, evicting it when expired. Callers hold s.mu.
func (s *MemoryStore) live(key string) (*memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e, true
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.live(key)
	return ok, nil
}

func (s *MemoryStore) GetMultiple(_ context.Context, key string, fields ...string) ([]*string, error) {
	if key == "" {
		return nil, apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values := make([]*string, len(fields))
	e, ok := s.live(key)
	if !ok {
		return values, nil
	}
	for i, field := range fields {
		if v, found := e.fields[field]; found {
			values[i] = &v
		}
	}
	return values, nil
}

func (s *MemoryStore) SetMultiple(_ context.Context, key string, fieldValues ...string) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}
	if len(fieldValues)%2 != 0 {
		return apperrors.ErrOddFieldValues
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		e = &memoryEntry{}
		s.entries[key] = e
	}
	if e.fields == nil {
		e.fields = make(map[string]string, len(fieldValues)/2)
	}
	for i := 0; i < len(fieldValues); i += 2 {
		e.fields[fieldValues[i]] = fieldValues[i+1]
	}
	return nil
}

func (s *MemoryStore) SetSingle(_ context.Context, key, value string) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Matches SET semantics: a plain write replaces the entry and clears any TTL.
	s.entries[key] = &memoryEntry{value: &value}
	return nil
}

func (s *MemoryStore) GetSingle(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok || e.value == nil {
		return "", false, nil
	}
	return *e.value, true, nil
}

func (s *MemoryStore) Take(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok || e.value == nil {
		return "", false, nil
	}
	delete(s.entries, key)
	return *e.value, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}
	e.expiresAt = s.now().Add(ttl)
	return nil
}

// DeleteExpired removes every entry whose TTL has elapsed and returns how many were removed.
func (s *MemoryStore) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, including ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
