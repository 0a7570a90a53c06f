// Package store holds checkout session stores.
package store

import (
	"context"
	"sync"
	"time"

	"farmshop/internal/checkout"
	"farmshop/pkg/platform/sentinel"
)

type entry struct {
	session   checkout.Session
	expiresAt time.Time
}

// InMemoryStore mirrors the Redis store's TTL by expiring entries on read.
type InMemoryStore struct {
	mu   sync.Mutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string]entry),
		ttl:  SessionTTL,
		now:  time.Now,
	}
}

// WithTTL overrides SessionTTL. Non-positive values are ignored.
func (s *InMemoryStore) WithTTL(ttl time.Duration) *InMemoryStore {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func (s *InMemoryStore) Get(_ context.Context, key string) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.data, key)
		return nil, sentinel.ErrNotFound
	}
	sess := e.session
	if sess.JustCompleted != nil {
		done := *sess.JustCompleted
		sess.JustCompleted = &done
	}
	return &sess, nil
}

func (s *InMemoryStore) Save(_ context.Context, key string, sess *checkout.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	if sess.JustCompleted != nil {
		done := *sess.JustCompleted
		copied.JustCompleted = &done
	}
	s.data[key] = entry{session: copied, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
