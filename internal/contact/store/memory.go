package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"farmshop/internal/contact/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[id.MessageID]*models.Message
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{messages: make(map[id.MessageID]*models.Message)}
}

func (s *InMemoryStore) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *m
	s.messages[m.ID] = &copied
	return nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]*models.Message, error) {
	return s.list(limit, func(*models.Message) bool { return true }), nil
}

func (s *InMemoryStore) ListUnread(_ context.Context, limit int) ([]*models.Message, error) {
	return s.list(limit, func(m *models.Message) bool { return !m.Read }), nil
}

func (s *InMemoryStore) SetRead(_ context.Context, messageID id.MessageID, read bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return sentinel.ErrNotFound
	}
	m.Read = read
	m.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, messageID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.messages, messageID)
	return nil
}

func (s *InMemoryStore) CountUnread(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if !m.Read {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) list(limit int, keep func(*models.Message) bool) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if keep(m) {
			copied := *m
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Message) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
