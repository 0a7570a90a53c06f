package store

import (
	"context"
	"slices"
	"sync"

	"farmshop/internal/gallery/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	images map[id.ImageID]*models.Image
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{images: make(map[id.ImageID]*models.Image)}
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Image, 0, len(s.images))
	for _, img := range s.images {
		copied := *img
		out = append(out, &copied)
	}
	slices.SortFunc(out, func(a, b *models.Image) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Find(_ context.Context, imageID id.ImageID) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[imageID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *img
	return &copied, nil
}

func (s *InMemoryStore) Create(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *img
	s.images[img.ID] = &copied
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.images[img.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.Title = img.Title
	existing.Description = img.Description
	existing.Position = img.Position
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, imageID id.ImageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[imageID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.images, imageID)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images), nil
}
