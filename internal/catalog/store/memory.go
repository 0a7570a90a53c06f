// Package store persists products and categories.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"farmshop/internal/catalog/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

// InMemoryStore implements the product and category stores in memory.
type InMemoryStore struct {
	mu         sync.RWMutex
	products   map[id.ProductID]*models.Product
	categories map[id.CategoryID]*models.Category
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		products:   make(map[id.ProductID]*models.Product),
		categories: make(map[id.CategoryID]*models.Category),
	}
}

func (s *InMemoryStore) ListProducts(_ context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Disabled && !filter.IncludeDisabled {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	slices.SortFunc(out, func(a, b *models.Product) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *InMemoryStore) FindProduct(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *InMemoryStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return sentinel.ErrInvalidState
		}
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *InMemoryStore) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return sentinel.ErrInvalidState
		}
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *InMemoryStore) AdjustStock(_ context.Context, productID id.ProductID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.StockQuantity += delta
	return nil
}

func (s *InMemoryStore) DetachCategory(_ context.Context, categoryID id.CategoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
		}
	}
	return nil
}

func (s *InMemoryStore) ListCategories(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *InMemoryStore) FindCategory(_ context.Context, categoryID id.CategoryID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(c.Name, c.ID) {
		return sentinel.ErrAlreadyUsed
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if s.nameTaken(c.Name, c.ID) {
		return sentinel.ErrAlreadyUsed
	}
	existing.Name = c.Name
	return nil
}

func (s *InMemoryStore) DeleteCategory(_ context.Context, categoryID id.CategoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[categoryID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			return sentinel.ErrConflict
		}
	}
	delete(s.categories, categoryID)
	return nil
}

// nameTaken must be called with the lock held.
func (s *InMemoryStore) nameTaken(name string, except id.CategoryID) bool {
	for _, c := range s.categories {
		if c.ID != except && c.Name == name {
			return true
		}
	}
	return false
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	if p.CategoryID != nil {
		c := *p.CategoryID
		cp.CategoryID = &c
	}
	return &cp
}
