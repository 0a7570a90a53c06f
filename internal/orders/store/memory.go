package store

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"farmshop/internal/orders/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

// InMemoryStore keeps orders in memory. Item names and units are kept as
// supplied at creation.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[id.OrderID]*models.Order
	next   int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{orders: make(map[id.OrderID]*models.Order)}
}

func (s *InMemoryStore) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	o.Number = s.next
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, orderID id.OrderID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.UserID == userID }, 0), nil
}

func (s *InMemoryStore) ListAdmin(_ context.Context, filter models.AdminFilter) ([]*models.Order, error) {
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	return s.filter(func(o *models.Order) bool {
		if filter.Status != "" && o.Status != filter.Status {
			return false
		}
		if q == "" {
			return true
		}
		return strings.Contains(strconv.FormatInt(o.Number, 10), q) ||
			strings.Contains(strings.ToLower(o.CustomerName), q) ||
			strings.Contains(string(o.Status), q)
	}, filter.Limit), nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, orderID id.OrderID, status models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return sentinel.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, orderID id.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.orders, orderID)
	return nil
}

func (s *InMemoryStore) CountByUser(_ context.Context, userID id.UserID) (int, error) {
	return len(s.filter(func(o *models.Order) bool { return o.UserID == userID }, 0)), nil
}

// filter returns matching orders newest first.
func (s *InMemoryStore) filter(match func(*models.Order) bool, limit int) []*models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Order, 0)
	for _, o := range s.orders {
		if match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b *models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.Number - a.Number)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	if cp.Items == nil {
		cp.Items = []models.Item{}
	}
	return &cp
}
