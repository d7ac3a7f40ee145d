package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
)

type OrderRepository struct {
	s  *Store
	mu sync.Locker
}

func (r *OrderRepository) Insert(_ context.Context, l *order.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.s.data.orders[l.ID]; exists {
		return order.ErrConflict
	}
	r.s.data.orders[l.ID] = l.Clone()
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id string) (*order.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.s.data.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return l.Clone(), nil
}

func (r *OrderRepository) Update(_ context.Context, l *order.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.s.data.orders[l.ID]; !exists {
		return order.ErrNotFound
	}
	r.s.data.orders[l.ID] = l.Clone()
	return nil
}

func (r *OrderRepository) List(_ context.Context, f order.Filter) ([]*order.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*order.Line, 0, len(r.s.data.orders))
	for _, l := range r.s.data.orders {
		switch {
		case f.Status != "" && l.ShippingStatus != f.Status:
			continue
		case f.CustomerID != "" && l.CustomerID != f.CustomerID:
			continue
		case f.GroupID != "" && l.GroupID != f.GroupID:
			continue
		case !f.Since.IsZero() && l.CreatedAt.Before(f.Since):
			continue
		case search != "" && !strings.Contains(strings.ToLower(l.ID+" "+l.ProductID+" "+l.GroupID+" "+l.ShippingID), search):
			continue
		}
		out = append(out, l.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
