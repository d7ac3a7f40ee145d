package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
)

type ReviewRepository struct {
	s  *Store
	mu sync.Locker
}

func (r *ReviewRepository) Insert(_ context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.s.data.reviews[rv.OrderLineID]; exists {
		return review.ErrAlreadyReviewed
	}
	c := *rv
	r.s.data.reviews[rv.OrderLineID] = &c
	return nil
}

func (r *ReviewRepository) FindByOrderLine(_ context.Context, orderLineID string) (*review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.s.data.reviews[orderLineID]
	if !ok {
		return nil, review.ErrNotFound
	}
	c := *rv
	return &c, nil
}

func (r *ReviewRepository) List(_ context.Context, lineIDs []string) ([]*review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*review.Review, 0)
	if len(lineIDs) > 0 {
		for _, id := range lineIDs {
			if rv, ok := r.s.data.reviews[id]; ok {
				c := *rv
				out = append(out, &c)
			}
		}
	} else {
		for _, rv := range r.s.data.reviews {
			c := *rv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
