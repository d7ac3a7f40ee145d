package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
)

type ProductRepository struct {
	s  *Store
	mu sync.Locker
}

func (r *ProductRepository) Insert(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.s.data.products[p.ID]; exists {
		return product.ErrAlreadyExists
	}
	r.s.data.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) Get(_ context.Context, id string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.s.data.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p.Clone(), nil
}

// Update stores the descriptive fields and availability. Stock is owned by the ledger and left untouched.
func (r *ProductRepository) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.s.data.products[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	next := p.Clone()
	next.Stock = current.Stock
	r.s.data.products[p.ID] = next
	return nil
}

func (r *ProductRepository) List(_ context.Context, f product.Filter) ([]*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	categories := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		categories[strings.ToLower(c)] = struct{}{}
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]*product.Product, 0, len(r.s.data.products))
	for _, p := range r.s.data.products {
		if f.Available != nil && p.Available != *f.Available {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[strings.ToLower(p.Category)]; !ok {
				continue
			}
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.ID+" "+p.Name), search) {
			continue
		}
		out = append(out, p.Clone())
	}

	sort.SliceStable(out, productLess(out, f.Sort))
	return out, nil
}

func productLess(ps []*product.Product, s product.Sort) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := ps[i], ps[j]
		switch s {
		case product.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case product.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case product.SortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case product.SortNameDesc:
			if a.Name != b.Name {
				return a.Name > b.Name
			}
		case product.SortCategoryAsc:
			if a.Category != b.Category {
				return a.Category < b.Category
			}
		case product.SortCategoryDesc:
			if a.Category != b.Category {
				return a.Category > b.Category
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}
}

func (r *ProductRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range r.s.data.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}
