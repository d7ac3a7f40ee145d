// Package memory is the process-local storage adapter used in development and tests.
// One mutex guards every table so a unit of work observes and mutates a consistent snapshot.
package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
)

type tables struct {
	products map[string]*product.Product
	orders   map[string]*order.Line
	reviews  map[string]*review.Review // keyed by order line id
	users    map[string]*user.User
}

func newTables() *tables {
	return &tables{
		products: make(map[string]*product.Product),
		orders:   make(map[string]*order.Line),
		reviews:  make(map[string]*review.Review),
		users:    make(map[string]*user.User),
	}
}

func (t *tables) snapshot() *tables {
	c := newTables()
	for k, v := range t.products {
		c.products[k] = v.Clone()
	}
	for k, v := range t.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range t.reviews {
		r := *v
		c.reviews[k] = &r
	}
	for k, v := range t.users {
		u := *v
		c.users[k] = &u
	}
	return c
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Store implements uow.Store in memory.
type Store struct {
	mu   sync.Mutex
	data *tables
}

var _ uow.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) Repos() uow.Repositories {
	return s.bind(&s.mu)
}

// WithinTx holds the store lock for the whole of fn. On error or panic the
// tables are restored to the state they had before fn started.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx uow.Repositories) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	saved := s.data.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.data = saved
			panic(r)
		}
		if err != nil {
			s.data = saved
		}
	}()

	return fn(ctx, s.bind(nopLocker{}))
}

func (s *Store) bind(l sync.Locker) uow.Repositories {
	return uow.Repositories{
		Products: &ProductRepository{s: s, mu: l},
		Ledger:   &Ledger{s: s, mu: l},
		Orders:   &OrderRepository{s: s, mu: l},
		Reviews:  &ReviewRepository{s: s, mu: l},
		Users:    &UserRepository{s: s, mu: l},
	}
}
