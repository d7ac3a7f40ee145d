package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/amount"
	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
)

// Ledger adjusts products.Stock under the store lock, so each call is atomic.
type Ledger struct {
	s  *Store
	mu sync.Locker
}

func (l *Ledger) Available(_ context.Context, productID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.s.data.products[productID]
	if !ok {
		return 0, inventory.ErrNotFound
	}
	return p.Stock, nil
}

func (l *Ledger) Decrement(_ context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.s.data.products[productID]
	if !ok {
		return 0, inventory.ErrNotFound
	}
	if p.Stock < quantity {
		return p.Stock, inventory.Insufficient(productID, quantity, p.Stock)
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (l *Ledger) Increment(_ context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.s.data.products[productID]
	if !ok {
		return 0, inventory.ErrNotFound
	}
	if p.Stock > amount.MaxCount-quantity {
		return p.Stock, inventory.ErrStockOverflow
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (l *Ledger) Set(_ context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return inventory.ErrNegativeStock
	}
	if quantity > amount.MaxCount {
		return inventory.ErrStockOverflow
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.s.data.products[productID]
	if !ok {
		return inventory.ErrNotFound
	}
	p.Stock = quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}
