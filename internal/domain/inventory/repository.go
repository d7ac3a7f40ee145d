package inventory

import (
	"context"
)

// Ledger holds the available quantity per product. Every mutation is an atomic
// relative or absolute adjustment evaluated by the store, never a read-modify-write.
type Ledger interface {
	Available(ctx context.Context, productID string) (int, error)
	// Decrement subtracts quantity only if the current stock covers it; otherwise
	// it returns an error matching ErrInsufficientStock and leaves stock untouched.
	Decrement(ctx context.Context, productID string, quantity int) (remaining int, err error)
	Increment(ctx context.Context, productID string, quantity int) (int, error)
	Set(ctx context.Context, productID string, quantity int) error
}
