// Package uow describes the transactional boundary shared by the storage adapters.
package uow

import (
	"context"

	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
)

// Repositories is the set of repositories bound to one store or one transaction.
type Repositories struct {
	Products product.Repository
	Ledger   inventory.Ledger
	Orders   order.Repository
	Reviews  review.Repository
	Users    user.Repository
}

// Store hands out repositories and runs units of work.
// WithinTx commits when fn returns nil and rolls every change back otherwise.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
