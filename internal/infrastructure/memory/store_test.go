package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/amount"
	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, s *Store, id string, stock int, price int64) {
	t.Helper()
	p, err := product.New(id, product.Details{Name: id, Category: "General", Price: decimal.NewFromInt(price)}, stock, "")
	require.NoError(t, err)
	require.NoError(t, s.Repos().Products.Insert(context.Background(), p))
}

func TestLedgerDecrementIsConditional(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "X", 2, 100)
	ledger := s.Repos().Ledger

	_, err := ledger.Decrement(ctx, "X", 3)
	var ise *inventory.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Shortfalls[0].Available)

	remaining, err := ledger.Decrement(ctx, "X", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, err = ledger.Decrement(ctx, "missing", 1)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestLedgerIncrementAndSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "X", 1, 10)
	ledger := s.Repos().Ledger

	n, err := ledger.Increment(ctx, "X", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, ledger.Set(ctx, "X", 0))
	assert.ErrorIs(t, ledger.Set(ctx, "X", -1), inventory.ErrNegativeStock)

	avail, err := ledger.Available(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 0, avail)
}

func TestLedgerStockStaysWithinInt32(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "X", amount.MaxCount-1, 10)
	ledger := s.Repos().Ledger

	n, err := ledger.Increment(ctx, "X", 2)
	assert.ErrorIs(t, err, inventory.ErrStockOverflow)
	assert.Equal(t, amount.MaxCount-1, n)

	n, err = ledger.Increment(ctx, "X", 1)
	require.NoError(t, err)
	assert.Equal(t, amount.MaxCount, n)

	assert.ErrorIs(t, ledger.Set(ctx, "X", amount.MaxCount+1), inventory.ErrStockOverflow)
}

func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "P", 5, 10)
	ledger := s.Repos().Ledger

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Decrement(ctx, "P", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	avail, err := ledger.Available(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, avail)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "X", 3, 10)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		if _, err := tx.Ledger.Decrement(ctx, "X", 2); err != nil {
			return err
		}
		l, err := order.NewLine("l1", order.Group{GroupID: "G", ShippingID: "S"}, order.LineInput{
			CustomerID: "c", ProductID: "X", Quantity: 2, PricePaid: decimal.NewFromInt(20), Address: "a",
		})
		require.NoError(t, err)
		if err := tx.Orders.Insert(ctx, l); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	avail, err := s.Repos().Ledger.Available(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 3, avail)

	_, err = s.Repos().Orders.Get(ctx, "l1")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "X", 3, 10)

	err := s.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		_, err := tx.Ledger.Decrement(ctx, "X", 1)
		return err
	})
	require.NoError(t, err)

	avail, _ := s.Repos().Ledger.Available(ctx, "X")
	assert.Equal(t, 2, avail)
}

func TestProductUpdateLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "X", 3, 10)
	repos := s.Repos()

	p, err := repos.Products.Get(ctx, "X")
	require.NoError(t, err)
	p.Stock = 99
	p.Deactivate()
	require.NoError(t, repos.Products.Update(ctx, p))

	got, err := repos.Products.Get(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.False(t, got.Available)

	assert.ErrorIs(t, repos.Products.Insert(ctx, got), product.ErrAlreadyExists)
}

func TestProductListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProduct(t, s, "A", 1, 300)
	seedProduct(t, s, "B", 1, 100)
	seedProduct(t, s, "C", 1, 200)

	p, _ := s.Repos().Products.Get(ctx, "C")
	p.Deactivate()
	require.NoError(t, s.Repos().Products.Update(ctx, p))

	available := true
	minPrice := decimal.NewFromInt(100)
	list, err := s.Repos().Products.List(ctx, product.Filter{
		Available: &available,
		MinPrice:  &minPrice,
		Sort:      product.SortPriceAsc,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ID)
	assert.Equal(t, "A", list[1].ID)

	cats, err := s.Repos().Products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"General"}, cats)
}

func TestOrderListNewestUpdatedFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repos := s.Repos()

	base := time.Now().UTC()
	for i, id := range []string{"l1", "l2", "l3"} {
		l := &order.Line{
			ID: id, CustomerID: "c", ProductID: "X", Quantity: 1, GroupID: "G",
			ShippingStatus: order.StatusNotShipped,
			CreatedAt:      base, UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repos.Orders.Insert(ctx, l))
	}
	l2, _ := repos.Orders.Get(ctx, "l2")
	l2.ShippingStatus = order.StatusPacking
	l2.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, repos.Orders.Update(ctx, l2))

	all, err := repos.Orders.List(ctx, order.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "l2", all[0].ID)
	assert.Equal(t, "l3", all[1].ID)

	packing, err := repos.Orders.List(ctx, order.Filter{Status: order.StatusPacking})
	require.NoError(t, err)
	assert.Len(t, packing, 1)
}

func TestReviewUniquePerLine(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repos := s.Repos()

	r, err := review.New("r1", "l1", 5, "great")
	require.NoError(t, err)
	require.NoError(t, repos.Reviews.Insert(ctx, r))

	again, _ := review.New("r2", "l1", 4, "again")
	assert.ErrorIs(t, repos.Reviews.Insert(ctx, again), review.ErrAlreadyReviewed)

	list, err := repos.Reviews.List(ctx, []string{"l1", "l9"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserEmailUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repos := s.Repos()

	u, err := user.New("u1", "ana@example.com", "Ana", "hash", user.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, repos.Users.Insert(ctx, u))

	dup, _ := user.New("u2", "ANA@example.com", "Ana", "hash", user.RoleSeller)
	assert.ErrorIs(t, repos.Users.Insert(ctx, dup), user.ErrEmailTaken)

	got, err := repos.Users.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}
