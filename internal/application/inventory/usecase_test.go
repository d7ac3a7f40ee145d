package inventory

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	dominv "github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct{ events []domoutbox.Event }

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.events = append(p.events, e)
	return nil
}

var seller = &auth.Identity{UserID: "s1", Role: user.RoleSeller}

func setup(t *testing.T, stock int) (*memory.Store, *AdjustStockUseCase, *capturePublisher) {
	t.Helper()
	store := memory.NewStore()
	p, err := product.New("X", product.Details{Name: "Mango", Category: "Fruit", Price: decimal.NewFromInt(10)}, stock, "")
	require.NoError(t, err)
	require.NoError(t, store.Repos().Products.Insert(context.Background(), p))
	pub := &capturePublisher{}
	return store, NewAdjustStockUseCase(store, pub, observability.Nop()), pub
}

func TestAdjustStock(t *testing.T) {
	_, uc, pub := setup(t, 3)
	ctx := context.Background()

	p, err := uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "X", Kind: dominv.AdjustmentAdd, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)

	p, err = uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "X", Kind: dominv.AdjustmentRemove, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	p, err = uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "X", Kind: dominv.AdjustmentSet, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)

	require.Len(t, pub.events, 3)
	last := pub.events[2].(dominv.StockAdjustedEvent)
	assert.Equal(t, -4, last.Delta)
	assert.Equal(t, 1, last.Remaining)
}

func TestAdjustStockRemoveBeyondStock(t *testing.T) {
	store, uc, pub := setup(t, 2)

	_, err := uc.Execute(context.Background(), AdjustStockInput{Actor: seller, ProductID: "X", Kind: dominv.AdjustmentRemove, Quantity: 3})
	assert.ErrorIs(t, err, dominv.ErrInsufficientStock)

	n, err := store.Repos().Ledger.Available(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, pub.events)
}

func TestAdjustStockRejects(t *testing.T) {
	_, uc, _ := setup(t, 2)
	ctx := context.Background()

	_, err := uc.Execute(ctx, AdjustStockInput{Actor: &auth.Identity{UserID: "c", Role: user.RoleCustomer}, ProductID: "X", Kind: dominv.AdjustmentAdd, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "X", Kind: "double", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "X", Kind: dominv.AdjustmentAdd, Quantity: 0})
	assert.ErrorIs(t, err, dominv.ErrInvalidQuantity)

	_, err = uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "X", Kind: dominv.AdjustmentSet, Quantity: -1})
	assert.ErrorIs(t, err, dominv.ErrNegativeStock)

	_, err = uc.Execute(ctx, AdjustStockInput{Actor: seller, ProductID: "nope", Kind: dominv.AdjustmentAdd, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWorkerLevels(t *testing.T) {
	w := NewWorker(nil, 5, observability.Nop())
	assert.Equal(t, "depleted", w.level(0))
	assert.Equal(t, "low", w.level(5))
	assert.Equal(t, "ok", w.level(6))

	err := w.handleStockAdjusted(context.Background(), dominv.NewStockAdjustedEvent("X", dominv.AdjustmentCheckout, -2, 0))
	assert.NoError(t, err)
}
