package review

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domorder "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	customer = &auth.Identity{UserID: "cust-1", Role: user.RoleCustomer}
	stranger = &auth.Identity{UserID: "cust-2", Role: user.RoleCustomer}
	admin    = &auth.Identity{UserID: "admin-1", Role: user.RoleAdmin}
)

func seedLine(t *testing.T, s *memory.Store, lineID string, status domorder.ShippingStatus) {
	t.Helper()
	l, err := domorder.NewLine(lineID, domorder.Group{GroupID: "GRP-1", ShippingID: "SHIP-1"}, domorder.LineInput{
		CustomerID: "cust-1",
		ProductID:  "X",
		Quantity:   1,
		PricePaid:  decimal.NewFromInt(100),
		Address:    "Manila",
	})
	require.NoError(t, err)
	l.ShippingStatus = status
	require.NoError(t, s.Repos().Orders.Insert(context.Background(), l))
}

func newCreate(s *memory.Store) *CreateReviewUseCase {
	return NewCreateReviewUseCase(s, id.NewUUIDGenerator(), nil, observability.Nop())
}

func TestCreateReviewOnDeliveredLine(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, "line-1", domorder.StatusDelivered)
	uc := newCreate(store)

	r, err := uc.Execute(context.Background(), CreateReviewInput{Actor: customer, OrderLineID: "line-1", Rating: 5, Comment: " Sweet mangoes "})
	require.NoError(t, err)
	assert.Equal(t, "line-1", r.OrderLineID)
	assert.Equal(t, "Sweet mangoes", r.Comment)
	assert.NotEmpty(t, r.ID)
}

func TestCreateReviewTwiceConflicts(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, "line-1", domorder.StatusDelivered)
	uc := newCreate(store)
	in := CreateReviewInput{Actor: customer, OrderLineID: "line-1", Rating: 4, Comment: "Good"}

	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateReviewRejects(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, "shipped", domorder.StatusShipped)
	seedLine(t, store, "done", domorder.StatusDelivered)
	uc := newCreate(store)
	ctx := context.Background()

	_, err := uc.Execute(ctx, CreateReviewInput{Actor: customer, OrderLineID: "shipped", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, domain.ErrNotDelivered)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = uc.Execute(ctx, CreateReviewInput{Actor: customer, OrderLineID: "missing", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.Execute(ctx, CreateReviewInput{Actor: stranger, OrderLineID: "done", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.Execute(ctx, CreateReviewInput{Actor: customer, OrderLineID: "done", Rating: 6, Comment: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = uc.Execute(ctx, CreateReviewInput{OrderLineID: "done", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = uc.Execute(ctx, CreateReviewInput{Actor: admin, OrderLineID: "done", Rating: 5, Comment: "checked"})
	assert.NoError(t, err)
}

func TestListReviewsScopedToCustomer(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, "line-1", domorder.StatusDelivered)
	_, err := newCreate(store).Execute(context.Background(), CreateReviewInput{Actor: customer, OrderLineID: "line-1", Rating: 3, Comment: "ok"})
	require.NoError(t, err)

	q := NewQueryService(store.Repos().Reviews, store.Repos().Orders, observability.Nop())

	mine, err := q.List(context.Background(), customer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := q.List(context.Background(), stranger)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	all, err := q.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
