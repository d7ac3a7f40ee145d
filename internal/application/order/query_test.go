package order

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryScopesCustomers(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "A", 10, 10)
	uc := newUseCase(store, nil)
	ctx := context.Background()

	for _, cust := range []string{"c1", "c1", "c2"} {
		_, err := uc.Execute(ctx, PlaceOrderInput{CustomerID: cust, Address: "a", Items: []CartItem{{ProductID: "A", Quantity: 1}}})
		require.NoError(t, err)
	}

	q := NewQueryService(store.Repos().Orders, store.Repos().Products, store.Repos().Users, observability.Nop())
	customer := &auth.Identity{UserID: "c1", Role: user.RoleCustomer}
	seller := &auth.Identity{UserID: "s1", Role: user.RoleSeller}

	mine, err := q.List(ctx, ListInput{Actor: customer, CustomerID: "c2"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := q.List(ctx, ListInput{Actor: seller})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	c2, err := q.List(ctx, ListInput{Actor: seller, CustomerID: "c2", Status: "not-shipped"})
	require.NoError(t, err)
	assert.Len(t, c2, 1)

	_, err = q.List(ctx, ListInput{Actor: seller, Status: "lost"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = q.List(ctx, ListInput{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	groups, err := q.ListGroups(ctx, customer, "")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Equal(t, "c1", g.CustomerID)
		assert.Len(t, g.Lines, 1)
		assert.Equal(t, "10", g.Total.String())
	}
}

func TestPartiesSummarizesProductsAndCustomers(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "A", 10, 25)
	seedProduct(t, store, "B", 10, 40)
	ctx := context.Background()
	u, err := user.New("c1", "ana@example.com", "Ana", "hash", user.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, store.Repos().Users.Insert(ctx, u))

	uc := newUseCase(store, nil)
	for _, cust := range []string{"c1", "ghost"} {
		_, err := uc.Execute(ctx, PlaceOrderInput{CustomerID: cust, Address: "a", Items: []CartItem{
			{ProductID: "A", Quantity: 1}, {ProductID: "B", Quantity: 2},
		}})
		require.NoError(t, err)
	}

	q := NewQueryService(store.Repos().Orders, store.Repos().Products, store.Repos().Users, observability.Nop())
	lines, err := q.List(ctx, ListInput{Actor: &auth.Identity{UserID: "s1", Role: user.RoleSeller}})
	require.NoError(t, err)
	require.Len(t, lines, 4)

	parties, err := q.Parties(ctx, lines)
	require.NoError(t, err)
	assert.Len(t, parties.Products, 2)
	a, ok := parties.Product("A")
	require.True(t, ok)
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, "25", a.Price.String())

	ana, ok := parties.Customer("c1")
	require.True(t, ok)
	assert.Equal(t, CustomerSummary{Name: "Ana", Email: "ana@example.com"}, ana)
	_, ok = parties.Customer("ghost")
	assert.False(t, ok)
}
