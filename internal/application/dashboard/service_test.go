package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller = &auth.Identity{UserID: "s1", Role: user.RoleSeller}
	now    = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
)

func seed(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	repos := store.Repos()

	for _, p := range []struct {
		id, name string
		stock    int
	}{{"X", "Mango", 0}, {"Y", "Rice", 4}, {"Z", "Corn", 0}} {
		prod, err := product.New(p.id, product.Details{Name: p.name, Category: "Food", Price: decimal.NewFromInt(10)}, p.stock, "")
		require.NoError(t, err)
		prod.CreatedAt, prod.UpdatedAt = now.AddDate(0, -3, 0), now.AddDate(0, -3, 0)
		require.NoError(t, repos.Products.Insert(ctx, prod))
	}

	lines := []struct {
		id, productID string
		paid          int64
		at            time.Time
		status        order.ShippingStatus
	}{
		{"l1", "X", 100, now.AddDate(0, 0, -2), order.StatusShipped},
		{"l2", "X", 50, now.AddDate(0, -2, 0), order.StatusNotShipped},
		{"l3", "Y", 25, now.AddDate(0, -2, 0), order.StatusDelivered},
		{"l4", "gone", 5, now.AddDate(-2, 0, 0), order.StatusNotShipped},
	}
	for _, l := range lines {
		line, err := order.NewLine(l.id, order.Group{GroupID: "GRP-" + l.id, ShippingID: "SHIP-" + l.id}, order.LineInput{
			CustomerID: "c1", ProductID: l.productID, Quantity: 1, PricePaid: decimal.NewFromInt(l.paid), Address: "Manila",
		})
		require.NoError(t, err)
		line.CreatedAt, line.UpdatedAt, line.ShippingStatus = l.at, l.at, l.status
		require.NoError(t, repos.Orders.Insert(ctx, line))
	}

	s := NewService(repos.Products, repos.Orders, observability.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestSummary(t *testing.T) {
	s := seed(t)

	sum, err := s.Summary(context.Background(), seller, "lastMonth")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalProducts)
	assert.Equal(t, 4, sum.TotalOrders)
	assert.Equal(t, 2, sum.OutOfStock)
	assert.Equal(t, "180", sum.TotalEarnings.String())
	assert.Equal(t, 1, sum.PeriodOrders)
	assert.Equal(t, "100", sum.PeriodEarnings.String())
	assert.Equal(t, 2, sum.UpdatedOrders)

	require.Len(t, sum.TopProducts, 3)
	assert.Equal(t, TopProduct{ProductID: "X", Name: "Mango", Sales: 2}, sum.TopProducts[0])
	assert.Equal(t, "Rice", sum.TopProducts[1].Name)
	assert.Equal(t, "Unknown", sum.TopProducts[2].Name)

	require.Len(t, sum.EarningsHistory, 12)
	last := sum.EarningsHistory[11]
	assert.Equal(t, "2026-10", last.Month)
	assert.Equal(t, "October", last.Label)
	assert.Equal(t, "100", last.Earnings.String())
	assert.Equal(t, "75", sum.EarningsHistory[9].Earnings.String())
	assert.Equal(t, "2025-11", sum.EarningsHistory[0].Month)
}

func TestSummarySixMonths(t *testing.T) {
	s := seed(t)

	sum, err := s.Summary(context.Background(), seller, "last6Months")
	require.NoError(t, err)
	assert.Len(t, sum.EarningsHistory, 6)
	assert.Equal(t, 3, sum.PeriodOrders)
}

func TestSummaryRejects(t *testing.T) {
	s := seed(t)

	_, err := s.Summary(context.Background(), seller, "forever")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Summary(context.Background(), &auth.Identity{UserID: "c1", Role: user.RoleCustomer}, "lastWeek")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestActivity(t *testing.T) {
	s := seed(t)

	all, err := s.Activity(context.Background(), seller, "")
	require.NoError(t, err)
	assert.Len(t, all, 14)
	assert.Equal(t, "order-l1", all[0].ID)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}

	mango, err := s.Activity(context.Background(), seller, "mango")
	require.NoError(t, err)
	require.Len(t, mango, 2)
	assert.Equal(t, "Product Created: Mango", mango[0].Message)
}
