package shipping

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
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

var seller = &auth.Identity{UserID: "seller-1", Role: user.RoleSeller}

func seedLine(t *testing.T, s *memory.Store, status domain.ShippingStatus) {
	t.Helper()
	l, err := domain.NewLine("line-1", domain.Group{GroupID: "GRP-1", ShippingID: "SHIP-1"}, domain.LineInput{
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

func TestUpdateStatusSkipsForward(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, domain.StatusNotShipped)
	pub := &capturePublisher{}
	uc := NewUpdateStatusUseCase(store, pub, true, observability.Nop())

	l, err := uc.Execute(context.Background(), UpdateStatusInput{Actor: seller, LineID: "line-1", Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, l.ShippingStatus)

	stored, err := store.Repos().Orders.Get(context.Background(), "line-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, stored.ShippingStatus)

	require.Len(t, pub.events, 1)
	evt := pub.events[0].(domain.ShippingStatusChangedEvent)
	assert.Equal(t, domain.StatusNotShipped, evt.From)
	assert.Equal(t, domain.StatusDelivered, evt.To)
	assert.Equal(t, "seller-1", evt.ChangedBy)
}

func TestUpdateStatusBackwardStrict(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, domain.StatusDelivered)
	pub := &capturePublisher{}
	uc := NewUpdateStatusUseCase(store, pub, true, observability.Nop())

	_, err := uc.Execute(context.Background(), UpdateStatusInput{Actor: seller, LineID: "line-1", Status: "packing"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	stored, err := store.Repos().Orders.Get(context.Background(), "line-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, stored.ShippingStatus)
	assert.Empty(t, pub.events)
}

func TestUpdateStatusBackwardLenient(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, domain.StatusDelivered)
	uc := NewUpdateStatusUseCase(store, nil, false, observability.Nop())

	l, err := uc.Execute(context.Background(), UpdateStatusInput{Actor: seller, LineID: "line-1", Status: "packing"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPacking, l.ShippingStatus)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, domain.StatusShipped)
	pub := &capturePublisher{}
	uc := NewUpdateStatusUseCase(store, pub, true, observability.Nop())

	l, err := uc.Execute(context.Background(), UpdateStatusInput{Actor: seller, LineID: "line-1", Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, l.ShippingStatus)
	assert.Empty(t, pub.events)
}

func TestUpdateStatusRejects(t *testing.T) {
	store := memory.NewStore()
	seedLine(t, store, domain.StatusNotShipped)
	uc := NewUpdateStatusUseCase(store, nil, true, observability.Nop())
	ctx := context.Background()

	_, err := uc.Execute(ctx, UpdateStatusInput{LineID: "line-1", Status: "packing"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = uc.Execute(ctx, UpdateStatusInput{Actor: &auth.Identity{UserID: "c", Role: user.RoleCustomer}, LineID: "line-1", Status: "packing"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.Execute(ctx, UpdateStatusInput{Actor: seller, LineID: "line-1", Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)

	_, err = uc.Execute(ctx, UpdateStatusInput{Actor: seller, LineID: "missing", Status: "packing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
