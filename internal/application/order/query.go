package order

import (
	"context"
	"sort"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"
)

const (
	useCaseListOrders = "order.list"
	useCaseListGroups = "order.list_groups"
)

// QueryService answers order reads. Customers only ever see their own lines.
type QueryService struct {
	orders   domain.Repository
	products product.Repository
	users    user.Repository
	obs      application.Instruments
}

func NewQueryService(orders domain.Repository, products product.Repository, users user.Repository, tel observability.Observability) *QueryService {
	return &QueryService{
		orders:   orders,
		products: products,
		users:    users,
		obs:      application.NewInstruments(tel, orderService),
	}
}

type ListInput struct {
	Actor      *auth.Identity
	Status     string
	CustomerID string
	Search     string
}

func (s *QueryService) List(ctx context.Context, in ListInput) (_ []*domain.Line, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseListOrders, "ListOrders")
	defer func() { exec.End(ctx, err) }()

	f, err := s.scope(in.Actor, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if in.Status != "" {
		if f.Status, err = domain.ParseStatus(in.Status); err != nil {
			return nil, err
		}
	}
	f.Search = in.Search

	lines, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	exec.Field("results", len(lines))
	return lines, nil
}

// GroupView is one checkout with its lines, oldest line first.
type GroupView struct {
	GroupID    string
	ShippingID string
	CustomerID string
	Address    string
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Lines      []*domain.Line
}

// ListGroups returns checkouts newest first.
func (s *QueryService) ListGroups(ctx context.Context, actor *auth.Identity, customerID string) (_ []GroupView, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseListGroups, "ListOrderGroups")
	defer func() { exec.End(ctx, err) }()

	f, err := s.scope(actor, customerID)
	if err != nil {
		return nil, err
	}
	lines, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}

	byGroup := make(map[string]*GroupView)
	for _, l := range lines {
		g, ok := byGroup[l.GroupID]
		if !ok {
			g = &GroupView{
				GroupID:    l.GroupID,
				ShippingID: l.ShippingID,
				CustomerID: l.CustomerID,
				Address:    l.Address,
				Total:      decimal.Zero,
				CreatedAt:  l.CreatedAt,
				UpdatedAt:  l.UpdatedAt,
			}
			byGroup[l.GroupID] = g
		}
		g.Lines = append(g.Lines, l)
		g.Total = g.Total.Add(l.PricePaid)
		if l.CreatedAt.Before(g.CreatedAt) {
			g.CreatedAt = l.CreatedAt
		}
		if l.UpdatedAt.After(g.UpdatedAt) {
			g.UpdatedAt = l.UpdatedAt
		}
	}

	out := make([]GroupView, 0, len(byGroup))
	for _, g := range byGroup {
		sort.Slice(g.Lines, func(i, j int) bool {
			if !g.Lines[i].CreatedAt.Equal(g.Lines[j].CreatedAt) {
				return g.Lines[i].CreatedAt.Before(g.Lines[j].CreatedAt)
			}
			return g.Lines[i].ID < g.Lines[j].ID
		})
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].GroupID < out[j].GroupID
	})
	exec.Field("results", len(out))
	return out, nil
}

func (s *QueryService) scope(actor *auth.Identity, customerID string) (domain.Filter, error) {
	if err := auth.Require(actor); err != nil {
		return domain.Filter{}, err
	}
	if !actor.Staff() {
		return domain.Filter{CustomerID: actor.UserID}, nil
	}
	return domain.Filter{CustomerID: customerID}, nil
}
