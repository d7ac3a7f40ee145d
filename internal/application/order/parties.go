package order

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/shopspring/decimal"
)

const useCaseParties = "order.parties"

type ProductSummary struct {
	Name      string
	ImagePath string
	Price     decimal.Decimal
}

type CustomerSummary struct {
	Name  string
	Email string
}

// Parties holds the products and customers a set of lines refers to, keyed by id.
type Parties struct {
	Products  map[string]ProductSummary
	Customers map[string]CustomerSummary
}

func (p Parties) Product(id string) (ProductSummary, bool) {
	s, ok := p.Products[id]
	return s, ok
}

func (p Parties) Customer(id string) (CustomerSummary, bool) {
	s, ok := p.Customers[id]
	return s, ok
}

// Parties loads each distinct product and customer of lines once.
// Ids that no longer resolve are left out.
func (s *QueryService) Parties(ctx context.Context, lines []*domain.Line) (_ Parties, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseParties, "ResolveOrderParties")
	defer func() { exec.End(ctx, err) }()

	out := Parties{
		Products:  make(map[string]ProductSummary),
		Customers: make(map[string]CustomerSummary),
	}
	seenProducts := make(map[string]bool)
	seenCustomers := make(map[string]bool)
	for _, l := range lines {
		if !seenProducts[l.ProductID] {
			seenProducts[l.ProductID] = true
			p, err := s.products.Get(ctx, l.ProductID)
			switch {
			case errors.Is(err, product.ErrNotFound):
			case err != nil:
				exec.Fail("PRODUCT_LOOKUP_FAILED")
				return Parties{}, application.WrapRepositoryError(err)
			default:
				out.Products[p.ID] = ProductSummary{Name: p.Name, ImagePath: p.ImagePath, Price: p.Price}
			}
		}
		if !seenCustomers[l.CustomerID] {
			seenCustomers[l.CustomerID] = true
			u, err := s.users.Get(ctx, l.CustomerID)
			switch {
			case errors.Is(err, user.ErrNotFound):
			case err != nil:
				exec.Fail("CUSTOMER_LOOKUP_FAILED")
				return Parties{}, application.WrapRepositoryError(err)
			default:
				out.Customers[u.ID] = CustomerSummary{Name: u.Name, Email: u.Email}
			}
		}
	}
	exec.Field("products", len(out.Products))
	exec.Field("customers", len(out.Customers))
	return out, nil
}
