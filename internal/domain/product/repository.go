package product

import (
	"context"

	"github.com/shopspring/decimal"
)

type Sort string

const (
	SortNewest       Sort = ""
	SortPriceAsc     Sort = "price-asc"
	SortPriceDesc    Sort = "price-desc"
	SortNameAsc      Sort = "name-asc"
	SortNameDesc     Sort = "name-desc"
	SortCategoryAsc  Sort = "category-asc"
	SortCategoryDesc Sort = "category-desc"
)

// ParseSort maps a query value to a Sort; unknown values fall back to newest first.
func ParseSort(s string) Sort {
	switch v := Sort(s); v {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc, SortCategoryAsc, SortCategoryDesc:
		return v
	default:
		return SortNewest
	}
}

// Filter narrows a listing. Nil bounds are open.
type Filter struct {
	Available  *bool
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Sort       Sort
}

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	List(ctx context.Context, f Filter) ([]*Product, error)
	Categories(ctx context.Context) ([]string, error)
}
