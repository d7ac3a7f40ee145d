package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/amount"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = fmt.Errorf("%w: product", apperr.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("%w: product id already exists", apperr.ErrConflict)
	ErrInvalidPrice  = apperr.Validation("product: price must be zero or greater")
	ErrInvalidStock  = apperr.Validation("product: stock must be zero or greater")
)

// Product is a catalog entry. It is never deleted; Available=false hides it from purchase listings.
type Product struct {
	ID          string
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImagePath   string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Details is the editable part of a product.
type Details struct {
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation("product: name is required")
	}
	if strings.TrimSpace(d.Category) == "" {
		return apperr.Validation("product: category is required")
	}
	if d.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if err := amount.Money(d.Price); err != nil {
		return fmt.Errorf("product: price: %w", err)
	}
	return nil
}

func New(id string, details Details, stock int, imagePath string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("product: id is required")
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	if err := amount.Count(stock); err != nil {
		return nil, fmt.Errorf("product: stock: %w", err)
	}

	now := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        details.Name,
		Category:    details.Category,
		Description: details.Description,
		Price:       details.Price,
		Stock:       stock,
		ImagePath:   imagePath,
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Edit replaces the descriptive fields. An empty imagePath keeps the current image.
func (p *Product) Edit(details Details, imagePath string) error {
	if err := details.validate(); err != nil {
		return err
	}
	p.Name = details.Name
	p.Category = details.Category
	p.Description = details.Description
	p.Price = details.Price
	if imagePath != "" {
		p.ImagePath = imagePath
	}
	p.touch()
	return nil
}

func (p *Product) Deactivate() {
	p.Available = false
	p.touch()
}

func (p *Product) Reactivate() {
	p.Available = true
	p.touch()
}

func (p *Product) OutOfStock() bool { return p.Stock <= 0 }

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
