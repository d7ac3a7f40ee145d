package inventory

import (
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
)

var (
	ErrNotFound          = fmt.Errorf("%w: inventory: product", apperr.ErrNotFound)
	ErrInvalidQuantity   = apperr.Validation("inventory: quantity must be greater than zero")
	ErrNegativeStock     = apperr.Validation("inventory: stock must be zero or greater")
	ErrInsufficientStock = fmt.Errorf("%w: inventory: insufficient stock", apperr.ErrValidation)
	ErrStockOverflow     = apperr.Validation("inventory: stock would exceed the storable maximum")
)

// Shortfall describes one requested quantity the ledger cannot cover.
type Shortfall struct {
	ProductID string
	Requested int
	Available int
}

// InsufficientStockError lists every shortfall found for a request. It matches ErrInsufficientStock.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s requested %d available %d", s.ProductID, s.Requested, s.Available))
	}
	return "inventory: insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock || target == apperr.ErrValidation
}

// Insufficient builds an InsufficientStockError for a single product.
func Insufficient(productID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{Shortfalls: []Shortfall{{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}}}
}
