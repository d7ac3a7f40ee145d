package order

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
)

type StockRequest struct {
	ProductID string
	Quantity  int
}

// StockChecker is the read-only reservation check run before any checkout mutation.
type StockChecker struct {
	ledger inventory.Ledger
}

func NewStockChecker(ledger inventory.Ledger) StockChecker {
	return StockChecker{ledger: ledger}
}

// Check returns nil when every request is covered, or an *inventory.InsufficientStockError
// listing each product that is missing or short. Quantities of repeated products are summed.
func (c StockChecker) Check(ctx context.Context, reqs []StockRequest) error {
	totals := make(map[string]int, len(reqs))
	order := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if _, seen := totals[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		totals[r.ProductID] += r.Quantity
	}

	var shortfalls []inventory.Shortfall
	for _, productID := range order {
		requested := totals[productID]
		available, err := c.ledger.Available(ctx, productID)
		switch {
		case errors.Is(err, inventory.ErrNotFound):
			available = 0
		case err != nil:
			return err
		}
		if available < requested {
			shortfalls = append(shortfalls, inventory.Shortfall{
				ProductID: productID,
				Requested: requested,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &inventory.InsufficientStockError{Shortfalls: shortfalls}
	}
	return nil
}
