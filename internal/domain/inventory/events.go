package inventory

import "time"

const (
	AdjustmentAdd      = "add"
	AdjustmentRemove   = "remove"
	AdjustmentSet      = "set"
	AdjustmentCheckout = "checkout"
)

// StockAdjustedEvent is emitted after a committed change to a product's stock.
type StockAdjustedEvent struct {
	ProductID  string
	Kind       string
	Delta      int
	Remaining  int
	OccurredAt time.Time
}

func (StockAdjustedEvent) EventName() string { return "inventory.stock_adjusted" }

func NewStockAdjustedEvent(productID, kind string, delta, remaining int) StockAdjustedEvent {
	return StockAdjustedEvent{
		ProductID:  productID,
		Kind:       kind,
		Delta:      delta,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	}
}
