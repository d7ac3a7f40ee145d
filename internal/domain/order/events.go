package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlacedLine is the per-line payload of OrderPlacedEvent.
type PlacedLine struct {
	LineID    string
	ProductID string
	Quantity  int
	PricePaid decimal.Decimal
}

// OrderPlacedEvent is emitted once per committed checkout.
type OrderPlacedEvent struct {
	GroupID    string
	ShippingID string
	CustomerID string
	Lines      []PlacedLine
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(group Group, customerID string, lines []*Line) OrderPlacedEvent {
	evt := OrderPlacedEvent{
		GroupID:    group.GroupID,
		ShippingID: group.ShippingID,
		CustomerID: customerID,
		Lines:      make([]PlacedLine, 0, len(lines)),
		Total:      decimal.Zero,
		OccurredAt: time.Now().UTC(),
	}
	for _, l := range lines {
		evt.Lines = append(evt.Lines, PlacedLine{
			LineID:    l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			PricePaid: l.PricePaid,
		})
		evt.Total = evt.Total.Add(l.PricePaid)
	}
	return evt
}

// ShippingStatusChangedEvent is emitted when a seller moves a line to a new status.
type ShippingStatusChangedEvent struct {
	LineID     string
	GroupID    string
	From       ShippingStatus
	To         ShippingStatus
	ChangedBy  string
	OccurredAt time.Time
}

func (ShippingStatusChangedEvent) EventName() string { return "order.shipping_status_changed" }

func NewShippingStatusChangedEvent(l *Line, from ShippingStatus, changedBy string) ShippingStatusChangedEvent {
	return ShippingStatusChangedEvent{
		LineID:     l.ID,
		GroupID:    l.GroupID,
		From:       from,
		To:         l.ShippingStatus,
		ChangedBy:  changedBy,
		OccurredAt: time.Now().UTC(),
	}
}
