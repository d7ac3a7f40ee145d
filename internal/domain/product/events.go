package product

import "time"

// ChangedEvent is emitted whenever a product's descriptive fields or availability change.
type ChangedEvent struct {
	ProductID  string
	Available  bool
	OccurredAt time.Time
}

func (ChangedEvent) EventName() string { return "product.changed" }

func NewChangedEvent(p *Product) ChangedEvent {
	return ChangedEvent{
		ProductID:  p.ID,
		Available:  p.Available,
		OccurredAt: time.Now().UTC(),
	}
}
