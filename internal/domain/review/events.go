package review

import "time"

// CreatedEvent is emitted after a review is stored.
type CreatedEvent struct {
	ReviewID    string
	OrderLineID string
	Rating      int
	OccurredAt  time.Time
}

func (CreatedEvent) EventName() string { return "review.created" }

func NewCreatedEvent(r *Review) CreatedEvent {
	return CreatedEvent{
		ReviewID:    r.ID,
		OrderLineID: r.OrderLineID,
		Rating:      r.Rating,
		OccurredAt:  time.Now().UTC(),
	}
}
