package order

import (
	"context"
	"time"
)

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Status     ShippingStatus
	CustomerID string
	GroupID    string
	Search     string
	Since      time.Time
}

type Repository interface {
	Insert(ctx context.Context, line *Line) error
	Get(ctx context.Context, id string) (*Line, error)
	Update(ctx context.Context, line *Line) error
	// List returns matching lines, most recently updated first.
	List(ctx context.Context, f Filter) ([]*Line, error)
}
