package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrNotFound        = fmt.Errorf("%w: review", apperr.ErrNotFound)
	ErrAlreadyReviewed = fmt.Errorf("%w: order line already reviewed", apperr.ErrConflict)
	ErrNotDelivered    = fmt.Errorf("%w: order line not delivered", apperr.ErrConflict)
	ErrInvalidRating   = apperr.Validation("review: rating must be between 1 and 5")
	ErrEmptyComment    = apperr.Validation("review: comment is required")
)

// Review is a customer's rating of one delivered order line. At most one exists per line.
type Review struct {
	ID          string
	OrderLineID string
	Rating      int
	Comment     string
	CreatedAt   time.Time
}

func New(id, orderLineID string, rating int, comment string) (*Review, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("review: id is required")
	}
	if strings.TrimSpace(orderLineID) == "" {
		return nil, apperr.Validation("review: order line id is required")
	}
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	return &Review{
		ID:          id,
		OrderLineID: orderLineID,
		Rating:      rating,
		Comment:     comment,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

type Repository interface {
	// Insert fails with ErrAlreadyReviewed when the order line already has a review.
	Insert(ctx context.Context, r *Review) error
	FindByOrderLine(ctx context.Context, orderLineID string) (*Review, error)
	// List returns reviews newest first. A non-empty lineIDs restricts the result to those lines.
	List(ctx context.Context, lineIDs []string) ([]*Review, error)
}
