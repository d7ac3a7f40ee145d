package postgres

import (
	"context"

	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

// Insert relies on the unique index on order_line_id to reject a second review.
func (r *ReviewRepository) Insert(ctx context.Context, rv *review.Review) error {
	m := reviewModel{
		ID:          rv.ID,
		OrderLineID: rv.OrderLineID,
		Rating:      rv.Rating,
		Comment:     rv.Comment,
		CreatedAt:   rv.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&m).Error, review.ErrNotFound, review.ErrAlreadyReviewed)
}

func (r *ReviewRepository) FindByOrderLine(ctx context.Context, orderLineID string) (*review.Review, error) {
	var m reviewModel
	if err := r.db.WithContext(ctx).Where("order_line_id = ?", orderLineID).Take(&m).Error; err != nil {
		return nil, translate(err, review.ErrNotFound, review.ErrAlreadyReviewed)
	}
	return m.toDomain(), nil
}

func (r *ReviewRepository) List(ctx context.Context, lineIDs []string) ([]*review.Review, error) {
	q := r.db.WithContext(ctx).Model(&reviewModel{})
	if len(lineIDs) > 0 {
		q = q.Where("order_line_id IN ?", lineIDs)
	}
	var rows []reviewModel
	if err := q.Order("created_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, review.ErrNotFound, review.ErrAlreadyReviewed)
	}
	out := make([]*review.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}
