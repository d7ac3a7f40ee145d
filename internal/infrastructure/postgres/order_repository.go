package postgres

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) Insert(ctx context.Context, l *order.Line) error {
	m := toOrderLineModel(l)
	return translate(r.db.WithContext(ctx).Create(&m).Error, order.ErrNotFound, order.ErrConflict)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Line, error) {
	var m orderLineModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, translate(err, order.ErrNotFound, order.ErrConflict)
	}
	return m.toDomain(), nil
}

// Update persists the shipping status. Every other column is fixed at checkout.
func (r *OrderRepository) Update(ctx context.Context, l *order.Line) error {
	res := r.db.WithContext(ctx).
		Model(&orderLineModel{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"shipping_status": string(l.ShippingStatus),
			"updated_at":      l.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error, order.ErrNotFound, order.ErrConflict)
	}
	if res.RowsAffected == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]*order.Line, error) {
	q := r.db.WithContext(ctx).Model(&orderLineModel{})
	if f.Status != "" {
		q = q.Where("shipping_status = ?", string(f.Status))
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.GroupID != "" {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(id || ' ' || product_id || ' ' || group_id || ' ' || shipping_id) LIKE ?",
			"%"+strings.ToLower(s)+"%")
	}

	var rows []orderLineModel
	if err := q.Order("updated_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, order.ErrNotFound, order.ErrConflict)
	}
	out := make([]*order.Line, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}
