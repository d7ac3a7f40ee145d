package postgres

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/amount"
	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger adjusts products.stock with single UPDATE statements so concurrent
// writers never lose an update and a decrement never drives stock below zero.
type Ledger struct {
	db *gorm.DB
}

var returningStock = clause.Returning{Columns: []clause.Column{{Name: "stock"}}}

func (l *Ledger) Available(ctx context.Context, productID string) (int, error) {
	var m productModel
	err := l.db.WithContext(ctx).Select("stock").Where("id = ?", productID).Take(&m).Error
	if err != nil {
		return 0, translate(err, inventory.ErrNotFound, inventory.ErrNotFound)
	}
	return m.Stock, nil
}

func (l *Ledger) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	var m productModel
	res := l.db.WithContext(ctx).
		Model(&m).
		Clauses(returningStock).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, translate(res.Error, inventory.ErrNotFound, inventory.ErrNotFound)
	}
	if res.RowsAffected == 0 {
		available, err := l.Available(ctx, productID)
		if err != nil {
			return 0, err
		}
		return available, inventory.Insufficient(productID, quantity, available)
	}
	return m.Stock, nil
}

func (l *Ledger) Increment(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, inventory.ErrInvalidQuantity
	}
	if quantity > amount.MaxCount {
		return 0, inventory.ErrStockOverflow
	}
	var m productModel
	res := l.db.WithContext(ctx).
		Model(&m).
		Clauses(returningStock).
		Where("id = ? AND stock <= ?", productID, amount.MaxCount-quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, translate(res.Error, inventory.ErrNotFound, inventory.ErrNotFound)
	}
	if res.RowsAffected == 0 {
		available, err := l.Available(ctx, productID)
		if err != nil {
			return 0, err
		}
		return available, inventory.ErrStockOverflow
	}
	return m.Stock, nil
}

func (l *Ledger) Set(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return inventory.ErrNegativeStock
	}
	if quantity > amount.MaxCount {
		return inventory.ErrStockOverflow
	}
	res := l.db.WithContext(ctx).
		Model(&productModel{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      quantity,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error, inventory.ErrNotFound, inventory.ErrNotFound)
	}
	if res.RowsAffected == 0 {
		return inventory.ErrNotFound
	}
	return nil
}
