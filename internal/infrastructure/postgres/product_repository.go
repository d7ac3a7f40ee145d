package postgres

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) Insert(ctx context.Context, p *product.Product) error {
	m := toProductModel(p)
	err := r.db.WithContext(ctx).Create(&m).Error
	return translate(err, product.ErrNotFound, product.ErrAlreadyExists)
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	var m productModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, translate(err, product.ErrNotFound, product.ErrAlreadyExists)
	}
	return m.toDomain(), nil
}

// Update writes everything but stock, which only the ledger adjusts.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	m := toProductModel(p)
	res := r.db.WithContext(ctx).
		Model(&productModel{}).
		Where("id = ?", p.ID).
		Select("name", "category", "description", "price", "image_path", "available", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return translate(res.Error, product.ErrNotFound, product.ErrAlreadyExists)
	}
	if res.RowsAffected == 0 {
		return product.ErrNotFound
	}
	return nil
}

var productOrder = map[product.Sort]string{
	product.SortPriceAsc:     "price ASC",
	product.SortPriceDesc:    "price DESC",
	product.SortNameAsc:      "name ASC",
	product.SortNameDesc:     "name DESC",
	product.SortCategoryAsc:  "category ASC",
	product.SortCategoryDesc: "category DESC",
}

func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	q := r.db.WithContext(ctx).Model(&productModel{})
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	if len(f.Categories) > 0 {
		lowered := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			lowered = append(lowered, strings.ToLower(c))
		}
		q = q.Where("LOWER(category) IN ?", lowered)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(id || ' ' || name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if ord, ok := productOrder[f.Sort]; ok {
		q = q.Order(ord)
	}
	q = q.Order("created_at DESC").Order("id ASC")

	var rows []productModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, translate(err, product.ErrNotFound, product.ErrAlreadyExists)
	}
	out := make([]*product.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&productModel{}).
		Distinct("category").
		Order("category").
		Pluck("category", &out).Error
	if err != nil {
		return nil, translate(err, product.ErrNotFound, product.ErrAlreadyExists)
	}
	return out, nil
}
