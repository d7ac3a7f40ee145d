package postgres

import (
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/shopspring/decimal"
)

type productModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Category    string `gorm:"not null;index"`
	Description string
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock       int             `gorm:"not null"`
	ImagePath   string
	Available   bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productModel) TableName() string { return "products" }

func toProductModel(p *product.Product) productModel {
	return productModel{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImagePath:   p.ImagePath,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m productModel) toDomain() *product.Product {
	return &product.Product{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		ImagePath:   m.ImagePath,
		Available:   m.Available,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type orderLineModel struct {
	ID                  string          `gorm:"primaryKey"`
	CustomerID          string          `gorm:"not null;index"`
	ProductID           string          `gorm:"not null"`
	Quantity            int             `gorm:"not null"`
	PricePaid           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Address             string          `gorm:"not null"`
	SpecialInstructions string
	GroupID             string `gorm:"not null;index"`
	ShippingID          string `gorm:"not null"`
	ShippingStatus      string `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (orderLineModel) TableName() string { return "order_lines" }

func toOrderLineModel(l *order.Line) orderLineModel {
	return orderLineModel{
		ID:                  l.ID,
		CustomerID:          l.CustomerID,
		ProductID:           l.ProductID,
		Quantity:            l.Quantity,
		PricePaid:           l.PricePaid,
		Address:             l.Address,
		SpecialInstructions: l.SpecialInstructions,
		GroupID:             l.GroupID,
		ShippingID:          l.ShippingID,
		ShippingStatus:      string(l.ShippingStatus),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func (m orderLineModel) toDomain() *order.Line {
	return &order.Line{
		ID:                  m.ID,
		CustomerID:          m.CustomerID,
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		PricePaid:           m.PricePaid,
		Address:             m.Address,
		SpecialInstructions: m.SpecialInstructions,
		GroupID:             m.GroupID,
		ShippingID:          m.ShippingID,
		ShippingStatus:      order.ShippingStatus(m.ShippingStatus),
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

type reviewModel struct {
	ID          string `gorm:"primaryKey"`
	OrderLineID string `gorm:"not null;uniqueIndex"`
	Rating      int    `gorm:"not null"`
	Comment     string `gorm:"not null"`
	CreatedAt   time.Time
}

func (reviewModel) TableName() string { return "reviews" }

func (m reviewModel) toDomain() *review.Review {
	return &review.Review{
		ID:          m.ID,
		OrderLineID: m.OrderLineID,
		Rating:      m.Rating,
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type userModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"not null;uniqueIndex"`
	Name         string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() *user.User {
	return &user.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         user.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}
