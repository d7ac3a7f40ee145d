package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/amount"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = fmt.Errorf("%w: order line", apperr.ErrNotFound)
	ErrConflict               = fmt.Errorf("%w: order line already exists", apperr.ErrConflict)
	ErrInvalidQuantity        = apperr.Validation("order: quantity must be greater than zero")
	ErrInvalidPrice           = apperr.Validation("order: price must be zero or greater")
	ErrUnknownStatus          = apperr.Validation("order: unknown shipping status")
	ErrInvalidStateTransition = fmt.Errorf("%w: order: invalid shipping status transition", apperr.ErrConflict)
)

type ShippingStatus string

const (
	StatusNotShipped ShippingStatus = "not-shipped"
	StatusPacking    ShippingStatus = "packing"
	StatusShipped    ShippingStatus = "shipped"
	StatusDelivered  ShippingStatus = "delivered"
	StatusCancelled  ShippingStatus = "cancelled"
)

// ParseStatus validates a wire value against the fixed set of shipping tags.
func ParseStatus(s string) (ShippingStatus, error) {
	switch v := ShippingStatus(s); v {
	case StatusNotShipped, StatusPacking, StatusShipped, StatusDelivered, StatusCancelled:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s ShippingStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Line is one product line of a checkout. PricePaid is captured at creation and never changes.
type Line struct {
	ID                  string
	CustomerID          string
	ProductID           string
	Quantity            int
	PricePaid           decimal.Decimal
	Address             string
	SpecialInstructions string
	GroupID             string
	ShippingID          string
	ShippingStatus      ShippingStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Group is the shared identity of all lines created by one checkout.
type Group struct {
	GroupID    string
	ShippingID string
}

type LineInput struct {
	CustomerID          string
	ProductID           string
	Quantity            int
	PricePaid           decimal.Decimal
	Address             string
	SpecialInstructions string
}

func NewLine(id string, group Group, in LineInput) (*Line, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("order: id is required")
	}
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, apperr.Validation("order: customer id is required")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, apperr.Validation("order: product id is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, apperr.Validation("order: address is required")
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := amount.Count(in.Quantity); err != nil {
		return nil, fmt.Errorf("order: quantity: %w", err)
	}
	if in.PricePaid.IsNegative() {
		return nil, ErrInvalidPrice
	}
	// PricePaid must round-trip through storage unchanged.
	if err := amount.Money(in.PricePaid); err != nil {
		return nil, fmt.Errorf("order: price paid: %w", err)
	}

	now := time.Now().UTC()
	return &Line{
		ID:                  id,
		CustomerID:          in.CustomerID,
		ProductID:           in.ProductID,
		Quantity:            in.Quantity,
		PricePaid:           in.PricePaid,
		Address:             in.Address,
		SpecialInstructions: in.SpecialInstructions,
		GroupID:             group.GroupID,
		ShippingID:          group.ShippingID,
		ShippingStatus:      StatusNotShipped,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Delivered reports whether the line can be reviewed.
func (l *Line) Delivered() bool { return l.ShippingStatus == StatusDelivered }

func (l *Line) Clone() *Line {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func (l *Line) touch() {
	l.UpdatedAt = time.Now().UTC()
}
