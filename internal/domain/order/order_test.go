package order

import (
	"math"
	"testing"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() LineInput {
	return LineInput{
		CustomerID: "cust-1",
		ProductID:  "X",
		Quantity:   2,
		PricePaid:  decimal.NewFromInt(200),
		Address:    "1 Rizal Ave, Manila",
	}
}

func TestNewLine(t *testing.T) {
	group := Group{GroupID: "GRP-1", ShippingID: "SHIP-1"}
	l, err := NewLine("line-1", group, validInput())
	require.NoError(t, err)

	assert.Equal(t, StatusNotShipped, l.ShippingStatus)
	assert.Equal(t, "GRP-1", l.GroupID)
	assert.Equal(t, "SHIP-1", l.ShippingID)
	assert.True(t, l.PricePaid.Equal(decimal.NewFromInt(200)))
	assert.False(t, l.CreatedAt.IsZero())
	assert.Equal(t, l.CreatedAt, l.UpdatedAt)
}

func TestNewLineValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LineInput)
	}{
		{"missing customer", func(in *LineInput) { in.CustomerID = "" }},
		{"missing product", func(in *LineInput) { in.ProductID = " " }},
		{"missing address", func(in *LineInput) { in.Address = "" }},
		{"zero quantity", func(in *LineInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *LineInput) { in.Quantity = -1 }},
		{"negative price", func(in *LineInput) { in.PricePaid = decimal.NewFromInt(-1) }},
		{"sub-cent price", func(in *LineInput) { in.PricePaid = decimal.RequireFromString("99.999") }},
		{"price beyond column", func(in *LineInput) { in.PricePaid = decimal.RequireFromString("10000000000") }},
		{"quantity beyond int32", func(in *LineInput) { in.Quantity = math.MaxInt32 + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewLine("line-1", Group{}, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("delivered")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, s)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNewOrderPlacedEventTotals(t *testing.T) {
	group := Group{GroupID: "GRP-1", ShippingID: "SHIP-1"}
	a, _ := NewLine("a", group, validInput())
	in := validInput()
	in.ProductID, in.PricePaid = "Y", decimal.RequireFromString("49.50")
	b, _ := NewLine("b", group, in)

	evt := NewOrderPlacedEvent(group, "cust-1", []*Line{a, b})
	assert.Equal(t, "order.placed", evt.EventName())
	assert.Len(t, evt.Lines, 2)
	assert.Equal(t, "249.5", evt.Total.String())
}
