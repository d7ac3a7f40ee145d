// Package amount bounds money and counts to what the store keeps exactly:
// NUMERIC(12,2) for money and INTEGER for quantities and stock.
package amount

import (
	"math"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of decimal places kept for money.
	Scale    = 2
	MaxCount = math.MaxInt32
)

// MaxMoney is the largest NUMERIC(12,2) value.
var MaxMoney = decimal.New(999999999999, -Scale)

var (
	ErrPrecision = apperr.Validation("amount: at most 2 decimal places")
	ErrTooLarge  = apperr.Validation("amount: exceeds the storable maximum")
)

// Money checks d has at most Scale decimals and fits MaxMoney. Sign is left to the caller.
func Money(d decimal.Decimal) error {
	if !d.Equal(d.Round(Scale)) {
		return ErrPrecision
	}
	if d.Abs().GreaterThan(MaxMoney) {
		return ErrTooLarge
	}
	return nil
}

// Count checks n fits a 32-bit column. Sign is left to the caller.
func Count(n int) error {
	if n > MaxCount || n < -MaxCount {
		return ErrTooLarge
	}
	return nil
}
