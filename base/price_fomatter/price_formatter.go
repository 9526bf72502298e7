package pricefomatter

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/domain"
)

// PriceFormatter knows how many fractional digits every currency carries
type PriceFormatter interface {
	Precision(currency domain.Currency) int32

	// Round rounds half away from zero to the currency precision
	Round(value decimal.Decimal, currency domain.Currency) decimal.Decimal

	// Truncate drops the digits past the currency precision
	Truncate(value decimal.Decimal, currency domain.Currency) decimal.Decimal

	// Fits reports whether value has no digits past the currency precision
	Fits(value decimal.Decimal, currency domain.Currency) bool
}
