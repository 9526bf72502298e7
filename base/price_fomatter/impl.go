package pricefomatter

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/domain"
)

// DefaultPrecision matches an 18 decimals token
const DefaultPrecision int32 = 18

type PriceFormatterCfg struct {
	// Precisions keyed by currency code, case insensitive
	Precisions       map[string]int32
	DefaultPrecision int32
}

type impl struct {
	defaultPrecision int32
	precisions       map[domain.Currency]int32
}

func NewPriceFormatter(cfg *PriceFormatterCfg) PriceFormatter {
	im := &impl{
		defaultPrecision: cfg.DefaultPrecision,
		precisions:       make(map[domain.Currency]int32),
	}
	if im.defaultPrecision <= 0 {
		im.defaultPrecision = DefaultPrecision
	}
	for cur, p := range cfg.Precisions {
		im.precisions[domain.Currency(cur).Normalize()] = p
	}
	return im
}

func (f *impl) Precision(currency domain.Currency) int32 {
	if p, ok := f.precisions[currency.Normalize()]; ok {
		return p
	}
	return f.defaultPrecision
}

func (f *impl) Round(value decimal.Decimal, currency domain.Currency) decimal.Decimal {
	return value.Round(f.Precision(currency))
}

func (f *impl) Truncate(value decimal.Decimal, currency domain.Currency) decimal.Decimal {
	return value.Truncate(f.Precision(currency))
}

func (f *impl) Fits(value decimal.Decimal, currency domain.Currency) bool {
	return value.Equal(f.Truncate(value, currency))
}
