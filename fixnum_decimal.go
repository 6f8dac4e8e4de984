// Copyright (c) 2024 Neomantra Corp
//
// Decimal-string constructors for Price/Quantity, using shopspring/decimal
// so that a decimal literal like "47.637" round-trips to Raw without the
// binary float drift NewPriceFromFloat64 is exposed to. The string is
// always read as a decimal value and scaled by the precision, never as an
// already-scaled raw integer.

package mdcat

import (
	"github.com/shopspring/decimal"
)

// NewPriceFromString parses a decimal string at the given precision,
// rounding half away from zero if the string carries more fractional
// digits than precision allows.
func NewPriceFromString(s string, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, &RangeError{Raw: s, Field: "price"}
	}
	scaled := d.Shift(int32(precision)).Round(0)
	if !scaled.IsInteger() {
		return Price{}, &RangeError{Raw: s, Field: "price"}
	}
	return Price{Raw: scaled.IntPart(), Precision: precision}, nil
}

// Decimal returns the exact decimal.Decimal value of a Price, suitable for
// further arbitrary-precision arithmetic (e.g. notional = price * quantity).
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(p.Raw, -int32(p.Precision))
}

func NewQuantityFromString(s string, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, &RangeError{Raw: s, Field: "quantity"}
	}
	if d.IsNegative() {
		return Quantity{}, &RangeError{Raw: s, Field: "quantity"}
	}
	scaled := d.Shift(int32(precision)).Round(0)
	if !scaled.IsInteger() {
		return Quantity{}, &RangeError{Raw: s, Field: "quantity"}
	}
	if !scaled.BigInt().IsUint64() {
		return Quantity{}, &RangeError{Raw: s, Field: "quantity"}
	}
	return Quantity{Raw: scaled.BigInt().Uint64(), Precision: precision}, nil
}

func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q.Raw), -int32(q.Precision))
}

// Cmp orders two prices by exact decimal value, tolerating different
// precisions: 1.50 at precision 2 compares equal to 1.5 at precision 1.
func (p Price) Cmp(o Price) int {
	return p.Decimal().Cmp(o.Decimal())
}

// Cmp orders two quantities by exact decimal value, tolerating different
// precisions.
func (q Quantity) Cmp(o Quantity) int {
	return q.Decimal().Cmp(o.Decimal())
}

// Cmp orders two amounts by exact decimal value, ignoring currency;
// callers that need the guard should Add/Sub instead, which refuse a
// currency mismatch.
func (m Money) Cmp(o Money) int {
	return m.Decimal().Cmp(o.Decimal())
}

// Notional returns price * quantity as an exact decimal.Decimal, the
// arithmetic reason a Decimal companion exists alongside the raw
// fixed-point form.
func Notional(p Price, q Quantity) decimal.Decimal {
	return p.Decimal().Mul(q.Decimal())
}

// NewMoneyFromString parses a decimal string at the given precision and
// currency, rounding half away from zero if the string carries more
// fractional digits than precision allows.
func NewMoneyFromString(s string, precision uint8, currency string) (Money, error) {
	if precision > MaxPrecision {
		return Money{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &RangeError{Raw: s, Field: "money"}
	}
	scaled := d.Shift(int32(precision)).Round(0)
	if !scaled.IsInteger() {
		return Money{}, &RangeError{Raw: s, Field: "money"}
	}
	return Money{Raw: scaled.IntPart(), Precision: precision, Currency: currency}, nil
}

// Decimal returns the exact decimal.Decimal value of a Money amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Raw, -int32(m.Precision))
}
