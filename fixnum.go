// Copyright (c) 2024 Neomantra Corp
//
// Fixed-point price and quantity values. Raw wire formats quote prices and
// sizes as strings or scaled integers to avoid binary-float drift; this
// file is the catalog's single point of contact between those raw forms
// and Go's numeric types.
//
// Adapted from dbn-go's Fixed9ToFloat64 helper, generalized from a fixed
// 1e-9 scale to a per-value precision (0-9 fractional digits), matching
// the precision field a raw feed actually reports rather than assuming
// Databento's convention.

package mdcat

import (
	"fmt"
	"math"
)

// MaxPrecision is the maximum number of fractional digits representable by
// a raw int64 fixed-point value without an explicit decimal companion.
const MaxPrecision uint8 = 9

var pow10Table = [...]int64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000,
}

func pow10(precision uint8) int64 {
	if int(precision) < len(pow10Table) {
		return pow10Table[precision]
	}
	return pow10Table[len(pow10Table)-1]
}

// formatScaled renders a raw fixed-point magnitude as its exact decimal
// text. Integer division keeps the text exact at every representable raw
// value, where a float64 round-trip would drift past 2^53.
func formatScaled(neg bool, mag uint64, precision uint8) string {
	scale := uint64(pow10(precision))
	sign := ""
	if neg {
		sign = "-"
	}
	if precision == 0 {
		return fmt.Sprintf("%s%d", sign, mag)
	}
	return fmt.Sprintf("%s%d.%0*d", sign, mag/scale, precision, mag%scale)
}

///////////////////////////////////////////////////////////////////////////////

// Price is a fixed-point price: Raw units of 10^-Precision.
type Price struct {
	Raw       int64
	Precision uint8
}

// NewPriceRaw constructs a Price directly from its raw integer
// representation, validating the precision against MaxPrecision.
func NewPriceRaw(raw int64, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	return Price{Raw: raw, Precision: precision}, nil
}

// NewPriceFromFloat64 constructs a Price by scaling a float64 at the given
// precision, rounding half away from zero. Callers parsing untrusted wire
// data should prefer NewPriceFromString, since float64 cannot exactly
// represent most decimal fractions.
func NewPriceFromFloat64(value float64, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	scale := float64(pow10(precision))
	raw := int64(math.Round(value * scale))
	return Price{Raw: raw, Precision: precision}, nil
}

// AsFloat64 returns the Price as a float64, for display or non-exact
// arithmetic. It is never used for persisted or compared values.
func (p Price) AsFloat64() float64 {
	return float64(p.Raw) / float64(pow10(p.Precision))
}

func (p Price) String() string {
	neg := p.Raw < 0
	mag := uint64(p.Raw)
	if neg {
		mag = uint64(-p.Raw)
	}
	return formatScaled(neg, mag, p.Precision)
}

// IsZero reports whether the raw value is zero, regardless of precision.
func (p Price) IsZero() bool {
	return p.Raw == 0
}

// ZeroPrice returns the zero value at the given precision.
func ZeroPrice(precision uint8) Price {
	return Price{Precision: precision}
}

// NewPriceFromInt constructs a Price from a whole number of units, e.g.
// NewPriceFromInt(5, 2) is "5.00".
func NewPriceFromInt(units int64, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	return Price{Raw: units * pow10(precision), Precision: precision}, nil
}

// Add returns p+o. Both operands must share the same Precision; rescale
// with Round first if they don't.
func (p Price) Add(o Price) (Price, error) {
	if p.Precision != o.Precision {
		return Price{}, &PrecisionMismatchError{A: p.Precision, B: o.Precision}
	}
	return Price{Raw: p.Raw + o.Raw, Precision: p.Precision}, nil
}

// Sub returns p-o. Both operands must share the same Precision.
func (p Price) Sub(o Price) (Price, error) {
	if p.Precision != o.Precision {
		return Price{}, &PrecisionMismatchError{A: p.Precision, B: o.Precision}
	}
	return Price{Raw: p.Raw - o.Raw, Precision: p.Precision}, nil
}

// Mul scales p by an integer factor, keeping the same Precision.
func (p Price) Mul(factor int64) Price {
	return Price{Raw: p.Raw * factor, Precision: p.Precision}
}

// Neg returns -p.
func (p Price) Neg() Price {
	return Price{Raw: -p.Raw, Precision: p.Precision}
}

// Abs returns |p|.
func (p Price) Abs() Price {
	raw := p.Raw
	if raw < 0 {
		raw = -raw
	}
	return Price{Raw: raw, Precision: p.Precision}
}

// Round rescales p to precision, rounding half away from zero when
// narrowing. Widening is exact.
func (p Price) Round(precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	if precision >= p.Precision {
		return Price{Raw: p.Raw * pow10(precision-p.Precision), Precision: precision}, nil
	}
	divisor := pow10(p.Precision - precision)
	half := divisor / 2
	raw := p.Raw
	if raw >= 0 {
		raw = (raw + half) / divisor
	} else {
		raw = (raw - half) / divisor
	}
	return Price{Raw: raw, Precision: precision}, nil
}

///////////////////////////////////////////////////////////////////////////////

// Quantity is a fixed-point size/volume, using the same raw encoding as
// Price but always non-negative by convention at the record layer.
type Quantity struct {
	Raw       uint64
	Precision uint8
}

func NewQuantityRaw(raw uint64, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	return Quantity{Raw: raw, Precision: precision}, nil
}

func NewQuantityFromFloat64(value float64, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	if value < 0 {
		return Quantity{}, &RangeError{Raw: fmt.Sprintf("%f", value), Field: "quantity"}
	}
	scale := float64(pow10(precision))
	raw := uint64(math.Round(value * scale))
	return Quantity{Raw: raw, Precision: precision}, nil
}

func (q Quantity) AsFloat64() float64 {
	return float64(q.Raw) / float64(pow10(q.Precision))
}

func (q Quantity) String() string {
	return formatScaled(false, q.Raw, q.Precision)
}

func (q Quantity) IsZero() bool {
	return q.Raw == 0
}

// ZeroQuantity returns the zero value at the given precision.
func ZeroQuantity(precision uint8) Quantity {
	return Quantity{Precision: precision}
}

// NewQuantityFromInt constructs a Quantity from a whole number of units.
func NewQuantityFromInt(units uint64, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	return Quantity{Raw: units * uint64(pow10(precision)), Precision: precision}, nil
}

// Add returns q+o. Both operands must share the same Precision.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.Precision != o.Precision {
		return Quantity{}, &PrecisionMismatchError{A: q.Precision, B: o.Precision}
	}
	return Quantity{Raw: q.Raw + o.Raw, Precision: q.Precision}, nil
}

// Sub returns q-o, erroring rather than wrapping if the result would be
// negative (a Quantity is always non-negative by convention).
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if q.Precision != o.Precision {
		return Quantity{}, &PrecisionMismatchError{A: q.Precision, B: o.Precision}
	}
	if o.Raw > q.Raw {
		return Quantity{}, &RangeError{Raw: fmt.Sprintf("%d-%d", q.Raw, o.Raw), Field: "quantity"}
	}
	return Quantity{Raw: q.Raw - o.Raw, Precision: q.Precision}, nil
}

// Mul scales q by an integer factor, keeping the same Precision.
func (q Quantity) Mul(factor uint64) Quantity {
	return Quantity{Raw: q.Raw * factor, Precision: q.Precision}
}

///////////////////////////////////////////////////////////////////////////////

// Money is a fixed-point amount denominated in a currency, the same raw
// encoding as Price plus an ISO-4217-style currency code so a value can't
// be silently summed across currencies.
type Money struct {
	Raw       int64
	Precision uint8
	Currency  string
}

// ZeroMoney returns the zero value at the given precision and currency.
func ZeroMoney(precision uint8, currency string) Money {
	return Money{Precision: precision, Currency: currency}
}

// NewMoneyRaw constructs a Money directly from its raw integer
// representation.
func NewMoneyRaw(raw int64, precision uint8, currency string) (Money, error) {
	if precision > MaxPrecision {
		return Money{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	return Money{Raw: raw, Precision: precision, Currency: currency}, nil
}

// NewMoneyFromInt constructs a Money from a whole number of units.
func NewMoneyFromInt(units int64, precision uint8, currency string) (Money, error) {
	if precision > MaxPrecision {
		return Money{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	return Money{Raw: units * pow10(precision), Precision: precision, Currency: currency}, nil
}

func (m Money) AsFloat64() float64 {
	return float64(m.Raw) / float64(pow10(m.Precision))
}

func (m Money) String() string {
	neg := m.Raw < 0
	mag := uint64(m.Raw)
	if neg {
		mag = uint64(-m.Raw)
	}
	return formatScaled(neg, mag, m.Precision) + " " + m.Currency
}

// IsZero reports whether the raw value is zero, regardless of precision.
func (m Money) IsZero() bool {
	return m.Raw == 0
}

// Add returns m+o. Both operands must share the same Precision and Currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, &CurrencyMismatchError{A: m.Currency, B: o.Currency}
	}
	if m.Precision != o.Precision {
		return Money{}, &PrecisionMismatchError{A: m.Precision, B: o.Precision}
	}
	return Money{Raw: m.Raw + o.Raw, Precision: m.Precision, Currency: m.Currency}, nil
}

// Sub returns m-o. Both operands must share the same Precision and Currency.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, &CurrencyMismatchError{A: m.Currency, B: o.Currency}
	}
	if m.Precision != o.Precision {
		return Money{}, &PrecisionMismatchError{A: m.Precision, B: o.Precision}
	}
	return Money{Raw: m.Raw - o.Raw, Precision: m.Precision, Currency: m.Currency}, nil
}

// Mul scales m by an integer factor, keeping the same Precision and Currency.
func (m Money) Mul(factor int64) Money {
	return Money{Raw: m.Raw * factor, Precision: m.Precision, Currency: m.Currency}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Raw: -m.Raw, Precision: m.Precision, Currency: m.Currency}
}

// Abs returns |m|.
func (m Money) Abs() Money {
	raw := m.Raw
	if raw < 0 {
		raw = -raw
	}
	return Money{Raw: raw, Precision: m.Precision, Currency: m.Currency}
}

// Round rescales m to precision, rounding half away from zero when
// narrowing. Widening is exact.
func (m Money) Round(precision uint8) (Money, error) {
	if precision > MaxPrecision {
		return Money{}, &PrecisionOverflowError{Precision: precision, Max: MaxPrecision}
	}
	if precision >= m.Precision {
		return Money{Raw: m.Raw * pow10(precision-m.Precision), Precision: precision, Currency: m.Currency}, nil
	}
	divisor := pow10(m.Precision - precision)
	half := divisor / 2
	raw := m.Raw
	if raw >= 0 {
		raw = (raw + half) / divisor
	} else {
		raw = (raw - half) / divisor
	}
	return Money{Raw: raw, Precision: precision, Currency: m.Currency}, nil
}
