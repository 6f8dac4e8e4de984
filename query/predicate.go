// Copyright (c) 2024 Neomantra Corp
//
// Predicate pushdown expressions, replacing the original's duck-typed
// pyarrow.dataset.Expression kwarg with an explicit, closed Expr tree
// per spec.md §9's "Dynamic kwargs... replace with explicit QueryOptions".
// Supports <=, >=, ==, "in", and boolean AND, matching spec.md §4.7's
// pushdown surface.

package query

import "fmt"

// Expr is a predicate over a single decoded record's fields.
type Expr interface {
	eval(fields map[string]any) bool
}

// Field names a column by its decoded struct field name, e.g. "BidPrice".
type Field string

func (f Field) value(fields map[string]any) (any, bool) {
	v, ok := fields[string(f)]
	return v, ok
}

type cmpOp int

const (
	opEq cmpOp = iota
	opLe
	opGe
)

type cmpExpr struct {
	field Field
	op    cmpOp
	want  any
}

// Eq builds a field == want predicate.
func Eq(field Field, want any) Expr { return cmpExpr{field, opEq, want} }

// Le builds a field <= want predicate.
func Le(field Field, want any) Expr { return cmpExpr{field, opLe, want} }

// Ge builds a field >= want predicate.
func Ge(field Field, want any) Expr { return cmpExpr{field, opGe, want} }

func (c cmpExpr) eval(fields map[string]any) bool {
	got, ok := c.field.value(fields)
	if !ok {
		return false
	}
	switch c.op {
	case opEq:
		return compare(got, c.want) == 0
	case opLe:
		return compare(got, c.want) <= 0
	case opGe:
		return compare(got, c.want) >= 0
	default:
		return false
	}
}

type inExpr struct {
	field Field
	set   []any
}

// In builds a field-in-set predicate.
func In(field Field, set ...any) Expr { return inExpr{field, set} }

func (e inExpr) eval(fields map[string]any) bool {
	got, ok := e.field.value(fields)
	if !ok {
		return false
	}
	for _, want := range e.set {
		if compare(got, want) == 0 {
			return true
		}
	}
	return false
}

type andExpr struct {
	terms []Expr
}

// And combines terms with boolean AND.
func And(terms ...Expr) Expr { return andExpr{terms} }

func (a andExpr) eval(fields map[string]any) bool {
	for _, t := range a.terms {
		if !t.eval(fields) {
			return false
		}
	}
	return true
}

// asNumber widens any integer operand to a sign/magnitude pair, so
// predicates can mix the narrower widths decoded fields carry (uint8
// flags, uint32 sequences) with the int64/uint64 literals callers
// naturally write.
func asNumber(v any) (neg bool, mag uint64, ok bool) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return true, uint64(-int64(n)), true
		}
		return false, uint64(n), true
	case int32:
		if n < 0 {
			return true, uint64(-int64(n)), true
		}
		return false, uint64(n), true
	case int64:
		if n < 0 {
			return true, uint64(-n), true
		}
		return false, uint64(n), true
	case uint8:
		return false, uint64(n), true
	case uint32:
		return false, uint64(n), true
	case uint64:
		return false, n, true
	default:
		return false, 0, false
	}
}

func compareMag(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compare(a, b any) int {
	if aNeg, aMag, isInt := asNumber(a); isInt {
		bNeg, bMag, ok := asNumber(b)
		if !ok {
			panic(fmt.Sprintf("query: predicate operand type mismatch: %T vs %T", a, b))
		}
		switch {
		case aNeg && !bNeg:
			return -1
		case !aNeg && bNeg:
			return 1
		case aNeg && bNeg:
			return -compareMag(aMag, bMag)
		default:
			return compareMag(aMag, bMag)
		}
	}
	switch av := a.(type) {
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case fmt.Stringer:
		return compare(av.String(), fmt.Sprintf("%v", b))
	default:
		panic(fmt.Sprintf("query: unsupported predicate operand type %T", a))
	}
}

// Match reports whether fields satisfies e, used for row-level filtering
// after columnar decode (pushdown is emulated, not true Parquet statistics
// pruning, since arrow-go's file reader used here doesn't expose it).
func Match(e Expr, fields map[string]any) bool {
	if e == nil {
		return true
	}
	return e.eval(fields)
}
