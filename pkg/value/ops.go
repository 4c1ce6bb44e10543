package value

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAddition       = errors.New("invalid addition")
	ErrInvalidSubtraction    = errors.New("invalid subtraction")
	ErrInvalidMultiplication = errors.New("invalid multiplication")
	ErrInvalidDivision       = errors.New("invalid division")
	ErrInvalidComparison     = errors.New("invalid comparison")
)

// pairing keys the nine operand combinations a binary operation must cover.
type pairing [2]Kind

var (
	intInt       = pairing{KindInt, KindInt}
	intFloat     = pairing{KindInt, KindFloat}
	intString    = pairing{KindInt, KindString}
	floatInt     = pairing{KindFloat, KindInt}
	floatFloat   = pairing{KindFloat, KindFloat}
	floatString  = pairing{KindFloat, KindString}
	stringInt    = pairing{KindString, KindInt}
	stringFloat  = pairing{KindString, KindFloat}
	stringString = pairing{KindString, KindString}
)

func mismatch(sentinel error, a, b Value) error {
	return fmt.Errorf("%w: %s and %s", sentinel, a.kind, b.kind)
}

// Add sums numbers and concatenates strings.
func Add(a, b Value) (Value, error) {
	switch (pairing{a.kind, b.kind}) {
	case intInt:
		return Int(a.i + b.i), nil
	case intFloat, floatInt, floatFloat:
		return Float(a.AsFloat() + b.AsFloat()), nil
	case stringString:
		return Str(a.s + b.s), nil
	case intString, floatString, stringInt, stringFloat:
		return Value{}, mismatch(ErrInvalidAddition, a, b)
	}
	return Value{}, mismatch(ErrInvalidAddition, a, b)
}

// Sub is defined on numbers only.
func Sub(a, b Value) (Value, error) {
	switch (pairing{a.kind, b.kind}) {
	case intInt:
		return Int(a.i - b.i), nil
	case intFloat, floatInt, floatFloat:
		return Float(a.AsFloat() - b.AsFloat()), nil
	case intString, floatString, stringInt, stringFloat, stringString:
		return Value{}, mismatch(ErrInvalidSubtraction, a, b)
	}
	return Value{}, mismatch(ErrInvalidSubtraction, a, b)
}

// Mul multiplies numbers, or repeats a string by a non-negative Integer
// given on either side.
func Mul(a, b Value) (Value, error) {
	switch (pairing{a.kind, b.kind}) {
	case intInt:
		return Int(a.i * b.i), nil
	case intFloat, floatInt, floatFloat:
		return Float(a.AsFloat() * b.AsFloat()), nil
	case stringInt:
		return repeat(a.s, b.i)
	case intString:
		return repeat(b.s, a.i)
	case floatString, stringFloat, stringString:
		return Value{}, mismatch(ErrInvalidMultiplication, a, b)
	}
	return Value{}, mismatch(ErrInvalidMultiplication, a, b)
}

func repeat(s string, n int64) (Value, error) {
	if n < 0 {
		return Value{}, fmt.Errorf("%w: negative repeat count %d", ErrInvalidMultiplication, n)
	}
	if n > 0 && int64(len(s)) > (1<<31)/n {
		return Value{}, fmt.Errorf("%w: repeated string too long", ErrInvalidMultiplication)
	}
	return Str(strings.Repeat(s, int(n))), nil
}

// Div floors Integer quotients toward negative infinity and divides
// truly as soon as one operand is a Float.
func Div(a, b Value) (Value, error) {
	switch (pairing{a.kind, b.kind}) {
	case intInt:
		if b.i == 0 {
			return Value{}, fmt.Errorf("%w: division by zero", ErrInvalidDivision)
		}
		return Int(floorDiv(a.i, b.i)), nil
	case intFloat, floatInt, floatFloat:
		if b.AsFloat() == 0 {
			return Value{}, fmt.Errorf("%w: division by zero", ErrInvalidDivision)
		}
		return Float(a.AsFloat() / b.AsFloat()), nil
	case intString, floatString, stringInt, stringFloat, stringString:
		return Value{}, mismatch(ErrInvalidDivision, a, b)
	}
	return Value{}, mismatch(ErrInvalidDivision, a, b)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Comparison is one of the six comparators usable in an IF clause.
type Comparison int

const (
	Equal Comparison = iota
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
)

var comparisonSymbols = [...]string{
	Equal:        "=",
	NotEqual:     "<>",
	Less:         "<",
	LessEqual:    "<=",
	Greater:      ">",
	GreaterEqual: ">=",
}

func (c Comparison) String() string {
	if int(c) >= 0 && int(c) < len(comparisonSymbols) {
		return comparisonSymbols[c]
	}
	return fmt.Sprintf("Comparison(%d)", int(c))
}

// Compare applies c to a and b. Numbers compare numerically across Integer
// and Float; strings only support = and <>; mixing a string with a number
// makes = false and <> true, and every ordering on a string is rejected.
func Compare(c Comparison, a, b Value) (bool, error) {
	switch (pairing{a.kind, b.kind}) {
	case intInt:
		return ordered(c, cmpInt(a.i, b.i))
	case intFloat, floatInt, floatFloat:
		return compareFloat(c, a.AsFloat(), b.AsFloat())
	case stringString:
		return equality(c, a.s == b.s, a, b)
	case intString, floatString, stringInt, stringFloat:
		return equality(c, false, a, b)
	}
	return false, mismatch(ErrInvalidComparison, a, b)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareFloat uses the float operators directly so NaN stays unordered:
// every comparison with it is false except <>.
func compareFloat(c Comparison, a, b float64) (bool, error) {
	switch c {
	case Equal:
		return a == b, nil
	case NotEqual:
		return a != b, nil
	case Less:
		return a < b, nil
	case LessEqual:
		return a <= b, nil
	case Greater:
		return a > b, nil
	case GreaterEqual:
		return a >= b, nil
	}
	return false, fmt.Errorf("%w: unknown comparator %s", ErrInvalidComparison, c)
}

func ordered(c Comparison, cmp int) (bool, error) {
	switch c {
	case Equal:
		return cmp == 0, nil
	case NotEqual:
		return cmp != 0, nil
	case Less:
		return cmp < 0, nil
	case LessEqual:
		return cmp <= 0, nil
	case Greater:
		return cmp > 0, nil
	case GreaterEqual:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("%w: unknown comparator %s", ErrInvalidComparison, c)
}

func equality(c Comparison, same bool, a, b Value) (bool, error) {
	switch c {
	case Equal:
		return same, nil
	case NotEqual:
		return !same, nil
	}
	return false, fmt.Errorf("%w: %s %s %s", ErrInvalidComparison, a.kind, c, b.kind)
}
