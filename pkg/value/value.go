package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

var kindNames = [...]string{
	KindInt:    "Integer",
	KindFloat:  "Float",
	KindString: "String",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a tagged union over Integer, Float and String. The zero Value is
// the Integer 0.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Str(v string) Value    { return Value{kind: KindString, s: v} }

func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v is an Integer or a Float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) AsInt() int64     { return v.i }
func (v Value) AsString() string { return v.s }

// AsFloat widens Integers; Strings yield 0.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String renders the value the way PRINT shows it: integers in decimal,
// floats always with a fractional part, strings raw.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	default:
		return v.s
	}
}

// GoString is used by %#v in test failures.
func (v Value) GoString() string {
	if v.kind == KindString {
		return fmt.Sprintf("%s(%q)", v.kind, v.s)
	}
	return fmt.Sprintf("%s(%s)", v.kind, v.String())
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseNumber converts numeric input text: a '.' anywhere selects a Float,
// otherwise the text must be a decimal Integer.
func ParseNumber(text string) (Value, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float %q", text)
		}
		return Float(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid integer %q", text)
	}
	return Int(n), nil
}
